package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Age      int    `json:"age" binding:"omitempty,gte=0,lte=150"`
}

// Register 注册新用户
// @Summary 注册
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Age)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, user)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录换取 token
// @Summary 登录
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.userSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := middleware.GenerateToken(h.cfg.JWT.Secret, user.ID, h.cfg.JWT.Expire)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": user})
}

// GetUser 查询用户（对象缓存读穿透）
// @Summary 查询用户
// @Tags 账号
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetUserThroughCache(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// GetProfile 查询资料，首次访问惰性创建
// @Summary 查询资料
// @Tags 账号
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{user_id}/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.profileSvc.GetOrCreate(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}

type profileUpdateRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,max=200"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=255"`
}

// UpdateProfile 更新本人资料（落库后同步失效缓存）
// @Summary 更新资料
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body profileUpdateRequest true "资料"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/users/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fields := map[string]interface{}{}
	if req.Nickname != nil {
		fields["nickname"] = *req.Nickname
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if len(fields) == 0 {
		response.BadRequest(c, "nothing to update")
		return
	}
	profile, err := h.profileSvc.Update(c.Request.Context(), middleware.CurrentUserID(c), fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}
