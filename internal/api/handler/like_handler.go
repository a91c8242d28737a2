package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/pkg/response"
)

type likeRequest struct {
	TargetType string `json:"target_type" binding:"required,liketarget"`
	TargetID   string `json:"target_id" binding:"required"`
}

// CreateLike 点赞推文或评论（幂等）
// @Summary 点赞
// @Tags 点赞
// @Accept json
// @Produce json
// @Param request body likeRequest true "点赞目标"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/likes [post]
func (h *Handler) CreateLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	created, err := h.likeSvc.Like(c.Request.Context(), middleware.CurrentUserID(c),
		model.TargetType(req.TargetType), req.TargetID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"created": created})
}

// CancelLike 取消点赞
// @Summary 取消点赞
// @Tags 点赞
// @Accept json
// @Produce json
// @Param request body likeRequest true "点赞目标"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/likes/cancel [post]
func (h *Handler) CancelLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	deleted, err := h.likeSvc.Unlike(c.Request.Context(), middleware.CurrentUserID(c),
		model.TargetType(req.TargetType), req.TargetID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// CountLikes 查询目标的点赞数
// @Summary 查询点赞数
// @Tags 点赞
// @Param target_type query string true "目标类型 (tweet/comment)"
// @Param target_id query string true "目标ID"
// @Success 200 {object} response.Response
// @Router /api/v1/likes/count [get]
func (h *Handler) CountLikes(c *gin.Context) {
	target := model.TargetType(c.Query("target_type"))
	targetID := c.Query("target_id")
	if targetID == "" {
		response.BadRequest(c, "missing target_id in request")
		return
	}
	count, err := h.likeSvc.CountForTarget(c.Request.Context(), target, targetID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}
