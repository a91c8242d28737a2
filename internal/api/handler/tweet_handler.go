package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/pkg/response"
)

type tweetCreateRequest struct {
	Content string `json:"content" binding:"required,max=280"`
}

// CreateTweet 发布推文并扇出到粉丝时间线
// @Summary 发布推文
// @Tags 推文
// @Accept json
// @Produce json
// @Param request body tweetCreateRequest true "推文内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/tweets [post]
func (h *Handler) CreateTweet(c *gin.Context) {
	var req tweetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tweet, err := h.tweetSvc.Create(c.Request.Context(), middleware.CurrentUserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, tweet)
}

// GetTweet 查询单条推文（对象缓存读穿透）
// @Summary 查询推文
// @Tags 推文
// @Param tweet_id path string true "推文ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{tweet_id} [get]
func (h *Handler) GetTweet(c *gin.Context) {
	tweet, err := h.tweetSvc.GetTweetThroughCache(c.Request.Context(), c.Param("tweet_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tweet)
}

// ListUserTweets 查询某用户的推文
// @Summary 查询用户推文列表
// @Tags 推文
// @Param user_id query string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/tweets [get]
func (h *Handler) ListUserTweets(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		response.BadRequest(c, "missing user_id in request")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.tweetSvc.ListByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "tweets": list})
}
