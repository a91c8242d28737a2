package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/pkg/response"
)

type commentCreateRequest struct {
	TweetID string `json:"tweet_id" binding:"required"`
	Content string `json:"content" binding:"required,max=140"`
}

// CreateComment 评论推文
// @Summary 评论推文
// @Tags 评论
// @Accept json
// @Produce json
// @Param request body commentCreateRequest true "评论内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.commentSvc.Create(c.Request.Context(), middleware.CurrentUserID(c), req.TweetID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}

// ListComments 查询推文下的评论
// @Summary 查询评论列表
// @Tags 评论
// @Param tweet_id query string true "推文ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	tweetID := c.Query("tweet_id")
	if tweetID == "" {
		response.BadRequest(c, "missing tweet_id in request")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.commentSvc.ListByTweet(c.Request.Context(), tweetID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "comments": list})
}
