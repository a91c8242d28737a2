package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Param user_id path string true "被关注用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/friendships/{user_id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	fromUserID := middleware.CurrentUserID(c)
	toUserID := c.Param("user_id")
	if err := h.friendSvc.Follow(c.Request.Context(), fromUserID, toUserID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Param user_id path string true "被取关用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/friendships/{user_id}/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	fromUserID := middleware.CurrentUserID(c)
	toUserID := c.Param("user_id")
	deleted, err := h.friendSvc.Unfollow(c.Request.Context(), fromUserID, toUserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/friendships/{user_id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	userID := c.Param("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.friendSvc.ListFollowers(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFollowings 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/friendships/{user_id}/followings [get]
func (h *Handler) ListFollowings(c *gin.Context) {
	userID := c.Param("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.friendSvc.ListFollowings(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// FollowingIDs 查询关注 ID 集合（关系缓存）
// @Summary 查询关注 ID 集合
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/friendships/{user_id}/following_ids [get]
func (h *Handler) FollowingIDs(c *gin.Context) {
	ids, err := h.friendSvc.GetFollowingIDs(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"user_ids": ids})
}

// HasFollowed 查询是否已关注
// @Summary 查询是否已关注
// @Tags 关系链
// @Param user_id path string true "被关注用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/friendships/{user_id}/has_followed [get]
func (h *Handler) HasFollowed(c *gin.Context) {
	followed, err := h.friendSvc.HasFollowed(c.Request.Context(), middleware.CurrentUserID(c), c.Param("user_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"has_followed": followed})
}
