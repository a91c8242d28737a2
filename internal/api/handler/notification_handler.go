package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/pkg/response"
)

// ListNotifications 查询通知列表
// @Summary 查询通知
// @Tags 通知
// @Param unread query bool false "只看未读"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.notifSvc.List(c.Request.Context(), middleware.CurrentUserID(c), unreadOnly, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "notifications": list})
}

// UnreadCount 查询未读数
// @Summary 查询未读数
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.notifSvc.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}

// MarkAllAsRead 全部标记已读
// @Summary 全部标记已读
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/mark-all-as-read [post]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	marked, err := h.notifSvc.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"marked_count": marked})
}

type notificationUpdateRequest struct {
	Unread *bool `json:"unread" binding:"required"`
}

// UpdateNotification 单条已读翻转
// @Summary 更新通知已读状态
// @Tags 通知
// @Accept json
// @Produce json
// @Param notification_id path string true "通知ID"
// @Param request body notificationUpdateRequest true "已读状态"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{notification_id} [put]
func (h *Handler) UpdateNotification(c *gin.Context) {
	var req notificationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing unread in request")
		return
	}
	n, err := h.notifSvc.SetUnread(c.Request.Context(), middleware.CurrentUserID(c),
		c.Param("notification_id"), *req.Unread)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, n)
}
