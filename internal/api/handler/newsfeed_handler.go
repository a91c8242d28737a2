package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tweetline/internal/api/middleware"
	"github.com/d60-Lab/tweetline/internal/pagination"
	"github.com/d60-Lab/tweetline/pkg/response"
)

// ListFeed 查询当前用户时间线（游标翻页）
// @Summary 查询时间线
// @Tags 时间线
// @Param created_at__lt query string false "向旧翻页游标 (RFC3339Nano)"
// @Param id__lt query string false "同刻 tiebreak 游标"
// @Param created_at__gt query string false "拉取新内容游标 (RFC3339Nano)"
// @Param page_size query int false "每页数量，超上限静默截断"
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 400 {object} response.Response
// @Router /api/v1/newsfeeds [get]
func (h *Handler) ListFeed(c *gin.Context) {
	cur, err := pagination.Parse(
		c.Query("created_at__lt"),
		c.Query("created_at__gt"),
		c.Query("id__lt"),
		c.Query("page_size"),
		h.cfg.Feed.DefaultPageSize,
		h.cfg.Feed.MaxPageSize,
	)
	if err != nil {
		if errors.Is(err, pagination.ErrBadCursor) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	page, err := h.feedSvc.ListFeed(c.Request.Context(), middleware.CurrentUserID(c), cur)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}
