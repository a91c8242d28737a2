package pagination

import (
	"errors"
	"strconv"
	"time"
)

// 时间游标统一用 RFC3339Nano，避免相同秒内丢行
const TimeLayout = time.RFC3339Nano

var ErrBadCursor = errors.New("invalid cursor parameter")

// Cursor 信息流翻页参数。created_at__lt 向旧翻页（配 id__lt 同刻去重），
// created_at__gt 拉取新内容。两者互斥，同传时 gt 优先。
type Cursor struct {
	CreatedAtLT *time.Time
	IDLT        string
	CreatedAtGT *time.Time
	PageSize    int
}

// Parse 解析 query 参数；page_size 超上限时静默截断，不报错
func Parse(createdAtLT, createdAtGT, idLT, pageSize string, defaultSize, maxSize int) (Cursor, error) {
	c := Cursor{PageSize: defaultSize, IDLT: idLT}

	if createdAtLT != "" {
		t, err := time.Parse(TimeLayout, createdAtLT)
		if err != nil {
			return c, ErrBadCursor
		}
		c.CreatedAtLT = &t
	}
	if createdAtGT != "" {
		t, err := time.Parse(TimeLayout, createdAtGT)
		if err != nil {
			return c, ErrBadCursor
		}
		c.CreatedAtGT = &t
	}
	if pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil || n < 1 {
			return c, ErrBadCursor
		}
		c.PageSize = n
	}
	c.Clamp(defaultSize, maxSize)
	return c, nil
}

// Clamp 页大小收敛到 [1, maxSize]
func (c *Cursor) Clamp(defaultSize, maxSize int) {
	if c.PageSize < 1 {
		c.PageSize = defaultSize
	}
	if maxSize > 0 && c.PageSize > maxSize {
		c.PageSize = maxSize
	}
}
