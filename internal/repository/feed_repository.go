package repository

import (
	"context"
	"time"

	"github.com/d60-Lab/tweetline/internal/model"
)

// FeedQuery 时间线游标查询：Before/BeforeID 向旧翻页，After 拉新
type FeedQuery struct {
	Before   *time.Time
	BeforeID string
	After    *time.Time
	Limit    int
}

// FeedRepository 信息流仓储接口（单库 / 按 owner 分片两种实现）
type FeedRepository interface {
	// BulkCreate 批量写入物化行；(owner_id, tweet_id) 撞唯一键静默跳过，
	// 重试安全
	BulkCreate(ctx context.Context, entries []model.NewsFeed) error

	// ListByOwner 按 (created_at DESC, id DESC) 返回 owner 的时间线一页
	ListByOwner(ctx context.Context, ownerID string, q FeedQuery) ([]*model.NewsFeed, error)

	// CountByOwner 统计某人时间线行数
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	// Close 关闭底层连接
	Close() error
}
