package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tweetline/internal/model"
)

// SingleDBFeedRepository 单库信息流仓储实现
type SingleDBFeedRepository struct {
	db    *gorm.DB
	batch int
}

// NewSingleDBFeedRepository 创建单库信息流仓储
func NewSingleDBFeedRepository(db *gorm.DB, batch int) FeedRepository {
	if batch <= 0 {
		batch = 1000
	}
	return &SingleDBFeedRepository{db: db, batch: batch}
}

// BulkCreate 一个事务内分批插入，全部成功或全部回滚
func (r *SingleDBFeedRepository) BulkCreate(ctx context.Context, entries []model.NewsFeed) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&entries, r.batch).Error
	})
}

func (r *SingleDBFeedRepository) ListByOwner(ctx context.Context, ownerID string, q FeedQuery) ([]*model.NewsFeed, error) {
	var res []*model.NewsFeed
	err := applyFeedQuery(r.db.WithContext(ctx), ownerID, q).Find(&res).Error
	return res, err
}

func (r *SingleDBFeedRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.NewsFeed{}).
		Where("owner_id = ?", ownerID).
		Count(&cnt).Error
	return cnt, err
}

func (r *SingleDBFeedRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// applyFeedQuery 统一游标条件，单库与分片实现共用。
// 走 (owner_id, created_at) 索引，id 做同刻 tiebreak。
func applyFeedQuery(db *gorm.DB, ownerID string, q FeedQuery) *gorm.DB {
	db = db.Model(&model.NewsFeed{}).Where("owner_id = ?", ownerID)
	switch {
	case q.After != nil:
		db = db.Where("created_at > ?", *q.After)
	case q.Before != nil && q.BeforeID != "":
		db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", *q.Before, *q.Before, q.BeforeID)
	case q.Before != nil:
		db = db.Where("created_at < ?", *q.Before)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	return db.Order("created_at DESC, id DESC").Limit(limit)
}
