package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	GetByID(ctx context.Context, id string) (*model.Tweet, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Tweet, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Tweet, error)
}

type tweetRepository struct{ db *gorm.DB }

func NewTweetRepository(db *gorm.DB) TweetRepository { return &tweetRepository{db: db} }

func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return r.db.WithContext(ctx).Create(tweet).Error
}

func (r *tweetRepository) GetByID(ctx context.Context, id string) (*model.Tweet, error) {
	var t model.Tweet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tweetRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Tweet, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.Tweet
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

// ListByUser 个人主页时间线，走 (user_id, created_at) 索引
func (r *tweetRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Tweet, error) {
	var res []*model.Tweet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
