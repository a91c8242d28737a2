package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tweetline/internal/model"
)

type LikeRepository interface {
	// Create 幂等：重复点赞返回 false，不报错
	Create(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error)
	Delete(ctx context.Context, userID string, target model.TargetType, targetID string) (int64, error)
	Exists(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error)
	CountForTarget(ctx context.Context, target model.TargetType, targetID string) (int64, error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error) {
	l := &model.Like{ID: uuid.New().String(), UserID: userID, TargetType: target, TargetID: targetID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID string, target model.TargetType, targetID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target, targetID).
		Delete(&model.Like{})
	return res.RowsAffected, res.Error
}

func (r *likeRepository) Exists(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target, targetID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// CountForTarget 走 (target_type, target_id, created_at) 索引
func (r *likeRepository) CountForTarget(ctx context.Context, target model.TargetType, targetID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("target_type = ? AND target_id = ?", target, targetID).
		Count(&cnt).Error
	return cnt, err
}
