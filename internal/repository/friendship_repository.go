package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tweetline/internal/model"
)

type FriendshipRepository interface {
	// Create 返回是否真正新建；撞 (from, to) 唯一键时返回 false
	Create(ctx context.Context, fromUserID, toUserID string) (bool, error)
	// Delete 返回删除行数
	Delete(ctx context.Context, fromUserID, toUserID string) (int64, error)
	Exists(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListFollowers(ctx context.Context, toUserID string, offset, limit int) ([]*model.Friendship, error)
	ListFollowings(ctx context.Context, fromUserID string, offset, limit int) ([]*model.Friendship, error)
}

type friendshipRepository struct{ db *gorm.DB }

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository { return &friendshipRepository{db: db} }

func (r *friendshipRepository) Create(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	f := &model.Friendship{ID: uuid.New().String(), FromUserID: fromUserID, ToUserID: toUserID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	// RowsAffected == 0 说明关系已存在，由上层决定是否视作冲突
	return res.RowsAffected > 0, nil
}

func (r *friendshipRepository) Delete(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Delete(&model.Friendship{})
	return res.RowsAffected, res.Error
}

func (r *friendshipRepository) Exists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ListFollowers 走 (to_user_id, created_at) 索引
func (r *friendshipRepository) ListFollowers(ctx context.Context, toUserID string, offset, limit int) ([]*model.Friendship, error) {
	var res []*model.Friendship
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", toUserID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

// ListFollowings 走 (from_user_id, created_at) 索引
func (r *friendshipRepository) ListFollowings(ctx context.Context, fromUserID string, offset, limit int) ([]*model.Friendship, error) {
	var res []*model.Friendship
	err := r.db.WithContext(ctx).
		Where("from_user_id = ?", fromUserID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
