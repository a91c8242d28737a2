package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// List unreadOnly 为 true 时只取未读
	List(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error)
	GetByID(ctx context.Context, recipientID, id string) (*model.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	// MarkAllRead 返回翻转行数
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	SetUnread(ctx context.Context, recipientID, id string, unread bool) (int64, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("unread = ?", true)
	}
	var res []*model.Notification
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (r *notificationRepository) GetByID(ctx context.Context, recipientID, id string) (*model.Notification, error) {
	var n model.Notification
	// recipient 条件兜底，避免越权读他人通知
	if err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Count(&cnt).Error
	return cnt, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Update("unread", false)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) SetUnread(ctx context.Context, recipientID, id string, unread bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("unread", unread)
	return res.RowsAffected, res.Error
}
