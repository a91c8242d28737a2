package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// NotificationService 站内通知
type NotificationService interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, recipientID string, unreadOnly bool, page, pageSize int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	// MarkAllRead 返回翻转行数
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	// SetUnread 单条已读翻转；非本人或不存在返回 ErrNotFound
	SetUnread(ctx context.Context, recipientID, id string, unread bool) (*model.Notification, error)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notifRepo: notifRepo}
}

func (s *notificationService) Create(ctx context.Context, n *model.Notification) error {
	return s.notifRepo.Create(ctx, n)
}

func (s *notificationService) List(ctx context.Context, recipientID string, unreadOnly bool, page, pageSize int) ([]*model.Notification, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.notifRepo.List(ctx, recipientID, unreadOnly, offset, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, recipientID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, recipientID)
}

func (s *notificationService) SetUnread(ctx context.Context, recipientID, id string, unread bool) (*model.Notification, error) {
	affected, err := s.notifRepo.SetUnread(ctx, recipientID, id, unread)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// 行存在但值未变时 affected 也可能为 0，重读确认
		if _, err := s.notifRepo.GetByID(ctx, recipientID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}
	return s.notifRepo.GetByID(ctx, recipientID, id)
}
