package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// CommentService 评论
type CommentService interface {
	// Create 推文不存在返回 ErrNotFound；评论他人推文触发通知
	Create(ctx context.Context, userID, tweetID, content string) (*model.Comment, error)
	ListByTweet(ctx context.Context, tweetID string, page, pageSize int) ([]*model.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
	notifier    NotificationDispatcher
}

func NewCommentService(commentRepo repository.CommentRepository, tweetRepo repository.TweetRepository, notifier NotificationDispatcher) CommentService {
	return &commentService{commentRepo: commentRepo, tweetRepo: tweetRepo, notifier: notifier}
}

func (s *commentService) Create(ctx context.Context, userID, tweetID, content string) (*model.Comment, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		TweetID:   tweetID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	// 评论自己的推文不通知
	if tweet.UserID != userID {
		s.notifier.Dispatch(&model.Notification{
			ID:          uuid.New().String(),
			RecipientID: tweet.UserID,
			ActorID:     userID,
			Verb:        model.VerbComment,
			TargetType:  model.TargetTweet,
			TargetID:    tweetID,
			Unread:      true,
			CreatedAt:   c.CreatedAt,
		})
	}
	return c, nil
}

func (s *commentService) ListByTweet(ctx context.Context, tweetID string, page, pageSize int) ([]*model.Comment, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.commentRepo.ListByTweet(ctx, tweetID, offset, limit)
}
