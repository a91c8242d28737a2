package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// TweetService 推文发布与缓存读取
type TweetService interface {
	// Create 落库后同步扇出；扇出失败向调用方报错，不静默丢弃
	Create(ctx context.Context, userID, content string) (*model.Tweet, error)
	GetTweetThroughCache(ctx context.Context, tweetID string) (*model.Tweet, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Tweet, error)
}

type tweetService struct {
	tweetRepo repository.TweetRepository
	objects   *cache.ObjectCache
	fanout    FanoutEngine
}

func NewTweetService(tweetRepo repository.TweetRepository, objects *cache.ObjectCache, fanout FanoutEngine) TweetService {
	return &tweetService{tweetRepo: tweetRepo, objects: objects, fanout: fanout}
}

func (s *tweetService) Create(ctx context.Context, userID, content string) (*model.Tweet, error) {
	t := &model.Tweet{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.tweetRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := s.fanout.FanoutToFollowers(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tweetService) GetTweetThroughCache(ctx context.Context, tweetID string) (*model.Tweet, error) {
	var t model.Tweet
	if err := s.objects.Get(ctx, cache.KindTweet, tweetID, &t); err == nil {
		return &t, nil
	}
	got, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.objects.Set(ctx, cache.KindTweet, tweetID, got)
	return got, nil
}

func (s *tweetService) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Tweet, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.tweetRepo.ListByUser(ctx, userID, offset, limit)
}
