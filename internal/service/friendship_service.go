package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// FriendshipService 关系链服务
type FriendshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	// Unfollow 返回删除行数；取关未关注的人不算错误
	Unfollow(ctx context.Context, fromUserID, toUserID string) (int64, error)
	HasFollowed(ctx context.Context, fromUserID, toUserID string) (bool, error)
	// GetFollowingIDs / GetFollowerIDs 走关系缓存
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]*model.Friendship, error)
	ListFollowings(ctx context.Context, userID string, page, pageSize int) ([]*model.Friendship, error)
}

type friendshipService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	relations      *cache.RelationCache
	inval          *cache.Invalidator
}

func NewFriendshipService(
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	relations *cache.RelationCache,
	inval *cache.Invalidator,
) FriendshipService {
	return &friendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		relations:      relations,
		inval:          inval,
	}
}

func (s *friendshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	if _, err := s.userRepo.GetByID(ctx, toUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	created, err := s.friendshipRepo.Create(ctx, fromUserID, toUserID)
	if err != nil {
		return err
	}
	// 重复关注按冲突上报，不静默成功
	if !created {
		return ErrAlreadyFollowing
	}
	// 先落库后失效，返回前完成
	s.inval.OnFriendshipChanged(ctx, fromUserID, toUserID)
	return nil
}

func (s *friendshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	if fromUserID == toUserID {
		return 0, ErrFollowSelf
	}
	deleted, err := s.friendshipRepo.Delete(ctx, fromUserID, toUserID)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.inval.OnFriendshipChanged(ctx, fromUserID, toUserID)
	}
	return deleted, nil
}

func (s *friendshipService) HasFollowed(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	return s.friendshipRepo.Exists(ctx, fromUserID, toUserID)
}

func (s *friendshipService) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.relations.FollowingIDs(ctx, userID)
}

func (s *friendshipService) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return s.relations.FollowerIDs(ctx, userID)
}

func (s *friendshipService) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]*model.Friendship, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.friendshipRepo.ListFollowers(ctx, userID, offset, limit)
}

func (s *friendshipService) ListFollowings(ctx context.Context, userID string, page, pageSize int) ([]*model.Friendship, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.friendshipRepo.ListFollowings(ctx, userID, offset, limit)
}

func normalizePage(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return (page - 1) * pageSize, pageSize
}
