package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// LikeService 点赞（目标为推文或评论的标签联合）
type LikeService interface {
	// Like 幂等：重复点赞返回 created=false，不报错；
	// 给他人内容首次点赞触发通知
	Like(ctx context.Context, userID string, target model.TargetType, targetID string) (created bool, err error)
	Unlike(ctx context.Context, userID string, target model.TargetType, targetID string) (int64, error)
	HasLiked(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error)
	CountForTarget(ctx context.Context, target model.TargetType, targetID string) (int64, error)
}

type likeService struct {
	likeRepo repository.LikeRepository
	targets  *targetResolver
	notifier NotificationDispatcher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	tweetRepo repository.TweetRepository,
	commentRepo repository.CommentRepository,
	notifier NotificationDispatcher,
) LikeService {
	return &likeService{
		likeRepo: likeRepo,
		targets:  newTargetResolver(tweetRepo, commentRepo),
		notifier: notifier,
	}
}

func (s *likeService) Like(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error) {
	// 分发表校验目标存在并取归属者
	ownerID, err := s.targets.OwnerOf(ctx, target, targetID)
	if err != nil {
		return false, err
	}

	created, err := s.likeRepo.Create(ctx, userID, target, targetID)
	if err != nil {
		return false, err
	}

	// 只有首次点赞且不是自己的内容才通知
	if created && ownerID != userID {
		s.notifier.Dispatch(&model.Notification{
			ID:          uuid.New().String(),
			RecipientID: ownerID,
			ActorID:     userID,
			Verb:        model.VerbLike,
			TargetType:  target,
			TargetID:    targetID,
			Unread:      true,
			CreatedAt:   time.Now(),
		})
	}
	return created, nil
}

func (s *likeService) Unlike(ctx context.Context, userID string, target model.TargetType, targetID string) (int64, error) {
	if !target.Valid() {
		return 0, ErrBadTarget
	}
	return s.likeRepo.Delete(ctx, userID, target, targetID)
}

func (s *likeService) HasLiked(ctx context.Context, userID string, target model.TargetType, targetID string) (bool, error) {
	if !target.Valid() {
		return false, ErrBadTarget
	}
	return s.likeRepo.Exists(ctx, userID, target, targetID)
}

func (s *likeService) CountForTarget(ctx context.Context, target model.TargetType, targetID string) (int64, error) {
	if !target.Valid() {
		return 0, ErrBadTarget
	}
	return s.likeRepo.CountForTarget(ctx, target, targetID)
}
