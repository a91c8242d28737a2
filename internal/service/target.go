package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// targetResolver 点赞/通知目标的分发表：按判别标签解析目标归属者。
// 显式注册代替运行时类型查表，新目标类型在这里加一行。
type targetResolver struct {
	resolvers map[model.TargetType]func(ctx context.Context, id string) (ownerID string, err error)
}

func newTargetResolver(tweetRepo repository.TweetRepository, commentRepo repository.CommentRepository) *targetResolver {
	return &targetResolver{
		resolvers: map[model.TargetType]func(context.Context, string) (string, error){
			model.TargetTweet: func(ctx context.Context, id string) (string, error) {
				t, err := tweetRepo.GetByID(ctx, id)
				if err != nil {
					return "", err
				}
				return t.UserID, nil
			},
			model.TargetComment: func(ctx context.Context, id string) (string, error) {
				c, err := commentRepo.GetByID(ctx, id)
				if err != nil {
					return "", err
				}
				return c.UserID, nil
			},
		},
	}
}

// OwnerOf 返回目标对象的作者；目标缺失返回 ErrNotFound
func (r *targetResolver) OwnerOf(ctx context.Context, target model.TargetType, id string) (string, error) {
	resolve, ok := r.resolvers[target]
	if !ok {
		return "", ErrBadTarget
	}
	ownerID, err := resolve(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return ownerID, nil
}
