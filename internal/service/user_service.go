package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// UserService 账号与用户对象缓存读取
type UserService interface {
	Register(ctx context.Context, username, email, password string, age int) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	GetUserThroughCache(ctx context.Context, userID string) (*model.User, error)
	GetUsersThroughCache(ctx context.Context, userIDs []string) (map[string]*model.User, error)
	UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) error
}

type userService struct {
	userRepo repository.UserRepository
	objects  *cache.ObjectCache
	inval    *cache.Invalidator
}

func NewUserService(userRepo repository.UserRepository, objects *cache.ObjectCache, inval *cache.Invalidator) UserService {
	return &userService{userRepo: userRepo, objects: objects, inval: inval}
}

func (s *userService) Register(ctx context.Context, username, email, password string, age int) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: string(hash),
		Age:      age,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	// 认证走库不走缓存，缓存里的对象不带密码哈希
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// GetUserThroughCache 读穿透：未命中落库并回填
func (s *userService) GetUserThroughCache(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	if err := s.objects.Get(ctx, cache.KindUser, userID, &u); err == nil {
		return &u, nil
	}
	got, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.objects.Set(ctx, cache.KindUser, userID, got)
	return got, nil
}

// GetUsersThroughCache 批量读穿透：MGet 命中部分，未命中一次性落库回填
func (s *userService) GetUsersThroughCache(ctx context.Context, userIDs []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(userIDs))
	s.objects.MGet(ctx, cache.KindUser, userIDs, func(id string, data []byte) {
		var u model.User
		if json.Unmarshal(data, &u) == nil {
			out[id] = &u
		}
	})

	missing := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
		s.objects.Set(ctx, cache.KindUser, u.ID, u)
	}
	return out, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) error {
	if err := s.userRepo.Update(ctx, userID, fields); err != nil {
		return err
	}
	// 先落库后失效，返回前完成
	s.inval.OnUserUpdated(ctx, userID)
	return nil
}
