package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// ProfileService 用户资料，首次访问时惰性创建
type ProfileService interface {
	// GetOrCreate 保证并发首访下恰好产生一行（唯一键兜底 + 输掉竞争后重读）
	GetOrCreate(ctx context.Context, userID string) (*model.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*model.Profile, error)
	Update(ctx context.Context, userID string, fields map[string]interface{}) (*model.Profile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	objects     *cache.ObjectCache
	inval       *cache.Invalidator
}

func NewProfileService(profileRepo repository.ProfileRepository, objects *cache.ObjectCache, inval *cache.Invalidator) ProfileService {
	return &profileService{profileRepo: profileRepo, objects: objects, inval: inval}
}

func (s *profileService) GetOrCreate(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := s.objects.Get(ctx, cache.KindProfile, userID, &p); err == nil {
		return &p, nil
	}

	got, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 乐观插入；并发首访时至多一个成功，输家重读赢家的行
		if _, err := s.profileRepo.TryCreate(ctx, userID); err != nil {
			return nil, err
		}
		got, err = s.profileRepo.GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	s.objects.Set(ctx, cache.KindProfile, userID, got)
	return got, nil
}

// GetByUserIDs 批量读穿透，仅做水合不触发惰性创建
func (s *profileService) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
	out := make(map[string]*model.Profile, len(userIDs))
	s.objects.MGet(ctx, cache.KindProfile, userIDs, func(id string, data []byte) {
		var p model.Profile
		if json.Unmarshal(data, &p) == nil {
			out[id] = &p
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

	profiles, err := s.profileRepo.GetByUserIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
		s.objects.Set(ctx, cache.KindProfile, p.UserID, p)
	}
	return out, nil
}

func (s *profileService) Update(ctx context.Context, userID string, fields map[string]interface{}) (*model.Profile, error) {
	// 确保资料行存在再更新
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Update(ctx, userID, fields); err != nil {
		return nil, err
	}
	// 先落库后失效，返回前完成
	s.inval.OnProfileUpdated(ctx, userID)
	return s.profileRepo.GetByUserID(ctx, userID)
}
