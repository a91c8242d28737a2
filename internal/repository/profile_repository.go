package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tweetline/internal/model"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error)
	// TryCreate 乐观插入；和并发创建撞唯一键时返回 false
	TryCreate(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, userID string, fields map[string]interface{}) error
}

type profileRepository struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepository{db: db} }

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var res []*model.Profile
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&res).Error
	return res, err
}

func (r *profileRepository) TryCreate(ctx context.Context, userID string) (bool, error) {
	p := &model.Profile{ID: uuid.New().String(), UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *profileRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Profile{}).Where("user_id = ?", userID).Updates(fields).Error
}
