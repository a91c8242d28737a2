package model

import "time"

// TargetType 点赞/通知目标的判别标签
type TargetType string

const (
	TargetTweet   TargetType = "tweet"
	TargetComment TargetType = "comment"
)

// Valid 仅允许已知目标类型
func (t TargetType) Valid() bool {
	return t == TargetTweet || t == TargetComment
}

// Like 点赞（user, target）唯一
type Like struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user_id" gorm:"type:varchar(36);index:idx_like_unique,unique;not null"`
	TargetType TargetType `json:"target_type" gorm:"type:varchar(16);index:idx_like_unique,unique;index:idx_like_target;not null"`
	TargetID   string     `json:"target_id" gorm:"type:varchar(36);index:idx_like_unique,unique;index:idx_like_target;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index:idx_like_target"`
}

func (Like) TableName() string { return "likes" }
