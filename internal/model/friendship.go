package model

import "time"

// Friendship 关注关系（from 关注 to），单表双向索引，无冗余粉丝表
type Friendship struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FromUserID string `json:"from_user_id" gorm:"type:varchar(36);index:idx_friendship_from_created;index:idx_friendship_pair,unique;not null"`
	ToUserID   string `json:"to_user_id" gorm:"type:varchar(36);index:idx_friendship_to_created;index:idx_friendship_pair,unique;not null"`
	// 复合唯一键，避免重复关注
	// idx_friendship_pair = (from_user_id, to_user_id)
	// 两个 (user, created_at) 索引分别服务关注列表与粉丝列表，免 join
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_friendship_from_created;index:idx_friendship_to_created"`
}

func (Friendship) TableName() string { return "friendships" }
