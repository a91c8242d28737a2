package model

import "time"

// 通知动词
const (
	VerbComment = "commented"
	VerbLike    = "liked"
)

// Notification 站内通知，只在创建与已读翻转时变更
type Notification struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string     `json:"recipient_id" gorm:"type:varchar(36);index:idx_notif_recipient_created;not null"`
	ActorID     string     `json:"actor_id" gorm:"type:varchar(36);not null"`
	Verb        string     `json:"verb" gorm:"type:varchar(16);not null"`
	TargetType  TargetType `json:"target_type" gorm:"type:varchar(16);not null"`
	TargetID    string     `json:"target_id" gorm:"type:varchar(36);not null"`
	Unread      bool       `json:"unread" gorm:"index;default:true"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_notif_recipient_created"`
}

func (Notification) TableName() string { return "notifications" }
