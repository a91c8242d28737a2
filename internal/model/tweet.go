package model

import "time"

// Tweet 推文，发布后不可变
type Tweet struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_tweet_user_created;not null"`
	Content   string    `json:"content" gorm:"type:varchar(280);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_tweet_user_created"`
}

func (Tweet) TableName() string { return "tweets" }

// Comment 针对某条推文的评论
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null"`
	TweetID   string    `json:"tweet_id" gorm:"type:varchar(36);index:idx_comment_tweet_created;not null"`
	Content   string    `json:"content" gorm:"type:varchar(140);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comment_tweet_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
