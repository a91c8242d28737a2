package model

import "time"

// NewsFeed 时间线物化行（按 owner 切分），仅由扇出写入，只增不改
type NewsFeed struct {
	ID      string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID string `json:"owner_id" gorm:"type:varchar(36);index:idx_feed_owner_created;uniqueIndex:ux_feed_owner_tweet;not null"`
	TweetID string `json:"tweet_id" gorm:"type:varchar(36);uniqueIndex:ux_feed_owner_tweet;not null"`
	// 复合唯一键，扇出重试不产生重复行
	// ux_feed_owner_tweet = (owner_id, tweet_id)
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_feed_owner_created"`
}

func (NewsFeed) TableName() string { return "newsfeeds" }
