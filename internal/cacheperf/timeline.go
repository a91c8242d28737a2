package cacheperf

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
)

// TweetSnapshot contains the minimal tweet info a timeline page renders.
type TweetSnapshot struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineService compares caching strategies for timeline reads.
type TimelineService struct {
	db      *gorm.DB
	cache   *redis.Client
	ttl     time.Duration
	dbDelay time.Duration

	pageQueries    atomic.Int64
	feedScans      atomic.Int64
	tweetBulkLoads atomic.Int64
}

// NewTimelineService builds a demo service using the provided DB + Redis client.
// dbDelay simulates the round-trip cost of hitting the primary store.
func NewTimelineService(db *gorm.DB, cache *redis.Client, ttl, dbDelay time.Duration) *TimelineService {
	return &TimelineService{db: db, cache: cache, ttl: ttl, dbDelay: dbDelay}
}

// FetchTimelineNoCache joins feed rows to tweets on every request.
func (s *TimelineService) FetchTimelineNoCache(ctx context.Context, ownerID string, page, size int) ([]TweetSnapshot, error) {
	return s.queryTimeline(ctx, ownerID, page, size)
}

// FetchTimelineNaiveCache caches the fully rendered page under one key.
// Every (owner, page, size) combination gets its own entry, so the key
// space explodes and any new tweet stales every cached page at once.
func (s *TimelineService) FetchTimelineNaiveCache(ctx context.Context, ownerID string, page, size int) ([]TweetSnapshot, error) {
	key := fmt.Sprintf("timeline:%s:%d:%d", ownerID, page, size)
	if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var out []TweetSnapshot
		if uErr := json.Unmarshal(data, &out); uErr == nil {
			return out, nil
		}
	}

	rows, err := s.queryTimeline(ctx, ownerID, page, size)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(rows); err == nil {
		_ = s.cache.Set(ctx, key, payload, s.ttl).Err()
	}
	return rows, nil
}

// FetchTimelineOptimized keeps one id list per owner plus shared per-tweet
// objects. Pages share the tweet objects across owners, and a new tweet only
// invalidates the owner lists it lands in.
func (s *TimelineService) FetchTimelineOptimized(ctx context.Context, ownerID string, page, size int) ([]TweetSnapshot, error) {
	key := fmt.Sprintf("timeline:index:%s", ownerID)

	start := (page - 1) * size
	end := start + size - 1

	exists, _ := s.cache.Exists(ctx, key).Result()
	var ids []string

	if exists > 0 {
		ids, _ = s.cache.LRange(ctx, key, int64(start), int64(end)).Result()
	}

	if len(ids) == 0 {
		allIDs, err := s.loadFeedIDsAndCache(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		if start >= len(allIDs) {
			return []TweetSnapshot{}, nil
		}
		endIdx := start + size
		if endIdx > len(allIDs) {
			endIdx = len(allIDs)
		}
		ids = allIDs[start:endIdx]
	}

	return s.loadTweets(ctx, ids)
}

func (s *TimelineService) loadFeedIDsAndCache(ctx context.Context, ownerID string) ([]string, error) {
	time.Sleep(s.dbDelay)
	s.feedScans.Add(1)

	var ids []string
	if err := s.db.WithContext(ctx).
		Table("newsfeeds").
		Select("tweet_id").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(&ids).Error; err != nil {
		return nil, err
	}

	key := fmt.Sprintf("timeline:index:%s", ownerID)
	if len(ids) > 0 {
		pipe := s.cache.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, s.ttl)
		pipe.Exec(ctx)
	}

	return ids, nil
}

func (s *TimelineService) queryTimeline(ctx context.Context, ownerID string, page, size int) ([]TweetSnapshot, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	time.Sleep(s.dbDelay)

	s.pageQueries.Add(1)

	var rows []TweetSnapshot
	err := s.db.WithContext(ctx).
		Table("newsfeeds").
		Select("tweets.id", "tweets.user_id", "tweets.content", "tweets.created_at").
		Joins("JOIN tweets ON newsfeeds.tweet_id = tweets.id").
		Where("newsfeeds.owner_id = ?", ownerID).
		Order("newsfeeds.created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}

func (s *TimelineService) loadTweets(ctx context.Context, ids []string) ([]TweetSnapshot, error) {
	if len(ids) == 0 {
		return []TweetSnapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf("tweet:%s", id)
	}

	cached := make(map[string]TweetSnapshot, len(ids))
	if vals, err := s.cache.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok {
				var snap TweetSnapshot
				if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
					cached[ids[i]] = snap
				}
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		s.tweetBulkLoads.Add(1)

		time.Sleep(s.dbDelay)

		var tweets []model.Tweet
		if err := s.db.WithContext(ctx).Where("id IN ?", missing).Find(&tweets).Error; err != nil {
			return nil, err
		}
		for _, t := range tweets {
			snap := TweetSnapshot{
				ID:        t.ID,
				UserID:    t.UserID,
				Content:   t.Content,
				CreatedAt: t.CreatedAt,
			}
			cached[t.ID] = snap
			if payload, err := json.Marshal(snap); err == nil {
				_ = s.cache.Set(ctx, fmt.Sprintf("tweet:%s", t.ID), payload, s.ttl).Err()
			}
		}
	}

	result := make([]TweetSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := cached[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// ResetCounters clears recorded db call counters.
func (s *TimelineService) ResetCounters() {
	s.pageQueries.Store(0)
	s.feedScans.Store(0)
	s.tweetBulkLoads.Store(0)
}

// Counters reports how many underlying DB loads were executed.
func (s *TimelineService) Counters() TimelineDBCounters {
	return TimelineDBCounters{
		PageQueries:    s.pageQueries.Load(),
		FeedScans:      s.feedScans.Load(),
		TweetBulkLoads: s.tweetBulkLoads.Load(),
	}
}

// TimelineDBCounters summarises DB hits during a run.
type TimelineDBCounters struct {
	PageQueries    int64
	FeedScans      int64
	TweetBulkLoads int64
}
