package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/pagination"
	"github.com/d60-Lab/tweetline/internal/repository"
	"github.com/d60-Lab/tweetline/pkg/logger"
)

// FanoutEngine 新推文写扩散
type FanoutEngine interface {
	FanoutToFollowers(ctx context.Context, tweet *model.Tweet) error
}

// FeedItem 水合后的时间线条目
type FeedItem struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	Tweet         *model.Tweet   `json:"tweet"`
	Author        *model.User    `json:"author,omitempty"`
	AuthorProfile *model.Profile `json:"author_profile,omitempty"`
}

// FeedPage 一页时间线
type FeedPage struct {
	Items       []*FeedItem `json:"items"`
	HasNextPage bool        `json:"has_next_page"`
}

// NewsFeedService 扇出 + 时间线读取
type NewsFeedService interface {
	FanoutEngine
	ListFeed(ctx context.Context, userID string, cur pagination.Cursor) (*FeedPage, error)
}

// FeedOptions 扇出与翻页参数
type FeedOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	FanoutRetries   int
	FanoutTimeout   time.Duration
}

func (o *FeedOptions) normalize() {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 20
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 20
	}
	if o.FanoutRetries <= 0 {
		o.FanoutRetries = 3
	}
	if o.FanoutTimeout <= 0 {
		o.FanoutTimeout = 5 * time.Second
	}
}

type newsFeedService struct {
	feedRepo   repository.FeedRepository
	tweetRepo  repository.TweetRepository
	relations  *cache.RelationCache
	objects    *cache.ObjectCache
	userSvc    UserService
	profileSvc ProfileService
	opts       FeedOptions
}

func NewNewsFeedService(
	feedRepo repository.FeedRepository,
	tweetRepo repository.TweetRepository,
	relations *cache.RelationCache,
	objects *cache.ObjectCache,
	userSvc UserService,
	profileSvc ProfileService,
	opts FeedOptions,
) NewsFeedService {
	opts.normalize()
	return &newsFeedService{
		feedRepo:   feedRepo,
		tweetRepo:  tweetRepo,
		relations:  relations,
		objects:    objects,
		userSvc:    userSvc,
		profileSvc: profileSvc,
		opts:       opts,
	}
}

// FanoutToFollowers 把推文物化进每个粉丝加作者本人的时间线。
// 单次批量写入，(owner_id, tweet_id) 唯一键保证重试幂等；
// 与请求取消解耦，客户端断开不会留下写了一半的扇出。
func (s *newsFeedService) FanoutToFollowers(ctx context.Context, tweet *model.Tweet) error {
	ctx = context.WithoutCancel(ctx)

	followerIDs, err := s.relations.FollowerIDs(ctx, tweet.UserID)
	if err != nil {
		return fmt.Errorf("%w: resolve followers: %v", ErrFanoutFailed, err)
	}

	// 零粉丝也要写 self-entry，扇出不可跳过
	now := time.Now()
	entries := make([]model.NewsFeed, 0, len(followerIDs)+1)
	for _, fid := range followerIDs {
		entries = append(entries, model.NewsFeed{
			ID:        uuid.New().String(),
			OwnerID:   fid,
			TweetID:   tweet.ID,
			CreatedAt: now,
		})
	}
	entries = append(entries, model.NewsFeed{
		ID:        uuid.New().String(),
		OwnerID:   tweet.UserID,
		TweetID:   tweet.ID,
		CreatedAt: now,
	})

	var lastErr error
	for attempt := 1; attempt <= s.opts.FanoutRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.FanoutTimeout)
		lastErr = s.feedRepo.BulkCreate(attemptCtx, entries)
		cancel()
		if lastErr == nil {
			return nil
		}
		logger.Warn("fanout attempt failed",
			zap.String("tweet", tweet.ID),
			zap.Int("attempt", attempt),
			zap.Int("entries", len(entries)),
			zap.Error(lastErr))
	}
	return fmt.Errorf("%w: %v", ErrFanoutFailed, lastErr)
}

// ListFeed 游标翻页读物化行，多取一条判断 has_next_page，再经对象缓存水合
func (s *newsFeedService) ListFeed(ctx context.Context, userID string, cur pagination.Cursor) (*FeedPage, error) {
	cur.Clamp(s.opts.DefaultPageSize, s.opts.MaxPageSize)

	q := repository.FeedQuery{
		Before:   cur.CreatedAtLT,
		BeforeID: cur.IDLT,
		After:    cur.CreatedAtGT,
		Limit:    cur.PageSize + 1,
	}
	rows, err := s.feedRepo.ListByOwner(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	hasNext := len(rows) > cur.PageSize
	if hasNext {
		rows = rows[:cur.PageSize]
	}

	items, err := s.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Items: items, HasNextPage: hasNext}, nil
}

// hydrate 批量水合：推文、作者、作者资料全部走读穿透缓存，
// 每类对象至多一次批量落库，杜绝逐行查询
func (s *newsFeedService) hydrate(ctx context.Context, rows []*model.NewsFeed) ([]*FeedItem, error) {
	if len(rows) == 0 {
		return []*FeedItem{}, nil
	}

	tweetIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if !seen[r.TweetID] {
			seen[r.TweetID] = true
			tweetIDs = append(tweetIDs, r.TweetID)
		}
	}

	tweets, err := s.tweetsThroughCache(ctx, tweetIDs)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(tweets))
	seenAuthor := make(map[string]bool, len(tweets))
	for _, t := range tweets {
		if !seenAuthor[t.UserID] {
			seenAuthor[t.UserID] = true
			authorIDs = append(authorIDs, t.UserID)
		}
	}

	users, err := s.userSvc.GetUsersThroughCache(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profileSvc.GetByUserIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	items := make([]*FeedItem, 0, len(rows))
	for _, r := range rows {
		t, ok := tweets[r.TweetID]
		if !ok {
			// 物化行引用的推文已不存在，跳过该行
			continue
		}
		items = append(items, &FeedItem{
			ID:            r.ID,
			CreatedAt:     r.CreatedAt,
			Tweet:         t,
			Author:        users[t.UserID],
			AuthorProfile: profiles[t.UserID],
		})
	}
	return items, nil
}

func (s *newsFeedService) tweetsThroughCache(ctx context.Context, ids []string) (map[string]*model.Tweet, error) {
	out := make(map[string]*model.Tweet, len(ids))
	s.objects.MGet(ctx, cache.KindTweet, ids, func(id string, data []byte) {
		var t model.Tweet
		if json.Unmarshal(data, &t) == nil {
			out[id] = &t
		}
	})

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	tweets, err := s.tweetRepo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, t := range tweets {
		out[t.ID] = t
		s.objects.Set(ctx, cache.KindTweet, t.ID, t)
	}
	return out, nil
}
