package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/pagination"
	"github.com/d60-Lab/tweetline/internal/repository"
)

func TestFanoutDeliversToAllFollowersAndSelf(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	for _, f := range []string{"f1", "f2", "f3"} {
		env.mkUser(t, f)
		env.mkFriendship(t, f, author.ID)
	}

	tw, err := env.tweets.Create(ctx, author.ID, "hello")
	require.NoError(t, err)

	for _, owner := range []string{"f1", "f2", "f3", "author"} {
		assert.Equal(t, []string{tw.ID}, env.feedTweetIDs(t, owner), "owner %s", owner)
	}
}

func TestFanoutZeroFollowersStillWritesSelfEntry(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "loner")
	tw, err := env.tweets.Create(ctx, author.ID, "talking to myself")
	require.NoError(t, err)

	assert.Equal(t, []string{tw.ID}, env.feedTweetIDs(t, author.ID))
}

// 重复扇出撞 (owner_id, tweet_id) 唯一键静默跳过，不产生重复行
func TestFanoutIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	env.mkUser(t, "f1")
	env.mkFriendship(t, "f1", author.ID)

	tw, err := env.tweets.Create(ctx, author.ID, "once")
	require.NoError(t, err)

	require.NoError(t, env.feed.FanoutToFollowers(ctx, tw))

	assert.Len(t, env.feedTweetIDs(t, "f1"), 1)
	assert.Len(t, env.feedTweetIDs(t, author.ID), 1)
}

// 扇出不受请求取消影响：已取消的 ctx 下仍然完整落库
func TestFanoutSurvivesRequestCancellation(t *testing.T) {
	env := setupEnv(t)

	author := env.mkUser(t, "author")
	env.mkUser(t, "f1")
	env.mkFriendship(t, "f1", author.ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tw, err := env.tweets.Create(ctx, author.ID, "delivered anyway")
	require.NoError(t, err)
	assert.Equal(t, []string{tw.ID}, env.feedTweetIDs(t, "f1"))
}

type failingFeedRepo struct{}

func (failingFeedRepo) BulkCreate(context.Context, []model.NewsFeed) error {
	return errors.New("disk on fire")
}
func (failingFeedRepo) ListByOwner(context.Context, string, repository.FeedQuery) ([]*model.NewsFeed, error) {
	return nil, errors.New("disk on fire")
}
func (failingFeedRepo) CountByOwner(context.Context, string) (int64, error) {
	return 0, errors.New("disk on fire")
}
func (failingFeedRepo) Close() error { return nil }

// 重试耗尽后扇出失败必须向调用方上报，不静默吞掉
func TestFanoutFailureSurfacesToCaller(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	tweetRepo := repository.NewTweetRepository(env.db)
	broken := NewNewsFeedService(failingFeedRepo{}, tweetRepo, env.relations, env.objects, env.users, env.profiles, FeedOptions{
		FanoutRetries: 2,
		FanoutTimeout: 100 * time.Millisecond,
	})
	tweets := NewTweetService(tweetRepo, env.objects, broken)

	_, err := tweets.Create(ctx, author.ID, "doomed")
	assert.ErrorIs(t, err, ErrFanoutFailed)
}

// 关注前发布的推文不出现在时间线里（不回填历史）
func TestFeedOnlyContainsTweetsPostedWhileFollowing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")

	before, err := env.tweets.Create(ctx, author.ID, "before follow")
	require.NoError(t, err)

	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	after, err := env.tweets.Create(ctx, author.ID, "after follow")
	require.NoError(t, err)

	ids := env.feedTweetIDs(t, reader.ID)
	assert.Contains(t, ids, after.ID)
	assert.NotContains(t, ids, before.ID)
}

// 取关后：已物化的行保留，新推文不再投递
func TestFeedAfterUnfollow(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")
	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	kept, err := env.tweets.Create(ctx, author.ID, "while following")
	require.NoError(t, err)

	_, err = env.friendships.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)

	missed, err := env.tweets.Create(ctx, author.ID, "after unfollow")
	require.NoError(t, err)

	ids := env.feedTweetIDs(t, reader.ID)
	assert.Contains(t, ids, kept.ID)
	assert.NotContains(t, ids, missed.ID)
}

func TestListFeedOrderAndHydration(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")
	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	var wantNewestFirst []string
	for i := 0; i < 3; i++ {
		tw, err := env.tweets.Create(ctx, author.ID, fmt.Sprintf("tweet %d", i))
		require.NoError(t, err)
		wantNewestFirst = append([]string{tw.ID}, wantNewestFirst...)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := env.feed.ListFeed(ctx, reader.ID, pagination.Cursor{PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.False(t, page.HasNextPage)

	for i, item := range page.Items {
		require.NotNil(t, item.Tweet)
		assert.Equal(t, wantNewestFirst[i], item.Tweet.ID)
		require.NotNil(t, item.Author, "feed item must carry the author")
		assert.Equal(t, author.ID, item.Author.ID)
	}
}

// 游标翻到底：无缝隙、无重复、has_next_page 标志正确
func TestListFeedCursorPagination(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")
	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	const total = 12
	for i := 0; i < total; i++ {
		_, err := env.tweets.Create(ctx, author.ID, fmt.Sprintf("tweet %d", i))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	seen := make(map[string]bool)
	var cur pagination.Cursor
	cur.PageSize = 5
	pages := 0
	for {
		page, err := env.feed.ListFeed(ctx, reader.ID, cur)
		require.NoError(t, err)
		pages++
		require.LessOrEqual(t, len(page.Items), 5)

		for _, item := range page.Items {
			require.False(t, seen[item.Tweet.ID], "duplicate tweet %s across pages", item.Tweet.ID)
			seen[item.Tweet.ID] = true
		}
		if !page.HasNextPage {
			break
		}
		last := page.Items[len(page.Items)-1]
		createdAt := last.CreatedAt
		cur = pagination.Cursor{CreatedAtLT: &createdAt, IDLT: last.ID, PageSize: 5}
	}

	assert.Equal(t, total, len(seen))
	assert.Equal(t, 3, pages)
}

// created_at__gt 拉取新内容
func TestListFeedPollNewer(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")
	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	_, err := env.tweets.Create(ctx, author.ID, "old")
	require.NoError(t, err)

	page, err := env.feed.ListFeed(ctx, reader.ID, pagination.Cursor{PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	watermark := page.Items[0].CreatedAt

	time.Sleep(2 * time.Millisecond)
	fresh, err := env.tweets.Create(ctx, author.ID, "new")
	require.NoError(t, err)

	page, err = env.feed.ListFeed(ctx, reader.ID, pagination.Cursor{CreatedAtGT: &watermark, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, fresh.ID, page.Items[0].Tweet.ID)
}

// 超过上限的页大小静默收敛到 MaxPageSize
func TestListFeedClampsPageSize(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")
	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	for i := 0; i < 10; i++ {
		_, err := env.tweets.Create(ctx, author.ID, fmt.Sprintf("tweet %d", i))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := env.feed.ListFeed(ctx, reader.ID, pagination.Cursor{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, page.Items, 8) // MaxPageSize
	assert.True(t, page.HasNextPage)
}

// 物化行引用的推文已被删除时跳过该行，不报错
func TestListFeedSkipsDanglingRows(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	reader := env.mkUser(t, "reader")
	require.NoError(t, env.friendships.Follow(ctx, reader.ID, author.ID))

	gone, err := env.tweets.Create(ctx, author.ID, "to vanish")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	kept, err := env.tweets.Create(ctx, author.ID, "to stay")
	require.NoError(t, err)

	require.NoError(t, env.db.Where("id = ?", gone.ID).Delete(&model.Tweet{}).Error)

	page, err := env.feed.ListFeed(ctx, reader.ID, pagination.Cursor{PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, kept.ID, page.Items[0].Tweet.ID)
}
