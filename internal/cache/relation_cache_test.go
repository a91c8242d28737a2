package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
)

func setupRelationCache(t *testing.T) (*RelationCache, *gorm.DB, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Friendship{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRelationCache(db, rdb, time.Minute, 200*time.Millisecond), db, mr
}

func follow(t *testing.T, db *gorm.DB, from, to string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Friendship{
		ID:         uuid.NewString(),
		FromUserID: from,
		ToUserID:   to,
		CreatedAt:  time.Now(),
	}).Error)
}

func TestRelationCacheComputesBothDirections(t *testing.T) {
	c, db, _ := setupRelationCache(t)
	ctx := context.Background()

	follow(t, db, "a", "b")
	follow(t, db, "a", "c")
	follow(t, db, "c", "b")

	followings, err := c.FollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, followings)

	followers, err := c.FollowerIDs(ctx, "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, followers)
}

// 命中后不再查库：删掉底层行，缓存仍然服务旧集合，直到失效
func TestRelationCacheServesFromCacheUntilInvalidated(t *testing.T) {
	c, db, _ := setupRelationCache(t)
	ctx := context.Background()

	follow(t, db, "a", "b")
	_, err := c.FollowingIDs(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, db.Where("from_user_id = ?", "a").Delete(&model.Friendship{}).Error)

	stale, err := c.FollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, stale)

	c.InvalidateFollowings(ctx, "a")

	fresh, err := c.FollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestRelationCacheInvalidateRecomputesWholeSet(t *testing.T) {
	c, db, _ := setupRelationCache(t)
	ctx := context.Background()

	follow(t, db, "x", "u")
	followers, err := c.FollowerIDs(ctx, "u")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x"}, followers)

	follow(t, db, "y", "u")
	c.InvalidateFollowers(ctx, "u")

	followers, err = c.FollowerIDs(ctx, "u")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, followers)
}

// 空集合不入缓存，下次读仍然落库
func TestRelationCacheDoesNotCacheEmptySet(t *testing.T) {
	c, db, mr := setupRelationCache(t)
	ctx := context.Background()

	ids, err := c.FollowerIDs(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, mr.Exists("followers:nobody"))

	// 之后出现关注者，无需任何失效即可读到
	follow(t, db, "a", "nobody")
	ids, err = c.FollowerIDs(ctx, "nobody")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, ids)
}

// 缓存不可达时直接落库回答，不报错
func TestRelationCacheUnreachableFallsBackToStore(t *testing.T) {
	c, db, mr := setupRelationCache(t)
	ctx := context.Background()

	follow(t, db, "a", "b")
	mr.Close()

	ids, err := c.FollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, ids)
}
