package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RelationCache caches derived friendship id-sets in Redis sets:
//
//	followings:<id> — ids the user follows (from_user_id = id)
//	followers:<id>  — ids following the user (to_user_id = id)
//
// A miss recomputes the whole set with exactly one id-column query — never a
// per-item lookup and never a join. Mutations invalidate the whole key; the
// set is never patched in place, so there is no partial-update race. Empty
// sets are not cached: a user with no edges recomputes on every read, which
// keeps the cache encoding trivial.
type RelationCache struct {
	db      *gorm.DB
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRelationCache(db *gorm.DB, rdb *redis.Client, ttl, timeout time.Duration) *RelationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	return &RelationCache{db: db, rdb: rdb, ttl: ttl, timeout: timeout}
}

func followingsKey(userID string) string { return fmt.Sprintf("followings:%s", userID) }
func followersKey(userID string) string  { return fmt.Sprintf("followers:%s", userID) }

// FollowingIDs returns the set of user ids that userID follows.
func (c *RelationCache) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return c.idSet(ctx, followingsKey(userID), "from_user_id = ?", "to_user_id", userID)
}

// FollowerIDs returns the set of user ids following userID. This is the set
// the fan-out engine materializes feed rows for.
func (c *RelationCache) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return c.idSet(ctx, followersKey(userID), "to_user_id = ?", "from_user_id", userID)
}

func (c *RelationCache) idSet(ctx context.Context, key, where, column, userID string) ([]string, error) {
	if ids := c.cachedSet(ctx, key); len(ids) > 0 {
		return ids, nil
	}

	// one query for the whole set
	var ids []string
	if err := c.db.WithContext(ctx).
		Table("friendships").
		Select(column).
		Where(where, userID).
		Scan(&ids).Error; err != nil {
		return nil, err
	}

	c.storeSet(ctx, key, ids)
	return ids, nil
}

func (c *RelationCache) cachedSet(ctx context.Context, key string) []string {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ids, err := c.rdb.SMembers(opCtx, key).Result()
	if err != nil {
		// unreachable cache degrades to a store read
		return nil
	}
	return ids
}

func (c *RelationCache) storeSet(ctx context.Context, key string, ids []string) {
	if len(ids) == 0 {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe := c.rdb.Pipeline()
	pipe.Del(opCtx, key)
	pipe.SAdd(opCtx, key, members...)
	pipe.Expire(opCtx, key, c.ttl)
	_, _ = pipe.Exec(opCtx)
}

// InvalidateFollowings drops the followings set for userID.
func (c *RelationCache) InvalidateFollowings(ctx context.Context, userID string) {
	c.del(ctx, followingsKey(userID))
}

// InvalidateFollowers drops the followers set for userID.
func (c *RelationCache) InvalidateFollowers(ctx context.Context, userID string) {
	c.del(ctx, followersKey(userID))
}

func (c *RelationCache) del(ctx context.Context, key string) {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_ = c.rdb.Del(opCtx, key).Err()
}
