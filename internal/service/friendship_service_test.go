package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowAndHasFollowed(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.mkUser(t, "a")
	env.mkUser(t, "b")

	require.NoError(t, env.friendships.Follow(ctx, "a", "b"))

	ok, err := env.friendships.HasFollowed(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.friendships.HasFollowed(ctx, "b", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowSelfRejected(t *testing.T) {
	env := setupEnv(t)
	env.mkUser(t, "a")

	err := env.friendships.Follow(context.Background(), "a", "a")
	assert.ErrorIs(t, err, ErrFollowSelf)
}

func TestFollowUnknownTarget(t *testing.T) {
	env := setupEnv(t)
	env.mkUser(t, "a")

	err := env.friendships.Follow(context.Background(), "a", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

// 重复关注按冲突上报，不静默成功
func TestFollowTwiceIsConflict(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.mkUser(t, "a")
	env.mkUser(t, "b")

	require.NoError(t, env.friendships.Follow(ctx, "a", "b"))
	assert.ErrorIs(t, env.friendships.Follow(ctx, "a", "b"), ErrAlreadyFollowing)
}

func TestUnfollowReturnsDeletedCount(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.mkUser(t, "a")
	env.mkUser(t, "b")
	require.NoError(t, env.friendships.Follow(ctx, "a", "b"))

	n, err := env.friendships.Unfollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// 取关未关注的人不算错误
	n, err = env.friendships.Unfollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

// 关注/取关后，缓存热的情况下 id 集合立刻反映新状态
func TestFollowInvalidatesRelationSetsImmediately(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.mkUser(t, "a")
	env.mkUser(t, "b")
	env.mkUser(t, "c")

	require.NoError(t, env.friendships.Follow(ctx, "a", "b"))

	// 预热两个方向的集合
	followings, err := env.friendships.GetFollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, followings)
	followers, err := env.friendships.GetFollowerIDs(ctx, "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, followers)

	require.NoError(t, env.friendships.Follow(ctx, "a", "c"))

	followings, err = env.friendships.GetFollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, followings)

	_, err = env.friendships.Unfollow(ctx, "a", "b")
	require.NoError(t, err)

	followings, err = env.friendships.GetFollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c"}, followings)
	followers, err = env.friendships.GetFollowerIDs(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestListFollowersPagination(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.mkUser(t, "star")
	for _, f := range []string{"f1", "f2", "f3"} {
		env.mkUser(t, f)
		require.NoError(t, env.friendships.Follow(ctx, f, "star"))
	}

	page1, err := env.friendships.ListFollowers(ctx, "star", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page2, err := env.friendships.ListFollowers(ctx, "star", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}
