package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tweetline/internal/model"
)

func TestLikeTweetAndNotify(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	fan := env.mkUser(t, "fan")
	tw, err := env.tweets.Create(ctx, author.ID, "like me")
	require.NoError(t, err)

	created, err := env.likes.Like(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.True(t, created)

	n, err := env.notifs.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := env.notifs.List(ctx, author.ID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.VerbLike, list[0].Verb)
	assert.Equal(t, fan.ID, list[0].ActorID)
	assert.Equal(t, tw.ID, list[0].TargetID)
}

// 重复点赞是良性空操作：created=false，不产生第二条通知
func TestLikeIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	fan := env.mkUser(t, "fan")
	tw, err := env.tweets.Create(ctx, author.ID, "x")
	require.NoError(t, err)

	created, err := env.likes.Like(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.likes.Like(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.False(t, created)

	cnt, err := env.likes.CountForTarget(ctx, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)

	n, err := env.notifs.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// 给自己的内容点赞不通知
func TestLikeOwnContentNoNotification(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	tw, err := env.tweets.Create(ctx, author.ID, "self love")
	require.NoError(t, err)

	created, err := env.likes.Like(ctx, author.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.True(t, created)

	n, err := env.notifs.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestLikeComment(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	commenter := env.mkUser(t, "commenter")
	fan := env.mkUser(t, "fan")
	tw, err := env.tweets.Create(ctx, author.ID, "post")
	require.NoError(t, err)
	cm, err := env.comments.Create(ctx, commenter.ID, tw.ID, "nice")
	require.NoError(t, err)

	created, err := env.likes.Like(ctx, fan.ID, model.TargetComment, cm.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// 通知发给评论作者，不是推文作者
	n, err := env.notifs.UnreadCount(ctx, commenter.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLikeBadTarget(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.mkUser(t, "fan")

	_, err := env.likes.Like(ctx, "fan", model.TargetType("poll"), "x")
	assert.ErrorIs(t, err, ErrBadTarget)

	_, err = env.likes.Like(ctx, "fan", model.TargetTweet, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnlike(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	fan := env.mkUser(t, "fan")
	tw, err := env.tweets.Create(ctx, author.ID, "x")
	require.NoError(t, err)

	_, err = env.likes.Like(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)

	n, err := env.likes.Unlike(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	liked, err := env.likes.HasLiked(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	// 再取消一次不算错误
	n, err = env.likes.Unlike(ctx, fan.ID, model.TargetTweet, tw.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
