package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tweetline/internal/model"
)

func TestCommentCreateAndNotify(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	commenter := env.mkUser(t, "commenter")
	tw, err := env.tweets.Create(ctx, author.ID, "discuss")
	require.NoError(t, err)

	cm, err := env.comments.Create(ctx, commenter.ID, tw.ID, "first!")
	require.NoError(t, err)
	assert.Equal(t, tw.ID, cm.TweetID)

	list, err := env.notifs.List(ctx, author.ID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.VerbComment, list[0].Verb)
	assert.Equal(t, commenter.ID, list[0].ActorID)
}

func TestCommentOnOwnTweetNoNotification(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	tw, err := env.tweets.Create(ctx, author.ID, "note to self")
	require.NoError(t, err)

	_, err = env.comments.Create(ctx, author.ID, tw.ID, "addendum")
	require.NoError(t, err)

	n, err := env.notifs.UnreadCount(ctx, author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestCommentOnMissingTweet(t *testing.T) {
	env := setupEnv(t)
	env.mkUser(t, "commenter")

	_, err := env.comments.Create(context.Background(), "commenter", "no-such-tweet", "hello?")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCommentsByTweet(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	author := env.mkUser(t, "author")
	env.mkUser(t, "c1")
	env.mkUser(t, "c2")
	tw, err := env.tweets.Create(ctx, author.ID, "popular")
	require.NoError(t, err)

	_, err = env.comments.Create(ctx, "c1", tw.ID, "one")
	require.NoError(t, err)
	_, err = env.comments.Create(ctx, "c2", tw.ID, "two")
	require.NoError(t, err)

	got, err := env.comments.ListByTweet(ctx, tw.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
