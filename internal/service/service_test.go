package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

// testEnv 用真实 sqlite + miniredis 把整条服务链拉起来
type testEnv struct {
	db *gorm.DB
	mr *miniredis.Miniredis

	objects   *cache.ObjectCache
	relations *cache.RelationCache

	users       UserService
	profiles    ProfileService
	friendships FriendshipService
	tweets      TweetService
	feed        NewsFeedService
	comments    CommentService
	likes       LikeService
	notifs      NotificationService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Profile{}, &model.Friendship{},
		&model.Tweet{}, &model.Comment{}, &model.Like{},
		&model.NewsFeed{}, &model.Notification{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	objects := cache.NewObjectCache(rdb, time.Minute, 200*time.Millisecond)
	relations := cache.NewRelationCache(db, rdb, time.Minute, 200*time.Millisecond)
	inval := cache.NewInvalidator(objects, relations)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	feedRepo := repository.NewSingleDBFeedRepository(db, 1000)

	userSvc := NewUserService(userRepo, objects, inval)
	profileSvc := NewProfileService(profileRepo, objects, inval)
	friendshipSvc := NewFriendshipService(friendshipRepo, userRepo, relations, inval)
	notifSvc := NewNotificationService(notifRepo)
	dispatcher := &SyncDispatcher{NotifSvc: notifSvc}

	feedSvc := NewNewsFeedService(feedRepo, tweetRepo, relations, objects, userSvc, profileSvc, FeedOptions{
		DefaultPageSize: 5,
		MaxPageSize:     8,
		FanoutRetries:   2,
		FanoutTimeout:   time.Second,
	})
	tweetSvc := NewTweetService(tweetRepo, objects, feedSvc)
	commentSvc := NewCommentService(commentRepo, tweetRepo, dispatcher)
	likeSvc := NewLikeService(likeRepo, tweetRepo, commentRepo, dispatcher)

	return &testEnv{
		db:          db,
		mr:          mr,
		objects:     objects,
		relations:   relations,
		users:       userSvc,
		profiles:    profileSvc,
		friendships: friendshipSvc,
		tweets:      tweetSvc,
		feed:        feedSvc,
		comments:    commentSvc,
		likes:       likeSvc,
		notifs:      notifSvc,
	}
}

// mkUser 直接落库，绕开注册路径的 bcrypt 开销
func (e *testEnv) mkUser(t *testing.T, id string) *model.User {
	t.Helper()
	u := &model.User{
		ID:       id,
		Username: id,
		Email:    id + "@example.com",
		Password: "hash",
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) mkFriendship(t *testing.T, from, to string) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.Friendship{
		ID:         uuid.NewString(),
		FromUserID: from,
		ToUserID:   to,
		CreatedAt:  time.Now(),
	}).Error)
}

func (e *testEnv) feedTweetIDs(t *testing.T, ownerID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, e.db.Model(&model.NewsFeed{}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Pluck("tweet_id", &ids).Error)
	return ids
}
