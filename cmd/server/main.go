package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/tweetline/config"
	"github.com/d60-Lab/tweetline/internal/api"
	"github.com/d60-Lab/tweetline/internal/api/handler"
	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/repository"
	"github.com/d60-Lab/tweetline/internal/service"
	"github.com/d60-Lab/tweetline/pkg/database"
	"github.com/d60-Lab/tweetline/pkg/logger"
	"github.com/d60-Lab/tweetline/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "tweetline", cfg.Trace.Endpoint)
	if err != nil {
		logger.Warn("tracing init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("init database", zap.Error(err))
		return
	}

	rdb, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Error("init redis", zap.Error(err))
		return
	}
	defer rdb.Close()

	// caches
	objects := cache.NewObjectCache(rdb, cfg.Cache.ObjectTTL, cfg.Cache.OpTimeout)
	relations := cache.NewRelationCache(db, rdb, cfg.Cache.RelationTTL, cfg.Cache.OpTimeout)
	inval := cache.NewInvalidator(objects, relations)

	// repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	feedRepo := repository.NewSingleDBFeedRepository(db, cfg.Feed.FanoutBatch)

	// services
	userSvc := service.NewUserService(userRepo, objects, inval)
	profileSvc := service.NewProfileService(profileRepo, objects, inval)
	friendSvc := service.NewFriendshipService(friendshipRepo, userRepo, relations, inval)
	feedSvc := service.NewNewsFeedService(feedRepo, tweetRepo, relations, objects, userSvc, profileSvc, service.FeedOptions{
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
		FanoutRetries:   cfg.Feed.FanoutRetries,
		FanoutTimeout:   cfg.Feed.FanoutTimeout,
	})
	tweetSvc := service.NewTweetService(tweetRepo, objects, feedSvc)
	notifSvc := service.NewNotificationService(notifRepo)

	notifier := service.NewNotifier(notifSvc, 10000)
	stopNotifier := notifier.Start(4)
	defer func() { _ = stopNotifier(context.Background()) }()

	commentSvc := service.NewCommentService(commentRepo, tweetRepo, notifier)
	likeSvc := service.NewLikeService(likeRepo, tweetRepo, commentRepo, notifier)

	h := handler.New(cfg, userSvc, profileSvc, friendSvc, tweetSvc, feedSvc, commentSvc, likeSvc, notifSvc)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
