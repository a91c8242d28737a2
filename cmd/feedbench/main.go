package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/tweetline/config"
	"github.com/d60-Lab/tweetline/internal/cache"
	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/pagination"
	"github.com/d60-Lab/tweetline/internal/repository"
	"github.com/d60-Lab/tweetline/internal/service"
	"github.com/d60-Lab/tweetline/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
    if len(vs) == 0 { return 0 }
    xs := append([]time.Duration(nil), vs...)
    sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
    k := int(math.Ceil(p*float64(len(xs)))) - 1
    if k < 0 { k = 0 }
    if k >= len(xs) { k = len(xs)-1 }
    return xs[k]
}

func main() {
    ctx := context.Background()
    cfg := must(config.Load())
    db := must(database.InitDB(cfg))
    rdb := must(cache.NewRedisClient(ctx, cfg))
    defer rdb.Close()

    // params
    N := 20000              // followers of the author
    POSTS := 100            // tweets to publish
    RATE := 50              // publishes per second
    if s := os.Getenv("N"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { N = v } }
    if s := os.Getenv("POSTS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v } }
    if s := os.Getenv("RATE"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { RATE = v } }

    // clean tables for a reproducible run (ok for local bench)
    _ = db.Exec("TRUNCATE TABLE newsfeeds, tweets, friendships, profiles, users RESTART IDENTITY CASCADE").Error
    rdb.FlushAll(ctx)

    objects := cache.NewObjectCache(rdb, cfg.Cache.ObjectTTL, cfg.Cache.OpTimeout)
    relations := cache.NewRelationCache(db, rdb, cfg.Cache.RelationTTL, cfg.Cache.OpTimeout)
    inval := cache.NewInvalidator(objects, relations)

    userRepo := repository.NewUserRepository(db)
    profileRepo := repository.NewProfileRepository(db)
    tweetRepo := repository.NewTweetRepository(db)
    feedRepo := repository.NewSingleDBFeedRepository(db, cfg.Feed.FanoutBatch)

    userSvc := service.NewUserService(userRepo, objects, inval)
    profileSvc := service.NewProfileService(profileRepo, objects, inval)
    feedSvc := service.NewNewsFeedService(feedRepo, tweetRepo, relations, objects, userSvc, profileSvc, service.FeedOptions{
        DefaultPageSize: cfg.Feed.DefaultPageSize,
        MaxPageSize:     cfg.Feed.MaxPageSize,
        FanoutRetries:   cfg.Feed.FanoutRetries,
        FanoutTimeout:   cfg.Feed.FanoutTimeout,
    })
    tweetSvc := service.NewTweetService(tweetRepo, objects, feedSvc)

    // seed one author and N followers
    author := model.User{ID: "author0", Username: "author0", Email: "author0@example.com", Password: "p"}
    _ = db.Where("id = ?", author.ID).FirstOrCreate(&author).Error
    users := make([]model.User, N)
    edges := make([]model.Friendship, N)
    now := time.Now()
    for i := 0; i < N; i++ {
        id := uuid.New().String()
        users[i] = model.User{ID: id, Username: "u"+id[:8], Email: id[:8]+"@example.com", Password: "p"}
        edges[i] = model.Friendship{ID: uuid.New().String(), FromUserID: id, ToUserID: author.ID, CreatedAt: now}
    }
    _ = db.CreateInBatches(&users, 1000).Error
    _ = db.CreateInBatches(&edges, 1000).Error

    // publish POSTS tweets, fanout inline, paced by a limiter
    limiter := rate.NewLimiter(rate.Limit(RATE), 1)
    pubDurations := make([]time.Duration, 0, POSTS)
    for i := 0; i < POSTS; i++ {
        _ = limiter.Wait(ctx)
        st := time.Now()
        if _, err := tweetSvc.Create(ctx, author.ID, fmt.Sprintf("hello %d", i)); err != nil {
            panic(err)
        }
        pubDurations = append(pubDurations, time.Since(st))
    }

    var pubSum time.Duration
    for _, d := range pubDurations { pubSum += d }
    fmt.Printf("N=%d POSTS=%d RATE=%d\n", N, POSTS, RATE)
    fmt.Printf("Publish+fanout latency: avg=%v p95=%v p99=%v\n",
        pubSum/time.Duration(len(pubDurations)), pct(pubDurations, 0.95), pct(pubDurations, 0.99))

    // measure one follower's timeline read (cold then warm cache)
    reader := users[0].ID
    for _, label := range []string{"cold", "warm"} {
        st := time.Now()
        page, err := feedSvc.ListFeed(ctx, reader, pagination.Cursor{PageSize: cfg.Feed.MaxPageSize})
        if err != nil { panic(err) }
        fmt.Printf("Timeline read (%s, limit=%d): %v, rows=%d has_next=%v\n",
            label, cfg.Feed.MaxPageSize, time.Since(st), len(page.Items), page.HasNextPage)
    }
}
