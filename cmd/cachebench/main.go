package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/cacheperf"
	"github.com/d60-Lab/tweetline/internal/model"
)

type request struct {
	page int
	size int
}

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=postgres port=5434 sslmode=disable"
	}

	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{}))

	mustDo(db.Exec("DROP TABLE IF EXISTS newsfeeds CASCADE").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS tweets CASCADE").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS users CASCADE").Error)

	mustDo(db.AutoMigrate(&model.User{}, &model.Tweet{}, &model.NewsFeed{}))

	const (
		tweetCount = 20000 // shared tweet pool
		feedLen    = 10000 // feed rows per reader
		ttlMinutes = 10
		dbDelay    = 0 * time.Millisecond
	)

	fmt.Println("Setting up test data...")

	// 3 readers, overlapping timelines: the overlap is exactly what the
	// shared tweet-object cache should exploit and the naive page cache cannot
	reader1 := model.User{ID: "reader1", Username: "reader1", Email: "reader1@example.com", Password: "secret"}
	reader2 := model.User{ID: "reader2", Username: "reader2", Email: "reader2@example.com", Password: "secret"}
	reader3 := model.User{ID: "reader3", Username: "reader3", Email: "reader3@example.com", Password: "secret"}
	author := model.User{ID: "author1", Username: "author1", Email: "author1@example.com", Password: "secret"}
	mustDo(db.Create(&reader1).Error)
	mustDo(db.Create(&reader2).Error)
	mustDo(db.Create(&reader3).Error)
	mustDo(db.Create(&author).Error)

	base := time.Now()
	tweets := make([]model.Tweet, tweetCount)
	for i := 0; i < tweetCount; i++ {
		tweets[i] = model.Tweet{
			ID:        uuid.NewString(),
			UserID:    author.ID,
			Content:   fmt.Sprintf("tweet %d", i),
			CreatedAt: base.Add(-time.Duration(i) * time.Second),
		}
	}
	mustDo(db.CreateInBatches(&tweets, 1000).Error)

	// reader1: tweets 0-9999; reader2: 5000-14999; reader3: 7500-17499
	feed1 := make([]model.NewsFeed, feedLen)
	feed2 := make([]model.NewsFeed, feedLen)
	feed3 := make([]model.NewsFeed, feedLen)
	for i := 0; i < feedLen; i++ {
		feed1[i] = model.NewsFeed{ID: uuid.NewString(), OwnerID: reader1.ID, TweetID: tweets[i].ID, CreatedAt: tweets[i].CreatedAt}
		feed2[i] = model.NewsFeed{ID: uuid.NewString(), OwnerID: reader2.ID, TweetID: tweets[i+tweetCount/4].ID, CreatedAt: tweets[i+tweetCount/4].CreatedAt}
		feed3[i] = model.NewsFeed{ID: uuid.NewString(), OwnerID: reader3.ID, TweetID: tweets[(i+tweetCount*3/8)%tweetCount].ID, CreatedAt: tweets[(i+tweetCount*3/8)%tweetCount].CreatedAt}
	}
	mustDo(db.CreateInBatches(&feed1, 1000).Error)
	mustDo(db.CreateInBatches(&feed2, 1000).Error)
	mustDo(db.CreateInBatches(&feed3, 1000).Error)
	fmt.Println("Test data ready: 3 readers with overlapping timelines")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	svc := cacheperf.NewTimelineService(db, client, ttlMinutes*time.Minute, dbDelay)

	reqs1 := makeRequests(3000)
	reqs2 := makeRequests(3000)
	reqs3 := makeRequests(3000)

	allReqs := make([]struct {
		ownerID string
		req     request
	}, 0, 9000)
	for _, r := range reqs1 {
		allReqs = append(allReqs, struct {
			ownerID string
			req     request
		}{reader1.ID, r})
	}
	for _, r := range reqs2 {
		allReqs = append(allReqs, struct {
			ownerID string
			req     request
		}{reader2.ID, r})
	}
	for _, r := range reqs3 {
		allReqs = append(allReqs, struct {
			ownerID string
			req     request
		}{reader3.ID, r})
	}

	noCache := runScenario(ctx, svc, allReqs, false, func(ctx context.Context, ownerID string, r request) ([]cacheperf.TweetSnapshot, error) {
		return svc.FetchTimelineNoCache(ctx, ownerID, r.page, r.size)
	}, client)

	naive := runScenario(ctx, svc, allReqs, true, func(ctx context.Context, ownerID string, r request) ([]cacheperf.TweetSnapshot, error) {
		return svc.FetchTimelineNaiveCache(ctx, ownerID, r.page, r.size)
	}, client)

	optimized := runScenario(ctx, svc, allReqs, true, func(ctx context.Context, ownerID string, r request) ([]cacheperf.TweetSnapshot, error) {
		return svc.FetchTimelineOptimized(ctx, ownerID, r.page, r.size)
	}, client)

	fmt.Println("\nTimeline read latency (9k req across 3 readers, 20k tweets, PostgreSQL + Redis)")
	for _, row := range []struct {
		name string
		res  scenarioResult
	}{
		{"No cache", noCache},
		{"Naive page cache", naive},
		{"Optimized cache", optimized},
	} {
		fmt.Printf("%-18s avg=%v p95=%v p99=%v db_page=%d db_feed_scan=%d db_tweet_bulk=%d cache_keys=%d mem=%s\n",
			row.name, avg(row.res.durations), pct(row.res.durations, 0.95), pct(row.res.durations, 0.99),
			row.res.counters.PageQueries, row.res.counters.FeedScans, row.res.counters.TweetBulkLoads,
			row.res.cacheKeys, formatBytes(row.res.memoryBytes),
		)
	}
}

type scenarioResult struct {
	durations   []time.Duration
	counters    cacheperf.TimelineDBCounters
	cacheKeys   int
	memoryBytes int64
}

func runScenario(ctx context.Context, svc *cacheperf.TimelineService, reqs []struct {
	ownerID string
	req     request
}, warm bool, call func(context.Context, string, request) ([]cacheperf.TweetSnapshot, error), client *redis.Client) scenarioResult {
	client.FlushAll(ctx)
	svc.ResetCounters()

	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			if _, err := call(ctx, r.ownerID, r.req); err != nil {
				panic(err)
			}
		}
		fmt.Println(" done")
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		if _, err := call(ctx, r.ownerID, r.req); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "*").Result()

	info, err := client.Info(ctx, "memory").Result()
	var memBytes int64
	if err == nil {
		memBytes = parseRedisMemory(info)
	}

	return scenarioResult{
		durations:   out,
		counters:    svc.Counters(),
		cacheKeys:   len(keys),
		memoryBytes: memBytes,
	}
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	lines := []rune(info)
	var result int64

	for i := 0; i < len(lines); {
		if i+12 < len(lines) && string(lines[i:i+12]) == "used_memory:" {
			i += 12
			var num int64
			for i < len(lines) && lines[i] >= '0' && lines[i] <= '9' {
				num = num*10 + int64(lines[i]-'0')
				i++
			}
			result = num
			break
		}
		i++
	}
	return result
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func makeRequests(n int) []request {
	sizes := []int{20, 40, 60}
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		size := sizes[rnd.Intn(len(sizes))]
		page := 1
		if rnd.Float64() > 0.72 {
			// simulate deep pagination or different views
			page = 2 + rnd.Intn(120)
		}
		out[i] = request{page: page, size: size}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
