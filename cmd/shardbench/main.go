package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/tweetline/internal/model"
	"github.com/d60-Lab/tweetline/internal/repository"
)

const (
	// 测试参数
	OwnerCount      = 10000 // 1万个时间线 owner
	FanoutBatches   = 2000  // 扇出批次数（每批 = 一条推文落进若干粉丝时间线）
	FollowersPerHit = 50    // 每批命中的粉丝数
	BenchDuration   = 30    // 查询压测时长（秒）
	ConcurrentLevel = 100   // 并发数

	// 数据库连接参数
	SingleDBPort     = 5434
	ShardDBStartPort = 5440
)

type BenchResult struct {
	Name            string
	Duration        time.Duration
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	QPS             float64
	AvgLatency      time.Duration
	P95Latency      time.Duration
	P99Latency      time.Duration
}

func main() {
	ctx := context.Background()

	fmt.Println("===== 信息流存储分库分表压测 =====")
	fmt.Printf("时间线 owner 数: %d\n", OwnerCount)
	fmt.Printf("扇出批次数: %d (每批 %d 行)\n", FanoutBatches, FollowersPerHit)
	fmt.Printf("查询压测时长: 每场景 %d秒\n", BenchDuration)
	fmt.Printf("并发数: %d\n\n", ConcurrentLevel)

	// ========== 单库压测 ==========
	fmt.Println(">>> 准备单库环境...")
	singleRepo := prepareSingleDB()
	if singleRepo == nil {
		fmt.Println("单库初始化失败")
		return
	}
	defer singleRepo.Close()

	fmt.Println("===== 单库压测 - 扇出批量写入 =====")
	singleInsert := benchFanout(ctx, singleRepo, "单库")
	printBenchResult(singleInsert)

	time.Sleep(1 * time.Second)

	fmt.Println("\n===== 单库压测 - 时间线游标读取 =====")
	singleRead := benchTimelineRead(ctx, singleRepo, "单库")
	printBenchResult(singleRead)

	// ========== 分库分表压测 ==========
	fmt.Println("\n>>> 准备分库分表环境...")
	shardedRepo := prepareShardedDB()
	if shardedRepo == nil {
		fmt.Println("分库分表初始化失败")
		return
	}
	defer shardedRepo.Close()

	fmt.Println("===== 分库分表压测 - 扇出批量写入 =====")
	shardedInsert := benchFanout(ctx, shardedRepo, "分库分表")
	printBenchResult(shardedInsert)

	time.Sleep(1 * time.Second)

	fmt.Println("\n===== 分库分表压测 - 时间线游标读取 =====")
	shardedRead := benchTimelineRead(ctx, shardedRepo, "分库分表")
	printBenchResult(shardedRead)

	// ========== 打印对比总结 ==========
	fmt.Println("\n===== 性能对比总结 =====")
	printComparison("扇出批量写入", singleInsert, shardedInsert)
	printComparison("时间线游标读取", singleRead, shardedRead)

	fmt.Println("\n✅ 压测完成！")
}

// prepareSingleDB 准备单库环境
func prepareSingleDB() repository.FeedRepository {
	dsn := fmt.Sprintf("host=localhost user=postgres password=postgres dbname=tweetline port=%d sslmode=disable", SingleDBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("连接单库失败: %v\n", err)
		return nil
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetMaxIdleConns(50)

	db.Exec("DROP TABLE IF EXISTS newsfeeds")
	if err := db.AutoMigrate(&model.NewsFeed{}); err != nil {
		fmt.Printf("初始化单库表结构失败: %v\n", err)
		return nil
	}

	fmt.Println("单库环境准备完成")
	return repository.NewSingleDBFeedRepository(db, 1000)
}

// prepareShardedDB 准备分库分表环境
func prepareShardedDB() repository.FeedRepository {
	var dbs []*gorm.DB

	for i := 0; i < repository.FeedShardCount; i++ {
		port := ShardDBStartPort + i
		dbName := fmt.Sprintf("feed_shard_%d", i)
		dsn := fmt.Sprintf("host=localhost user=postgres password=postgres dbname=%s port=%d sslmode=disable", dbName, port)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			fmt.Printf("连接分片数据库 %d 失败: %v\n", i, err)
			return nil
		}

		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(150)
		sqlDB.SetMaxIdleConns(30)

		dbs = append(dbs, db)

		for j := 0; j < repository.FeedTableCount; j++ {
			db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS newsfeeds_%d", j))
		}
	}

	repo, err := repository.NewShardedFeedRepository(dbs, 1000)
	if err != nil {
		fmt.Printf("创建分库分表仓储失败: %v\n", err)
		return nil
	}

	if err := repo.InitSchema(); err != nil {
		fmt.Printf("初始化分库分表表结构失败: %v\n", err)
		return nil
	}

	fmt.Println("分库分表环境准备完成")
	return repo
}

// makeBatch 生成一批扇出行：一条推文落进随机一组 owner 的时间线
func makeBatch(base time.Time, seq int) []model.NewsFeed {
	tweetID := uuid.NewString()
	createdAt := base.Add(time.Duration(seq) * time.Millisecond)
	rows := make([]model.NewsFeed, FollowersPerHit)
	start := rand.Intn(OwnerCount)
	for i := 0; i < FollowersPerHit; i++ {
		rows[i] = model.NewsFeed{
			ID:        uuid.NewString(),
			OwnerID:   fmt.Sprintf("owner_%d", (start+i)%OwnerCount),
			TweetID:   tweetID,
			CreatedAt: createdAt,
		}
	}
	return rows
}

// benchFanout 压测扇出批量写入（写完所有批次，不限制时间）
func benchFanout(ctx context.Context, repo repository.FeedRepository, name string) *BenchResult {
	var (
		totalRequests   int64
		successRequests int64
		failedRequests  int64
		latencies       []time.Duration
		latencyMu       sync.Mutex
		wg              sync.WaitGroup
	)

	fmt.Printf("开始写入 %d 个扇出批次...\n", FanoutBatches)

	base := time.Now().Add(-24 * time.Hour)
	startTime := time.Now()

	// 进度显示
	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				current := atomic.LoadInt64(&totalRequests)
				if current == 0 {
					continue
				}
				elapsed := time.Since(startTime)
				progress := float64(current) / float64(FanoutBatches) * 100
				qps := float64(current) / elapsed.Seconds()
				fmt.Printf("  📊 进度: %d/%d (%.1f%%) | ⏱️  已用时: %v | 🚀 批次QPS: %.0f\n",
					current, FanoutBatches, progress, elapsed.Round(time.Second), qps)
			case <-progressDone:
				return
			}
		}
	}()

	for i := 0; i < ConcurrentLevel; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for seq := workerID; seq < FanoutBatches; seq += ConcurrentLevel {
				batch := makeBatch(base, seq)

				reqStart := time.Now()
				err := repo.BulkCreate(ctx, batch)
				latency := time.Since(reqStart)

				atomic.AddInt64(&totalRequests, 1)
				if err != nil {
					n := atomic.AddInt64(&failedRequests, 1)
					if n <= 10 {
						fmt.Printf("写入失败 [%d]: %v\n", n, err)
					}
				} else {
					atomic.AddInt64(&successRequests, 1)
				}

				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	close(progressDone)

	duration := time.Since(startTime)
	fmt.Printf("✅ 写入完成！耗时: %v\n", duration.Round(time.Second))

	return calculateResult(name, duration, totalRequests, successRequests, failedRequests, latencies)
}

// benchTimelineRead 压测时间线游标读取
func benchTimelineRead(ctx context.Context, repo repository.FeedRepository, name string) *BenchResult {
	var (
		totalRequests   int64
		successRequests int64
		failedRequests  int64
		latencies       []time.Duration
		latencyMu       sync.Mutex
		wg              sync.WaitGroup
	)

	fmt.Printf("开始时间线读取测试（将运行 %d 秒）...\n", BenchDuration)

	startTime := time.Now()
	stopTime := startTime.Add(BenchDuration * time.Second)

	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				current := atomic.LoadInt64(&totalRequests)
				if current == 0 {
					continue
				}
				success := atomic.LoadInt64(&successRequests)
				elapsed := time.Since(startTime)
				qps := float64(current) / elapsed.Seconds()
				successRate := float64(success) / float64(current) * 100
				fmt.Printf("  📊 查询中: %d 请求 | ✅ 成功率: %.1f%% | 🚀 QPS: %.0f\n",
					current, successRate, qps)
			case <-progressDone:
				return
			}
		}
	}()

	for i := 0; i < ConcurrentLevel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for time.Now().Before(stopTime) {
				ownerID := fmt.Sprintf("owner_%d", rand.Intn(OwnerCount))

				reqStart := time.Now()
				_, err := repo.ListByOwner(ctx, ownerID, repository.FeedQuery{Limit: 20})
				latency := time.Since(reqStart)

				atomic.AddInt64(&totalRequests, 1)
				if err != nil {
					atomic.AddInt64(&failedRequests, 1)
				} else {
					atomic.AddInt64(&successRequests, 1)
				}

				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}()
	}

	wg.Wait()
	close(progressDone)

	duration := time.Since(startTime)
	return calculateResult(name, duration, totalRequests, successRequests, failedRequests, latencies)
}

// calculateResult 计算压测结果
func calculateResult(name string, duration time.Duration, total, success, failed int64, latencies []time.Duration) *BenchResult {
	qps := float64(total) / duration.Seconds()

	var totalLatency time.Duration
	for _, l := range latencies {
		totalLatency += l
	}
	var avgLatency time.Duration
	if len(latencies) > 0 {
		avgLatency = totalLatency / time.Duration(len(latencies))
	}

	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return &BenchResult{
		Name:            name,
		Duration:        duration,
		TotalRequests:   total,
		SuccessRequests: success,
		FailedRequests:  failed,
		QPS:             qps,
		AvgLatency:      avgLatency,
		P95Latency:      percentile(sorted, 0.95),
		P99Latency:      percentile(sorted, 0.99),
	}
}

// percentile 计算百分位数
func percentile(sortedLatencies []time.Duration, p float64) time.Duration {
	if len(sortedLatencies) == 0 {
		return 0
	}
	index := int(math.Ceil(float64(len(sortedLatencies))*p)) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(sortedLatencies) {
		index = len(sortedLatencies) - 1
	}
	return sortedLatencies[index]
}

// printBenchResult 打印压测结果
func printBenchResult(result *BenchResult) {
	fmt.Printf("名称: %s\n", result.Name)
	fmt.Printf("耗时: %v\n", result.Duration)
	fmt.Printf("总请求数: %d\n", result.TotalRequests)
	fmt.Printf("成功请求: %d\n", result.SuccessRequests)
	fmt.Printf("失败请求: %d\n", result.FailedRequests)
	fmt.Printf("QPS: %.2f\n", result.QPS)
	fmt.Printf("平均延迟: %v\n", result.AvgLatency)
	fmt.Printf("P95 延迟: %v\n", result.P95Latency)
	fmt.Printf("P99 延迟: %v\n", result.P99Latency)
}

// printComparison 打印对比结果
func printComparison(operation string, single, sharded *BenchResult) {
	fmt.Printf("\n--- %s ---\n", operation)
	fmt.Printf("单库 QPS: %.2f\n", single.QPS)
	fmt.Printf("分库 QPS: %.2f\n", sharded.QPS)
	improvement := (sharded.QPS - single.QPS) / single.QPS * 100
	fmt.Printf("性能提升: %.2f%%\n", improvement)
	fmt.Printf("单库 P95: %v\n", single.P95Latency)
	fmt.Printf("分库 P95: %v\n", sharded.P95Latency)

	if sharded.QPS > single.QPS {
		fmt.Printf("✅ 分库分表方案更优\n")
	} else {
		fmt.Printf("⚠️  单库方案更优\n")
	}
}
