package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/tweetline/internal/model"
)

func setupFeedBenchDB(b *testing.B) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.NewsFeed{}); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

func BenchmarkFeedBulkCreate(b *testing.B) {
	db := setupFeedBenchDB(b)
	repo := NewSingleDBFeedRepository(db, 500)
	ctx := context.Background()

	// 每次迭代模拟一条推文向 100 个粉丝扇出
	const followers = 100
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tweetID := uuid.NewString()
		at := time.Now()
		entries := make([]model.NewsFeed, followers)
		for j := 0; j < followers; j++ {
			entries[j] = model.NewsFeed{
				ID:        uuid.NewString(),
				OwnerID:   fmt.Sprintf("owner_%04d", j),
				TweetID:   tweetID,
				CreatedAt: at,
			}
		}
		if err := repo.BulkCreate(ctx, entries); err != nil {
			b.Fatalf("bulk create: %v", err)
		}
	}
}

func BenchmarkFeedCursorRead(b *testing.B) {
	db := setupFeedBenchDB(b)
	repo := NewSingleDBFeedRepository(db, 500)
	ctx := context.Background()

	// 构造：一个 owner 有 5000 条物化行
	const rows = 5000
	base := time.Now().Add(-time.Duration(rows) * time.Second)
	entries := make([]model.NewsFeed, rows)
	for i := 0; i < rows; i++ {
		entries[i] = model.NewsFeed{
			ID:        uuid.NewString(),
			OwnerID:   "o1",
			TweetID:   uuid.NewString(),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	if err := repo.BulkCreate(ctx, entries); err != nil {
		b.Fatalf("seed: %v", err)
	}

	b.ResetTimer()
	b.Run("FirstPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.ListByOwner(ctx, "o1", FeedQuery{Limit: 50})
		}
	})

	b.Run("DeepPage", func(b *testing.B) {
		at := base.Add(time.Duration(rand.Intn(rows)) * time.Second)
		for i := 0; i < b.N; i++ {
			_, _ = repo.ListByOwner(ctx, "o1", FeedQuery{Before: &at, Limit: 50})
		}
	})
}
