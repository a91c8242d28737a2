package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tweetline/internal/model"
)

const (
	// FeedShardCount 分片数量 (4个数据库 x 4张表 = 16个分片)
	FeedShardCount = 4
	FeedTableCount = 4
)

// ShardedFeedRepository 分库分表信息流仓储实现。
// 按 owner_id 路由：同一用户的时间线永远落在同一张分表，
// 游标翻页不需要跨分片归并。
type ShardedFeedRepository struct {
	// shards[dbIndex][tableIndex] = *gorm.DB
	shards [][]*gorm.DB
	batch  int
}

// NewShardedFeedRepository 创建分库分表信息流仓储
func NewShardedFeedRepository(dbs []*gorm.DB, batch int) (*ShardedFeedRepository, error) {
	if len(dbs) != FeedShardCount {
		return nil, fmt.Errorf("expected %d databases, got %d", FeedShardCount, len(dbs))
	}
	if batch <= 0 {
		batch = 1000
	}

	shards := make([][]*gorm.DB, FeedShardCount)
	for i := 0; i < FeedShardCount; i++ {
		shards[i] = make([]*gorm.DB, FeedTableCount)
		for j := 0; j < FeedTableCount; j++ {
			shards[i][j] = dbs[i]
		}
	}
	return &ShardedFeedRepository{shards: shards, batch: batch}, nil
}

// RouteByOwnerID 根据 owner_id 路由到对应的分片
// 规则: 高位确定库，低位确定表
func RouteByOwnerID(ownerID string) (dbIndex, tableIndex int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ownerID))
	sum := h.Sum32()
	dbIndex = int((sum >> 8) % FeedShardCount)
	tableIndex = int(sum % FeedTableCount)
	return
}

// feedTableName 获取分表名称
func feedTableName(tableIndex int) string {
	return fmt.Sprintf("newsfeeds_%d", tableIndex)
}

// BulkCreate 扇出的行按 owner 分属不同分片，先按分片聚组再逐分片事务写入。
// 跨分片无法整体原子，靠 (owner_id, tweet_id) 唯一键保证重试幂等。
func (r *ShardedFeedRepository) BulkCreate(ctx context.Context, entries []model.NewsFeed) error {
	if len(entries) == 0 {
		return nil
	}

	type shardKey struct{ db, tbl int }
	groups := make(map[shardKey][]model.NewsFeed)
	for _, e := range entries {
		dbIdx, tblIdx := RouteByOwnerID(e.OwnerID)
		k := shardKey{dbIdx, tblIdx}
		groups[k] = append(groups[k], e)
	}

	for k, rows := range groups {
		rows := rows
		err := r.shards[k.db][k.tbl].WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Table(feedTableName(k.tbl)).
				Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(&rows, r.batch).Error
		})
		if err != nil {
			return fmt.Errorf("shard (%d,%d): %w", k.db, k.tbl, err)
		}
	}
	return nil
}

// ListByOwner 精确路由到单个分片
func (r *ShardedFeedRepository) ListByOwner(ctx context.Context, ownerID string, q FeedQuery) ([]*model.NewsFeed, error) {
	dbIdx, tblIdx := RouteByOwnerID(ownerID)
	var res []*model.NewsFeed
	db := r.shards[dbIdx][tblIdx].WithContext(ctx).Table(feedTableName(tblIdx))
	err := applyFeedQuery(db, ownerID, q).Find(&res).Error
	return res, err
}

// CountByOwner 精确路由到单个分片
func (r *ShardedFeedRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	dbIdx, tblIdx := RouteByOwnerID(ownerID)
	var cnt int64
	err := r.shards[dbIdx][tblIdx].WithContext(ctx).
		Table(feedTableName(tblIdx)).
		Where("owner_id = ?", ownerID).
		Count(&cnt).Error
	return cnt, err
}

// Close 关闭所有数据库连接
func (r *ShardedFeedRepository) Close() error {
	// 使用 map 去重，因为同一个数据库被引用了多次
	dbMap := make(map[*gorm.DB]bool)
	for i := 0; i < FeedShardCount; i++ {
		dbMap[r.shards[i][0]] = true
	}

	for db := range dbMap {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Close(); err != nil {
			return err
		}
	}
	return nil
}

// InitSchema 初始化所有分片的表结构。
// 索引名带表序号后缀，同库多张分表不冲突
func (r *ShardedFeedRepository) InitSchema() error {
	var wg sync.WaitGroup
	errCh := make(chan error, FeedShardCount)
	for dbIdx := 0; dbIdx < FeedShardCount; dbIdx++ {
		wg.Add(1)
		go func(di int) {
			defer wg.Done()
			db := r.shards[di][0]
			for tblIdx := 0; tblIdx < FeedTableCount; tblIdx++ {
				name := feedTableName(tblIdx)
				stmts := []string{
					fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
						id varchar(36) PRIMARY KEY,
						owner_id varchar(36) NOT NULL,
						tweet_id varchar(36) NOT NULL,
						created_at timestamp
					)`, name),
					fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS ux_feed_owner_tweet_%d ON %s (owner_id, tweet_id)", tblIdx, name),
					fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_feed_owner_created_%d ON %s (owner_id, created_at)", tblIdx, name),
				}
				for _, stmt := range stmts {
					if err := db.Exec(stmt).Error; err != nil {
						errCh <- fmt.Errorf("init table %s in db %d: %w", name, di, err)
						return
					}
				}
			}
		}(dbIdx)
	}
	wg.Wait()
	close(errCh)
	if len(errCh) > 0 {
		return <-errCh
	}
	return nil
}
