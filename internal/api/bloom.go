package api

import (
	"context"
	"hash/fnv"
	"time"

	"dotglobe/internal/logger"
	"dotglobe/internal/store"

	"github.com/redis/go-redis/v9"
)

// 访客去重位图参数
const (
	visitorBloomBits = 1 << 20
	visitorBloomK    = 4
	visitorBloomTTL  = 48 * time.Hour
)

// 文档注释：计算布隆过滤器位置
// 参数：data 为参与哈希的字节序列，m 为位图大小，k 为哈希次数。
// 背景：使用 FNV64a 结合索引扰动生成 k 个位置，用于 GetBit/SetBit。
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		pos[i] = int64(uint32(h.Sum64() % uint64(m)))
	}
	return pos
}

// 文档注释：检查并写入布隆过滤器位图
// 返回：true 表示首次见到（已写入位图）；false 表示已存在。
// 异常：Redis 交互错误时返回 error；rc 为 nil 时视为首次见到。
func bloomCheckAndSet(ctx context.Context, rc *redis.Client, key string, positions []int64, ttl time.Duration) (bool, error) {
	if rc == nil {
		return true, nil
	}
	seen := true
	for _, p := range positions {
		b, err := rc.GetBit(ctx, key, p).Result()
		if err != nil {
			return true, err
		}
		if b == 0 {
			seen = false
		}
	}
	if seen {
		return false, nil
	}
	for _, p := range positions {
		_, _ = rc.SetBit(ctx, key, p, 1).Result()
	}
	_ = rc.Expire(ctx, key, ttl).Err()
	return true, nil
}

// visitorKey 按 UTC 日期分桶
func visitorKey(now time.Time) string {
	return "globe:visitors:" + now.UTC().Format("20060102")
}

// 文档注释：按天去重的独立访客计数
// 背景：同一 IP 当天多次打开会话只计一次；依赖 redis 位图，未启用 redis 或 postgres 时不计数。
// 约束：布隆过滤器有误判，少量新访客会被当作已见过，统计值略偏低。
func (d *Deps) countVisitor(ctx context.Context, ip string) bool {
	if d.Redis == nil || d.Store == nil || ip == "" {
		return false
	}
	first, err := bloomCheckAndSet(ctx, d.Redis, visitorKey(time.Now()), bloomPositions([]byte(ip), visitorBloomBits, visitorBloomK), visitorBloomTTL)
	if err != nil {
		logger.L().Warn("visitor_bloom_error", "err", err)
		return false
	}
	if first {
		d.Store.IncrStats(ctx, store.StatVisitor)
	}
	return first
}
