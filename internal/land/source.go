package land

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"dotglobe/internal/logger"
	"dotglobe/internal/metrics"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound 缓存未命中/文件不存在
	ErrNotFound = errors.New("land: not found")
	// ErrStatus 远端返回非 200
	ErrStatus = errors.New("land: unexpected status")
)

// MaxBody 单个数据集的最大字节数
const MaxBody = 64 << 20

// Source：原始 GeoJSON 字节来源
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// 文档注释：HTTP 数据源
// 约束：Client 为空时使用 15s 超时的默认客户端；非 200 返回包装 ErrStatus 的错误。
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/geo+json, application/json")
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	t0 := time.Now()
	logger.L().Debug("land_fetch_req", "url", s.URL)
	resp, err := client.Do(req)
	if err != nil {
		logger.L().Warn("land_http_error", "url", s.URL, "err", err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, s.URL)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBody))
	if err != nil {
		logger.L().Warn("land_read_error", "url", s.URL, "err", err)
		return nil, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.LandFetchDurationMs.Observe(float64(dur))
	logger.L().Debug("land_fetch_resp", "url", s.URL, "bytes", len(b), "duration_ms", dur)
	return b, nil
}

// FileSource 本地 GeoJSON 文件
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
	}
	return b, err
}

// 文档注释：Redis 缓存数据源
// 背景：多个服务实例/重启共享一次下载；键为 globe:land:<sha1(name)>。
// 约束：RC 为 nil 时直通内部源；Redis 读写错误只记录日志，不影响主流程。
type CachedSource struct {
	Inner Source
	RC    *redis.Client
	TTL   time.Duration
}

func (s *CachedSource) Name() string { return s.Inner.Name() }

// CacheKey 数据源对应的 Redis 键
func CacheKey(name string) string {
	h := sha1.Sum([]byte(name))
	return "globe:land:" + hex.EncodeToString(h[:])
}

func (s *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.RC == nil {
		return s.Inner.Fetch(ctx)
	}
	key := CacheKey(s.Inner.Name())
	b, err := s.RC.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.LandCacheHitsTotal.Inc()
		logger.L().Debug("land_cache_hit", "key", key, "bytes", len(b))
		return b, nil
	case errors.Is(err, redis.Nil):
		metrics.LandCacheMissesTotal.Inc()
	default:
		metrics.LandCacheMissesTotal.Inc()
		logger.L().Warn("land_cache_get_error", "key", key, "err", err)
	}
	b, err = s.Inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.RC.Set(ctx, key, b, ttl).Err(); err != nil {
		logger.L().Warn("land_cache_set_error", "key", key, "err", err)
	}
	return b, nil
}
