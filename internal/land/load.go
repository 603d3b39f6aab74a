package land

import (
	"context"
	"time"

	"dotglobe/internal/logger"
	"dotglobe/internal/metrics"
)

// Load 获取、解析并预处理一个数据集
func Load(ctx context.Context, src Source, spacing float64) (*Land, error) {
	t0 := time.Now()
	b, err := src.Fetch(ctx)
	if err != nil {
		metrics.LandLoadsTotal.WithLabelValues("fetch_error").Inc()
		return nil, err
	}
	features, err := Parse(b)
	if err != nil {
		metrics.LandLoadsTotal.WithLabelValues("parse_error").Inc()
		return nil, err
	}
	l := Build(features, spacing)
	l.Source = src.Name()
	metrics.LandLoadsTotal.WithLabelValues("ok").Inc()
	metrics.LandDots.Set(float64(len(l.Dots)))
	logger.L().Info("land_load_ok",
		"source", l.Source,
		"features", len(l.Features),
		"rings", len(l.Rings),
		"dots", len(l.Dots),
		"spacing", l.Spacing,
		"duration_ms", time.Since(t0).Milliseconds(),
	)
	return l, nil
}

// SourceFor 由配置选择数据源：文件优先，其次 URL；rc 非空时包一层 Redis 缓存（仅 URL）
func SourceFor(file, url string, cache *CachedSource) Source {
	if file != "" {
		return &FileSource{Path: file}
	}
	if url == "" {
		url = DefaultURL
	}
	var src Source = &HTTPSource{URL: url}
	if cache != nil && cache.RC != nil {
		cache.Inner = src
		return cache
	}
	return src
}
