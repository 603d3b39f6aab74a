package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dotglobe/internal/config"
	"dotglobe/internal/logger"
	"dotglobe/internal/metrics"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：渲染接口是 CPU 密集型，在流量峰值时对入口限速，避免栅格化把进程拖垮；按配置开关与速率。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429；websocket 升级请求同样计入。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() time.Time
}

// NewTokenBucket qps<=0 时按 1 处理
func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = 1
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// EdgeGeo CDN 边缘节点注入的访客坐标（EdgeOne / Cloudflare 等）
type EdgeGeo struct {
	Lat, Lon float64
	Country  string
	City     string
	OK       bool
}

type edgeGeoKey struct{}

// EdgeGeoFrom 读取 Wrap 注入的边缘地理信息；未注入时 OK=false
func EdgeGeoFrom(ctx context.Context) EdgeGeo {
	g, _ := ctx.Value(edgeGeoKey{}).(EdgeGeo)
	return g
}

// Wrap 注入边缘地理信息，并按配置启用限流
func Wrap(next http.Handler, rl config.RateLimitConfig) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 文档注释：边缘地理上下文注入
		// 背景：部署在 CDN 之后时，边缘节点会以请求头携带访客坐标；本地没有 mmdb 时会话用它来朝向访客。
		// 约束：经纬度任一缺失或解析失败即视为未提供，不阻断主流程。
		if g := parseEdgeGeo(r); g.OK {
			r = r.WithContext(context.WithValue(r.Context(), edgeGeoKey{}, g))
		}
		next.ServeHTTP(w, r)
	})
	if !rl.Enabled {
		return h
	}
	tb := NewTokenBucket(rl.QPS)
	logger.L().Info("ratelimit_enabled", "qps", tb.capacity)
	return limit(tb, h)
}

func limit(tb *TokenBucket, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			metrics.RateLimitedTotal.Inc()
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// 文档注释：解析边缘节点地理请求头
// 背景：优先 EdgeOne 头（X-EO-Geo-*），其次 Cloudflare 的 cf-iplatitude/cf-iplongitude。
// 约束：仅做字符串读取与数值转换；坐标越界视为无效。
func parseEdgeGeo(r *http.Request) EdgeGeo {
	h := r.Header
	var g EdgeGeo
	latS, lonS := h.Get("X-EO-Geo-Latitude"), h.Get("X-EO-Geo-Longitude")
	if latS == "" || lonS == "" {
		latS, lonS = h.Get("cf-iplatitude"), h.Get("cf-iplongitude")
		g.Country = h.Get("cf-ipcountry")
		g.City = h.Get("cf-ipcity")
	} else {
		g.Country = h.Get("X-EO-Geo-CountryCodeAlpha2")
		g.City = h.Get("X-EO-Geo-City")
	}
	lat, err1 := strconv.ParseFloat(latS, 64)
	lon, err2 := strconv.ParseFloat(lonS, 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return EdgeGeo{}
	}
	g.Lat, g.Lon, g.OK = lat, lon, true
	logger.L().Debug("edge_geo_parse", "lat", g.Lat, "lon", g.Lon, "country", g.Country, "city", g.City)
	return g
}
