// 包 config：部署配置（环境变量）；地球本身的交互参数是编译期常量，不在此处
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dotglobe/internal/geo"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig
	Land      LandConfig
	Frame     FrameConfig
	Markers   MarkerConfig
	GeoIP     GeoIPConfig
	RateLimit RateLimitConfig
	TLS       TLSConfig
	Metrics   MetricsConfig
	Refresh   RefreshConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Addr    string
	APIBase string
	UIDir   string
}

// LandConfig 陆地数据源
type LandConfig struct {
	URL      string
	File     string
	Spacing  float64
	CacheTTL time.Duration
}

// FrameConfig 会话推帧
type FrameConfig struct {
	FPS int
}

// MarkerConfig 标注来源
type MarkerConfig struct {
	FromDB bool
}

// GeoIPConfig 访客定位
type GeoIPConfig struct {
	Path string
}

// RateLimitConfig 令牌桶限流
type RateLimitConfig struct {
	Enabled bool
	QPS     int
}

// TLSConfig HTTPS
type TLSConfig struct {
	Enabled  bool
	CertPath string
	KeyPath  string
}

// MetricsConfig /metrics 访问白名单；两项都为空时不限制
type MetricsConfig struct {
	AllowCIDRs   []string
	AllowLocal   bool
	RealIPHeader string
}

// RefreshConfig 后台刷新：标注按间隔从数据库重读，陆地每日定时重新加载；0 表示关闭
type RefreshConfig struct {
	MarkersEvery time.Duration
	LandHour     int
}

// Load 加载配置（从环境变量）；数值解析失败时回退默认值
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Addr:    getEnv("ADDR", ":8080"),
			APIBase: apiBase(getEnv("API_BASE", "/api")),
			UIDir:   getEnv("UI_DIST", filepath.Join("ui", "dist")),
		},
		Land: LandConfig{
			URL:      getEnv("LAND_URL", ""),
			File:     getEnv("LAND_FILE", ""),
			Spacing:  getFloat("DOT_SPACING", geo.DefaultSpacing),
			CacheTTL: time.Duration(getInt("LAND_CACHE_TTL_S", 86400)) * time.Second,
		},
		Frame: FrameConfig{
			FPS: getInt("FRAME_FPS", 30),
		},
		Markers: MarkerConfig{
			FromDB: getBool("MARKERS_FROM_DB", false),
		},
		GeoIP: GeoIPConfig{
			Path: getEnv("GEOIP_PATH", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBool("RATE_LIMIT_ENABLED", false),
			QPS:     getInt("RATE_LIMIT_QPS", 200),
		},
		TLS: TLSConfig{
			Enabled:  getBool("TLS_ENABLE", false),
			CertPath: getEnv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
			KeyPath:  getEnv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		},
		Metrics: MetricsConfig{
			AllowCIDRs:   getList("METRICS_ALLOW_CIDRS"),
			AllowLocal:   getBool("METRICS_ALLOW_LOCAL", false),
			RealIPHeader: getEnv("METRICS_REAL_IP_HEADER", ""),
		},
		Refresh: RefreshConfig{
			MarkersEvery: time.Duration(getInt("MARKERS_REFRESH_S", 0)) * time.Second,
			LandHour:     getHour("LAND_REFRESH_HOUR", -1),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return def
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return def
}

func getList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getHour 0..23；未设置或越界时返回 def
func getHour(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 && n < 24 {
		return n
	}
	return def
}

// apiBase 规范为 "/xxx" 形式且不以 / 结尾；"/" 或空值会与静态文件根路由冲突，回退到 /api
func apiBase(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return "/api"
	}
	return "/" + s
}
