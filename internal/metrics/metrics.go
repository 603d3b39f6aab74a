package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_frames_total",
		Help: "Total number of frames built and drawn",
	})
	FramesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_frames_skipped_total",
		Help: "Total number of ticks that skipped rendering (hidden or no viewport)",
	})
	FrameBuildDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_frame_build_duration_ms",
		Help:    "Frame build (projection and culling) duration in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 33},
	})
	LandLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_land_loads_total",
		Help: "Total land dataset loads by result",
	}, []string{"result"})
	LandDots = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_land_dots",
		Help: "Number of land dots in the most recently loaded dataset",
	})
	LandFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_land_fetch_duration_ms",
		Help:    "Land GeoJSON fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	LandCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_land_cache_hits_total",
		Help: "Total land GeoJSON redis cache hits",
	})
	LandCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_land_cache_misses_total",
		Help: "Total land GeoJSON redis cache misses",
	})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_sessions_active",
		Help: "Number of open websocket globe sessions",
	})
	SessionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_session_events_total",
		Help: "Total input events received from sessions by type",
	}, []string{"type"})
	HTTPRendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_http_renders_total",
		Help: "Total one-shot frame renders served over HTTP by format",
	}, []string{"format"})
	FrameCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_frame_cache_hits_total",
		Help: "Total rendered image cache hits",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(
		FramesTotal,
		FramesSkippedTotal,
		FrameBuildDurationMs,
		LandLoadsTotal,
		LandDots,
		LandFetchDurationMs,
		LandCacheHitsTotal,
		LandCacheMissesTotal,
		SessionsActive,
		SessionEventsTotal,
		HTTPRendersTotal,
		FrameCacheHitsTotal,
		RateLimitedTotal,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
