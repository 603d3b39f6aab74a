package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "API_BASE", "DOT_SPACING", "FRAME_FPS", "LAND_CACHE_TTL_S", "RATE_LIMIT_ENABLED", "TLS_ENABLE"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":8080" || c.Server.APIBase != "/api" {
		t.Errorf("server = %+v", c.Server)
	}
	if c.Land.Spacing != 1.4 || c.Land.CacheTTL != 24*time.Hour {
		t.Errorf("land = %+v", c.Land)
	}
	if c.Frame.FPS != 30 || c.RateLimit.Enabled || c.TLS.Enabled {
		t.Errorf("frame=%+v rate=%+v tls=%+v", c.Frame, c.RateLimit, c.TLS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE", "/globe/")
	t.Setenv("DOT_SPACING", "2.5")
	t.Setenv("FRAME_FPS", "not-a-number")
	t.Setenv("MARKERS_FROM_DB", "true")
	t.Setenv("RATE_LIMIT_QPS", "-3")
	c, _ := Load()
	if c.Server.APIBase != "/globe" {
		t.Errorf("api base = %q", c.Server.APIBase)
	}
	if c.Land.Spacing != 2.5 {
		t.Errorf("spacing = %v", c.Land.Spacing)
	}
	if c.Frame.FPS != 30 {
		t.Errorf("bad FRAME_FPS should fall back, got %d", c.Frame.FPS)
	}
	if !c.Markers.FromDB || c.RateLimit.QPS != 200 {
		t.Errorf("markers=%+v rate=%+v", c.Markers, c.RateLimit)
	}
}

func TestAPIBaseNeverCollidesWithRoot(t *testing.T) {
	cases := map[string]string{
		"/":        "/api",
		"//":       "/api",
		" ":        "/api",
		"globe":    "/globe",
		"/v1/api/": "/v1/api",
	}
	for in, want := range cases {
		t.Setenv("API_BASE", in)
		c, _ := Load()
		if c.Server.APIBase != want {
			t.Errorf("API_BASE=%q -> %q, want %q", in, c.Server.APIBase, want)
		}
	}
}

func TestLoadMetricsAndRefresh(t *testing.T) {
	t.Setenv("METRICS_ALLOW_CIDRS", " 10.0.0.0/8, ,192.168.1.0/24")
	t.Setenv("METRICS_ALLOW_LOCAL", "yes")
	t.Setenv("MARKERS_REFRESH_S", "120")
	t.Setenv("LAND_REFRESH_HOUR", "25")
	c, _ := Load()
	if len(c.Metrics.AllowCIDRs) != 2 || c.Metrics.AllowCIDRs[1] != "192.168.1.0/24" || !c.Metrics.AllowLocal {
		t.Errorf("metrics = %+v", c.Metrics)
	}
	if c.Refresh.MarkersEvery != 2*time.Minute || c.Refresh.LandHour != -1 {
		t.Errorf("refresh = %+v", c.Refresh)
	}
	t.Setenv("LAND_REFRESH_HOUR", "0")
	if c, _ := Load(); c.Refresh.LandHour != 0 {
		t.Errorf("land hour = %d", c.Refresh.LandHour)
	}
}
