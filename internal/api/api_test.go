package api

import (
	"context"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"dotglobe/internal/config"
	"dotglobe/internal/geo"
	"dotglobe/internal/globe"
	"dotglobe/internal/land"
	"dotglobe/internal/middleware"
	"dotglobe/internal/render"
	"dotglobe/internal/view"
)

func newTestDeps(withLand bool) *Deps {
	sh := globe.NewShared(nil)
	if withLand {
		sq := geo.Ring{{Lon: -20, Lat: 0}, {Lon: 20, Lat: 0}, {Lon: 20, Lat: 50}, {Lon: -20, Lat: 50}}
		l := land.Build([]geo.Feature{{Name: "block", Polygons: []geo.Polygon{geo.NewPolygon(sq)}}}, 2)
		l.Source = "test"
		sh.SetLand(l)
	}
	return &Deps{Shared: sh}
}

func serve(t *testing.T, d *Deps, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	mux := BuildRoutes(d)
	t.Cleanup(d.Close)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	middleware.Wrap(mux, config.RateLimitConfig{}).ServeHTTP(rec, req)
	return rec
}

func TestFramePNG(t *testing.T) {
	rec := serve(t, newTestDeps(true), "/frame.png?w=100&h=60&dpr=2&bg=paper", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("content-type"); ct != "image/png" {
		t.Errorf("content-type = %q", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 120 {
		t.Errorf("size = %dx%d, want 200x120", b.Dx(), b.Dy())
	}
}

func TestFrameSVGAndJSON(t *testing.T) {
	rec := serve(t, newTestDeps(true), "/frame.svg?w=80&h=80", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("svg status=%d body=%.80q", rec.Code, rec.Body.String())
	}

	rec = serve(t, newTestDeps(true), "/frame.json?w=300&h=200&lng=0&lat=25&scale=9", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("json status = %d", rec.Code)
	}
	var f render.Frame
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.Width != 300 || f.View.Scale != 2.5 {
		t.Errorf("frame width=%v scale=%v", f.Width, f.View.Scale)
	}
	if len(f.Dots) == 0 {
		t.Error("expected land dots facing lng=0")
	}
}

func TestFrameRejectsBadParams(t *testing.T) {
	for _, q := range []string{"w=0", "h=5000", "dpr=9", "lng=east", "bg=nope",
		"lng=NaN", "lat=NaN", "scale=NaN", "w=NaN", "dpr=NaN", "lat=Inf", "pulse=-Inf"} {
		rec := serve(t, newTestDeps(false), "/frame.json?"+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestFramePNGRejectsNaNView(t *testing.T) {
	rec := serve(t, newTestDeps(true), "/frame.png?lat=NaN", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestParseFrameParamsKeepsViewFinite(t *testing.T) {
	p, err := parseFrameParams(url.Values{"lng": {"1e308"}, "scale": {"1e-300"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{p.View.Lng, p.View.Lat, p.View.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("view = %+v", p.View)
		}
	}
	if p.View.Scale != view.MinScale {
		t.Errorf("scale = %v, want %v", p.View.Scale, view.MinScale)
	}
}

func TestLandEndpoints(t *testing.T) {
	rec := serve(t, newTestDeps(false), "/land", nil)
	var lr landResult
	_ = json.NewDecoder(rec.Body).Decode(&lr)
	if lr.Loaded {
		t.Error("land reported loaded before SetLand")
	}
	rec = serve(t, newTestDeps(false), "/land/at?lon=0&lat=10", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("land/at without land = %d, want 503", rec.Code)
	}

	rec = serve(t, newTestDeps(true), "/land", nil)
	lr = landResult{}
	_ = json.NewDecoder(rec.Body).Decode(&lr)
	if !lr.Loaded || lr.Dots == 0 || lr.Source != "test" {
		t.Errorf("land = %+v", lr)
	}

	tests := []struct {
		q    string
		code int
		hit  bool
	}{
		{"lon=0&lat=10", http.StatusOK, true},
		{"lon=360&lat=10", http.StatusOK, true},
		{"lon=100&lat=10", http.StatusOK, false},
		{"lon=0&lat=95", http.StatusBadRequest, false},
		{"lon=0&lat=NaN", http.StatusBadRequest, false},
		{"lon=NaN&lat=10", http.StatusBadRequest, false},
		{"lon=Inf&lat=10", http.StatusBadRequest, false},
		{"lat=10", http.StatusBadRequest, false},
	}
	for _, tc := range tests {
		rec := serve(t, newTestDeps(true), "/land/at?"+tc.q, nil)
		if rec.Code != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.q, rec.Code, tc.code)
			continue
		}
		if tc.code != http.StatusOK {
			continue
		}
		var res landAtResult
		_ = json.NewDecoder(rec.Body).Decode(&res)
		if res.Land != tc.hit {
			t.Errorf("%s: land = %v, want %v", tc.q, res.Land, tc.hit)
		}
	}
}

func TestMarkersAndStats(t *testing.T) {
	rec := serve(t, newTestDeps(false), "/markers", nil)
	var ms []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&ms); err != nil || len(ms) == 0 {
		t.Fatalf("markers = %v, %v", ms, err)
	}
	rec = serve(t, newTestDeps(false), "/stats", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("stats without store = %d, want 503", rec.Code)
	}
}

func TestVisitorFallsBackToEdgeGeo(t *testing.T) {
	rec := serve(t, newTestDeps(false), "/visitor", nil)
	var v visitorResult
	_ = json.NewDecoder(rec.Body).Decode(&v)
	if v.Located {
		t.Errorf("visitor located without any source: %+v", v)
	}

	rec = serve(t, newTestDeps(false), "/visitor", map[string]string{
		"X-Forwarded-For":    "203.0.113.7, 10.0.0.1",
		"X-EO-Geo-Latitude":  "-33.92",
		"X-EO-Geo-Longitude": "18.42",
	})
	v = visitorResult{}
	_ = json.NewDecoder(rec.Body).Decode(&v)
	if !v.Located || v.Source != "edge" || v.IP != "203.0.113.7" {
		t.Fatalf("visitor = %+v", v)
	}
	if v.Home.Lng != 18.42 || v.Home.Lat != 25 {
		t.Errorf("home = %+v", v.Home)
	}
}

func TestGetVisitorIP(t *testing.T) {
	tests := []struct {
		name   string
		hdr    map[string]string
		remote string
		want   string
	}{
		{"xff", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"cf", map[string]string{"CF-Connecting-IP": "2.2.2.2"}, "9.9.9.9:1", "2.2.2.2"},
		{"forwarded", map[string]string{"Forwarded": `for="3.3.3.3";proto=https`}, "9.9.9.9:1", "3.3.3.3"},
		{"forwarded list", map[string]string{"Forwarded": `for=3.3.3.4, for=5.5.5.5`}, "9.9.9.9:1", "3.3.3.4"},
		{"forwarded v6", map[string]string{"Forwarded": `proto=https; For="[2001:db8::7]:4711"`}, "9.9.9.9:1", "2001:db8::7"},
		{"remote v4", nil, "4.4.4.4:5555", "4.4.4.4"},
		{"remote v6", nil, "[2001:db8::1]:443", "2001:db8::1"},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tc.remote
		for k, v := range tc.hdr {
			r.Header.Set(k, v)
		}
		if got := getVisitorIP(r); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
	r := httptest.NewRequest(http.MethodGet, "/?ip=8.8.8.8", nil)
	if got := getClientIP(r); got != "8.8.8.8" {
		t.Errorf("getClientIP with ?ip = %q", got)
	}
}

func TestBloomHelpers(t *testing.T) {
	a := bloomPositions([]byte("1.2.3.4"), visitorBloomBits, visitorBloomK)
	b := bloomPositions([]byte("1.2.3.4"), visitorBloomBits, visitorBloomK)
	if len(a) != visitorBloomK {
		t.Fatalf("positions = %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] || a[i] < 0 || a[i] >= visitorBloomBits {
			t.Errorf("position %d = %d / %d", i, a[i], b[i])
		}
	}
	if first, err := bloomCheckAndSet(context.Background(), nil, "k", a, time.Minute); !first || err != nil {
		t.Errorf("nil redis = %v, %v", first, err)
	}
	if got := visitorKey(time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)); got != "globe:visitors:20260304" {
		t.Errorf("visitorKey = %q", got)
	}
	d := newTestDeps(false)
	if d.countVisitor(context.Background(), "1.2.3.4") {
		t.Error("visitor counted without redis and store")
	}
}
