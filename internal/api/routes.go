// 包 api：集中注册 HTTP API 路由以解耦主入口（渲染、陆地查询、标注、统计、会话）
package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"dotglobe/internal/geo"
	"dotglobe/internal/geoloc"
	"dotglobe/internal/globe"
	"dotglobe/internal/logger"
	"dotglobe/internal/middleware"
	"dotglobe/internal/projection"
	"dotglobe/internal/render"
	"dotglobe/internal/session"
	"dotglobe/internal/store"
	"dotglobe/internal/view"

	"github.com/redis/go-redis/v9"
)

// 文档注释：路由依赖
// 背景：可选子系统（Store/Redis/GeoIP）为 nil 时对应功能自动关闭：统计接口返回 503，渲染不缓存，会话使用默认朝向。
// 约束：Shared 必填；BuildRoutes 之后不可再修改字段。
type Deps struct {
	Shared *globe.Shared
	Store  *store.Store
	Redis  *redis.Client
	GeoIP  *geoloc.Locator
	Style  render.Style
	FPS    int

	graticule []geo.Ring
	sessions  *session.Handler
}

// BuildRoutes 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(d *Deps) *http.ServeMux {
	if d.Shared == nil {
		d.Shared = globe.NewShared(nil)
	}
	if d.Style == (render.Style{}) {
		d.Style = render.DefaultStyle()
	}
	d.graticule = projection.Graticule(projection.GraticuleStep, projection.GraticuleSample)
	d.sessions = session.NewHandler(session.Config{
		Shared: d.Shared,
		FPS:    d.FPS,
		Locate: d.locateHome,
		OnConnect: func(r *http.Request, id string) {
			if d.Store != nil {
				d.Store.IncrStats(r.Context(), store.StatSession)
			}
			d.countVisitor(r.Context(), getVisitorIP(r))
		},
	})

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/frame.png", d.handleFrame(formatPNG))
	apiMux.HandleFunc("/frame.svg", d.handleFrame(formatSVG))
	apiMux.HandleFunc("/frame.json", d.handleFrame(formatJSON))
	apiMux.Handle("/ws", d.sessions)

	apiMux.HandleFunc("/land", func(w http.ResponseWriter, r *http.Request) {
		l := d.Shared.Land()
		writeJSON(w, http.StatusOK, landResult{Loaded: l != nil, Stats: l.Stats()})
	})

	// 文档注释：陆地命中查询
	// 背景：按经纬度判断是否落在陆地上并返回所在要素；结果由 Locator 按 geohash 缓存。
	apiMux.HandleFunc("/land/at", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lon, err1 := strconv.ParseFloat(q.Get("lon"), 64)
		lat, err2 := strconv.ParseFloat(q.Get("lat"), 64)
		if err1 != nil || err2 != nil || !finite(lon) || !finite(lat) || lat < -90 || lat > 90 {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "lon and lat are required, lat in [-90,90]"})
			return
		}
		if d.Shared.Land() == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResult{Error: "land not loaded"})
			return
		}
		hit := d.Shared.Locator().At(lon, lat)
		logger.L().Debug("land_at", "lon", lon, "lat", lat, "land", hit.Land, "feature", hit.Feature)
		writeJSON(w, http.StatusOK, landAtResult{Lon: lon, Lat: lat, Hit: hit})
	})

	apiMux.HandleFunc("/markers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Shared.Markers())
	})

	apiMux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResult{Error: "stats disabled"})
			return
		}
		t, err := d.Store.GetTotals(r.Context())
		if err != nil {
			logger.L().Error("stats_error", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResult{Error: "stats unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	apiMux.HandleFunc("/visitor", func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r)
		res := visitorResult{IP: ip, Home: view.Home()}
		if loc, src, ok := d.locate(r, ip); ok {
			res.Located, res.Source, res.Location = true, src, &loc
			res.Home = loc.Home()
		}
		writeJSON(w, http.StatusOK, res)
	})

	return apiMux
}

// Close 断开所有会话
func (d *Deps) Close() {
	if d.sessions != nil {
		d.sessions.Close()
	}
}

// Sessions 当前会话数
func (d *Deps) Sessions() int {
	if d.sessions == nil {
		return 0
	}
	return d.sessions.Active()
}

// 文档注释：访客定位
// 背景：优先本地 mmdb，其次 CDN 边缘节点注入的坐标。
// 返回：定位结果、来源（geoip|edge）与是否成功。
func (d *Deps) locate(r *http.Request, ip string) (geoloc.Location, string, bool) {
	if loc, err := d.GeoIP.Lookup(ip); err == nil {
		return loc, "geoip", true
	}
	if g := middleware.EdgeGeoFrom(r.Context()); g.OK {
		return geoloc.Location{Lon: g.Lon, Lat: g.Lat, City: g.City, Country: g.Country}, "edge", true
	}
	return geoloc.Location{}, "", false
}

func (d *Deps) locateHome(r *http.Request) (session.Home, bool) {
	loc, src, ok := d.locate(r, getVisitorIP(r))
	if !ok {
		return session.Home{}, false
	}
	m := loc.Marker()
	logger.L().Debug("session_home", "source", src, "lon", loc.Lon, "lat", loc.Lat)
	return session.Home{View: loc.Home(), Marker: &m}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
