package api

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dotglobe/internal/logger"
	"dotglobe/internal/marker"
	"dotglobe/internal/metrics"
	"dotglobe/internal/render"
	"dotglobe/internal/render/ggsurface"
	"dotglobe/internal/render/svgsurface"
	"dotglobe/internal/store"
	"dotglobe/internal/view"
)

const (
	formatPNG  = "png"
	formatSVG  = "svg"
	formatJSON = "json"
)

// 渲染接口参数范围
const (
	DefaultFrameSize = 512
	MaxFrameSize     = 4096
	MaxDPR           = 4
	FrameCacheTTL    = 10 * time.Minute
)

var contentTypes = map[string]string{
	formatPNG:  "image/png",
	formatSVG:  "image/svg+xml",
	formatJSON: "application/json; charset=utf-8",
}

// frameParams 单帧渲染参数（查询串 w,h,dpr,lng,lat,scale,pulse,bg）
type frameParams struct {
	W, H, DPR  float64
	View       view.State
	Pulse      float64
	Background string
}

// 文档注释：解析渲染参数
// 背景：缺省为 512×512、dpr=1、默认朝向；视图参数经 Normalize 折叠回合法范围。
// 约束：尺寸超出 (0, MaxFrameSize]、dpr 超出 (0, MaxDPR]、数值无法解析或非有限值（NaN/Inf）时返回错误。
func parseFrameParams(q url.Values) (frameParams, error) {
	p := frameParams{W: DefaultFrameSize, H: DefaultFrameSize, DPR: 1, View: view.Home(), Background: q.Get("bg")}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"w", &p.W}, {"h", &p.H}, {"dpr", &p.DPR},
		{"lng", &p.View.Lng}, {"lat", &p.View.Lat}, {"scale", &p.View.Scale},
		{"pulse", &p.Pulse},
	}
	for _, f := range fields {
		s := q.Get(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return p, fmt.Errorf("invalid %s: %q", f.name, s)
		}
		*f.dst = v
	}
	if p.W <= 0 || p.H <= 0 || p.W > MaxFrameSize || p.H > MaxFrameSize {
		return p, fmt.Errorf("w and h must be in (0, %d]", MaxFrameSize)
	}
	if p.DPR <= 0 || p.DPR > MaxDPR {
		return p, fmt.Errorf("dpr must be in (0, %d]", MaxDPR)
	}
	p.View = p.View.Normalize()
	return p, nil
}

// style 按 bg 参数选择背景：空为透明，paper 为页面底色，否则按 #rrggbb 解析
func (d *Deps) style(bg string) (render.Style, error) {
	switch bg {
	case "":
		return d.Style, nil
	case "paper":
		return d.Style.Opaque(render.Paper), nil
	}
	c, err := render.Hex(bg)
	if err != nil {
		return d.Style, fmt.Errorf("invalid bg: %q", bg)
	}
	return d.Style.Opaque(c), nil
}

// buildFrame 无状态单帧：固定朝向，不自转
func (d *Deps) buildFrame(p frameParams) *render.Frame {
	ms := d.Shared.Markers()
	in := render.Input{
		Width:     p.W,
		Height:    p.H,
		DPR:       p.DPR,
		View:      p.View,
		Mode:      view.AutoRotating,
		Graticule: d.graticule,
		Markers:   ms,
		Index:     marker.NewIndex(ms),
		Pulse:     p.Pulse,
	}
	if l := d.Shared.Land(); l != nil {
		in.Rings = l.Rings
		in.Dots = l.Dots
	}
	return render.Build(in)
}

// 文档注释：渲染缓存键
// 背景：同一参数与同一份数据渲染结果确定；键里带上数据集摘要（来源、点数、标注），数据替换后旧缓存自然失效。
func (d *Deps) frameKey(format string, p frameParams) string {
	st := d.Shared.Land().Stats()
	h := sha1.New()
	fmt.Fprintf(h, "%s|%g|%g|%g|%g|%g|%g|%g|%s|%s|%d|%g", format, p.W, p.H, p.DPR,
		p.View.Lng, p.View.Lat, p.View.Scale, p.Pulse, p.Background, st.Source, st.Dots, st.Spacing)
	for _, m := range d.Shared.Markers() {
		fmt.Fprintf(h, "|%s,%g,%g,%t", m.Name, m.Lon, m.Lat, m.Featured)
	}
	return "globe:frame:" + hex.EncodeToString(h.Sum(nil))
}

func encodeFrame(format string, f *render.Frame, st render.Style) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case formatPNG:
		err = ggsurface.RenderPNG(&buf, f, st)
	case formatSVG:
		err = svgsurface.Render(&buf, f, st)
	default:
		err = json.NewEncoder(&buf).Encode(f)
	}
	return buf.Bytes(), err
}

// 文档注释：单帧渲染接口
// 背景：先查 redis 渲染缓存，未命中时构建显示列表并编码，成功后写回缓存并计入渲染统计。
// 异常：参数错误 400；编码失败 500（render_error）。缓存读写失败只影响性能。
func (d *Deps) handleFrame(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parseFrameParams(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			return
		}
		st, err := d.style(p.Background)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			return
		}
		ctx := r.Context()
		key := d.frameKey(format, p)
		if body, ok := d.cachedFrame(ctx, key); ok {
			metrics.FrameCacheHitsTotal.Inc()
			writeFrame(w, format, body)
			return
		}
		t0 := time.Now()
		body, err := encodeFrame(format, d.buildFrame(p), st)
		if err != nil {
			logger.L().Error("render_error", "format", format, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResult{Error: "render failed"})
			return
		}
		metrics.HTTPRendersTotal.WithLabelValues(format).Inc()
		logger.L().Debug("render_ok", "format", format, "w", p.W, "h", p.H, "bytes", len(body), "ms", time.Since(t0).Milliseconds())
		if d.Store != nil {
			d.Store.IncrStats(ctx, store.StatRender)
		}
		if d.Redis != nil {
			if err := d.Redis.Set(ctx, key, body, FrameCacheTTL).Err(); err != nil {
				logger.L().Warn("frame_cache_set_error", "err", err)
			}
		}
		writeFrame(w, format, body)
	}
}

func (d *Deps) cachedFrame(ctx context.Context, key string) ([]byte, bool) {
	if d.Redis == nil {
		return nil, false
	}
	b, err := d.Redis.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func writeFrame(w http.ResponseWriter, format string, body []byte) {
	w.Header().Set("content-type", contentTypes[format])
	w.Header().Set("cache-control", "public, max-age=60")
	w.Header().Set("content-length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}
