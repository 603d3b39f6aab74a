// 包 globe：把视图控制器、陆地数据、标注与渲染器组合成一个按帧驱动的地球
package globe

import (
	"math"
	"time"

	"dotglobe/internal/geo"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"
	"dotglobe/internal/marker"
	"dotglobe/internal/metrics"
	"dotglobe/internal/projection"
	"dotglobe/internal/render"
	"dotglobe/internal/view"
)

// Options 构建参数；零值可用（无视口，Tick 不产出帧）
type Options struct {
	Width, Height float64
	DPR           float64
	Markers       []marker.Marker
	Style         *render.Style
	Surface       render.Surface
	// Home 覆盖默认朝向（访客朝向）
	Home *view.State
}

// 文档注释：地球实例
// 背景：唯一的状态写者；输入事件与陆地安装都在 tick 所在 goroutine 上执行（见 Runner）。
// 约束：非并发安全；不可见时控制器照常推进，只跳过构建与绘制。
type Globe struct {
	ctrl      *view.Controller
	land      *land.Land
	graticule []geo.Ring
	markers   []marker.Marker
	index     *marker.Index
	style     render.Style
	surface   render.Surface

	w, h, dpr float64
	visible   bool
	pulse     float64
	last      *render.Frame
	frames    uint64
}

func New(opts Options) *Globe {
	g := &Globe{
		ctrl:      view.NewController(),
		graticule: projection.Graticule(projection.GraticuleStep, projection.GraticuleSample),
		style:     render.DefaultStyle(),
		surface:   opts.Surface,
		visible:   true,
	}
	if opts.Style != nil {
		g.style = *opts.Style
	}
	if opts.Home != nil {
		g.ctrl.SetHome(opts.Home.Lng, opts.Home.Lat)
	}
	ms := opts.Markers
	if ms == nil {
		ms = marker.Defaults()
	}
	g.SetMarkers(ms)
	g.Resize(opts.Width, opts.Height, opts.DPR)
	return g
}

// Resize 视口尺寸（CSS 像素）与设备像素比；dpr<=0 视为 1，非有限尺寸视为 0（无视口）
func (g *Globe) Resize(w, h, dpr float64) {
	if !(w > 0) || math.IsInf(w, 0) || !(h > 0) || math.IsInf(h, 0) {
		w, h = 0, 0
	}
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	g.w, g.h, g.dpr = w, h, dpr
}

// Size 当前视口
func (g *Globe) Size() (w, h, dpr float64) { return g.w, g.h, g.dpr }

// SetSurface 替换绘制面（窗口重建等）
func (g *Globe) SetSurface(s render.Surface) { g.surface = s }

func (g *Globe) SetVisible(v bool) { g.visible = v }

func (g *Globe) Visible() bool { return g.visible }

// SetLand 安装陆地数据集；nil 表示卸载
func (g *Globe) SetLand(l *land.Land) { g.land = l }

func (g *Globe) Land() *land.Land { return g.land }

// SetMarkers 替换标注并重建最近邻索引
func (g *Globe) SetMarkers(ms []marker.Marker) {
	g.markers = append([]marker.Marker(nil), ms...)
	g.index = marker.NewIndex(g.markers)
}

func (g *Globe) Markers() []marker.Marker { return g.markers }

// Controller 视图控制器（宿主直接读取状态用）
func (g *Globe) Controller() *view.Controller { return g.ctrl }

// Last 最近一次构建的帧
func (g *Globe) Last() *render.Frame { return g.last }

// Frames 已渲染帧数
func (g *Globe) Frames() uint64 { return g.frames }

// Handle 应用一个输入事件
func (g *Globe) Handle(ev Event, now time.Time) {
	switch ev.Kind {
	case Down:
		g.ctrl.Press(ev.X, ev.Y, now)
	case Move:
		g.ctrl.Move(ev.X, ev.Y)
	case Up:
		g.ctrl.Release(now)
	case Wheel:
		g.ctrl.Wheel(ev.DeltaY)
	case Pinch:
		g.ctrl.Pinch(ev.Ratio)
	case Visible:
		g.SetVisible(ev.On)
	case Resize:
		g.Resize(ev.W, ev.H, ev.DPR)
	case Reset:
		g.ctrl.Reset()
	default:
		logger.L().Debug("globe_event_ignored", "kind", int(ev.Kind))
	}
}

// 文档注释：推进一帧
// 背景：控制器总是推进（自转与回归计时不因隐藏而停顿）；可见且有视口时构建显示列表并回放到绘制面。
// 返回：本帧显示列表；隐藏或无视口时返回 nil。
func (g *Globe) Tick(now time.Time) *render.Frame {
	g.ctrl.Tick(now)
	if !g.visible || g.w <= 0 || g.h <= 0 {
		metrics.FramesSkippedTotal.Inc()
		return nil
	}
	g.pulse += render.PulseStep
	t0 := time.Now()
	in := render.Input{
		Width:     g.w,
		Height:    g.h,
		DPR:       g.dpr,
		View:      g.ctrl.State(),
		Mode:      g.ctrl.Mode(),
		Graticule: g.graticule,
		Markers:   g.markers,
		Index:     g.index,
		Pulse:     g.pulse,
	}
	if g.land != nil {
		in.Rings = g.land.Rings
		in.Dots = g.land.Dots
	}
	f := render.Build(in)
	metrics.FrameBuildDurationMs.Observe(float64(time.Since(t0).Microseconds()) / 1000)
	render.Draw(f, g.surface, g.style)
	g.last = f
	g.frames++
	metrics.FramesTotal.Inc()
	return f
}
