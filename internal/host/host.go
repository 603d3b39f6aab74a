// 包 host：窗口/终端宿主的公共部分（地球 + 运行器 + 帧驱动时钟 + 输入差分）
package host

import (
	"time"

	"dotglobe/internal/globe"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"
	"dotglobe/internal/render"
	"dotglobe/internal/ticker"
	"dotglobe/internal/version"
)

// Options 宿主参数
type Options struct {
	Title         string
	Width, Height int
	Globe         globe.Options
	// Land 为 nil 时不加载陆地（只有经纬网与标注）
	Land    land.Source
	Spacing float64
	FPS     int
}

// WindowTitle 未指定 Title 时带上构建标识
func (o Options) WindowTitle() string {
	if o.Title != "" {
		return o.Title
	}
	return "dotglobe (" + version.Short() + ")"
}

// 文档注释：宿主应用
// 背景：窗口库自带帧循环，这里用手动时钟把每次 Update 变成一次 tick；输入按帧差分后投递给 Runner。
// 约束：Step/Resize/Frame 只能在宿主帧循环所在的 goroutine 调用。
type App struct {
	runner *globe.Runner
	clock  *ticker.Manual
	ptr    globe.Pointer
	frame  *render.Frame
	style  render.Style

	w, h, dpr float64
}

// NewApp 创建应用但不启动；Globe.Surface 应为 nil，绘制在宿主的 Draw 阶段回放 Frame
func NewApp(opts Options) *App {
	a := &App{clock: ticker.NewManual(time.Now(), 0), style: render.DefaultStyle()}
	if opts.Globe.Style != nil {
		a.style = *opts.Globe.Style
	}
	g := globe.New(opts.Globe)
	a.w, a.h, a.dpr = g.Size()
	a.runner = globe.NewRunner(g, a.clock, func(f *render.Frame) { a.frame = f })
	return a
}

// Start 开始接收 tick 并在后台加载陆地
func (a *App) Start(src land.Source, spacing float64) {
	a.runner.Start()
	if src != nil {
		logger.L().Info("host_land_load", "source", src.Name())
		a.runner.LoadLand(src, spacing)
	}
}

// Step 投递本帧输入并推进一帧
func (a *App) Step(in globe.Input, now time.Time) {
	for _, ev := range a.ptr.Update(in) {
		a.runner.Send(ev)
	}
	a.clock.Fire(now)
}

// Send 直接投递事件（键盘复位、可见性）
func (a *App) Send(ev globe.Event) { a.runner.Send(ev) }

// Resize 视口变化时投递 Resize；返回是否变化
func (a *App) Resize(w, h, dpr float64) bool {
	if w == a.w && h == a.h && dpr == a.dpr {
		return false
	}
	a.w, a.h, a.dpr = w, h, dpr
	a.runner.Send(globe.Event{Kind: globe.Resize, W: w, H: h, DPR: dpr})
	return true
}

// Frame 最近一帧；尚未出帧时为 nil
func (a *App) Frame() *render.Frame { return a.frame }

func (a *App) Style() render.Style { return a.style }

// Close 停止 tick 并取消加载
func (a *App) Close() { a.runner.Close() }

// Wait 等待后台加载结束
func (a *App) Wait() { a.runner.Wait() }
