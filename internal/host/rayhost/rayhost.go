// 包 rayhost：raylib 桌面窗口宿主
package rayhost

import (
	"time"

	"dotglobe/internal/globe"
	"dotglobe/internal/host"
	"dotglobe/internal/logger"
	"dotglobe/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ringSegments 圆描边分段数
const ringSegments = 96

// Run 打开窗口并阻塞到窗口关闭；Esc 退出，R 复位朝向
func Run(opts host.Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 800
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.WindowTitle())
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(opts.FPS))
	logger.L().Info("raylib_window_open", "w", opts.Width, "h", opts.Height, "fps", opts.FPS)

	app := host.NewApp(opts)
	app.Start(opts.Land, opts.Spacing)
	defer app.Close()

	minimized := false
	s := surface{}
	for !rl.WindowShouldClose() {
		// raylib 以逻辑像素绘制（HighDPI 下由 raylib 放大），DPR 固定为 1
		app.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()), 1)
		if rl.IsKeyPressed(rl.KeyR) {
			app.Send(globe.Event{Kind: globe.Reset})
		}
		if m := rl.IsWindowMinimized(); m != minimized {
			minimized = m
			app.Send(globe.Event{Kind: globe.Visible, On: !m})
		}
		app.Step(poll(), time.Now())

		st := app.Style()
		rl.BeginDrawing()
		rl.ClearBackground(color(st.Backdrop()))
		render.Draw(app.Frame(), s, st)
		rl.EndDrawing()
	}
	return nil
}

func poll() globe.Input {
	m := rl.GetMousePosition()
	in := globe.Input{
		X:    float64(m.X),
		Y:    float64(m.Y),
		Down: rl.IsMouseButtonDown(rl.MouseButtonLeft),
		// raylib 向上滚为正，浏览器约定向下为正
		WheelY: -float64(rl.GetMouseWheelMove()),
	}
	if n := rl.GetTouchPointCount(); n > 0 {
		in.Touches = make([]globe.Point, 0, n)
		for i := int32(0); i < n; i++ {
			p := rl.GetTouchPosition(i)
			in.Touches = append(in.Touches, globe.Point{X: float64(p.X), Y: float64(p.Y)})
		}
	}
	return in
}

func color(c render.Color) rl.Color {
	n := c.NRGBA()
	return rl.NewColor(n.R, n.G, n.B, n.A)
}

type surface struct{}

func (surface) Clear(bg render.Color) {
	if bg.A > 0 {
		rl.ClearBackground(color(bg))
	}
}

func (surface) StrokeCircle(cx, cy, r, width float64, c render.Color) {
	inner := r - width/2
	if inner < 0 {
		inner = 0
	}
	rl.DrawRing(rl.NewVector2(float32(cx), float32(cy)), float32(inner), float32(r+width/2), 0, 360, ringSegments, color(c))
}

func (surface) FillCircle(cx, cy, r float64, c render.Color) {
	rl.DrawCircleV(rl.NewVector2(float32(cx), float32(cy)), float32(r), color(c))
}

func (surface) StrokePolyline(pts []render.Vec, width float64, c render.Color) {
	clr := color(c)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		rl.DrawLineEx(rl.NewVector2(float32(a.X), float32(a.Y)), rl.NewVector2(float32(b.X), float32(b.Y)), float32(width), clr)
	}
}

// Text 内置字体以左上角为锚点，按字号上移到基线
func (surface) Text(str string, x, y, size float64, c render.Color) {
	rl.DrawText(str, int32(x), int32(y-size), int32(size), color(c))
}
