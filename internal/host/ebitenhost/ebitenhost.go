// 包 ebitenhost：ebiten 桌面窗口宿主
package ebitenhost

import (
	"bytes"
	"math"
	"time"

	"dotglobe/internal/globe"
	"dotglobe/internal/host"
	"dotglobe/internal/logger"
	"dotglobe/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Run 打开窗口并阻塞到窗口关闭；Esc 退出，R 复位朝向
func Run(opts host.Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 800
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	g := &game{app: host.NewApp(opts), font: src}
	g.app.Start(opts.Land, opts.Spacing)
	defer g.app.Close()

	ebiten.SetWindowTitle(opts.WindowTitle())
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.FPS)
	logger.L().Info("ebiten_window_open", "w", opts.Width, "h", opts.Height, "fps", opts.FPS)
	return ebiten.RunGame(g)
}

type game struct {
	app       *host.App
	font      *text.GoTextFaceSource
	minimized bool
	touchIDs  []ebiten.TouchID
	dpr       float64
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.app.Send(globe.Event{Kind: globe.Reset})
	}
	if m := ebiten.IsWindowMinimized(); m != g.minimized {
		g.minimized = m
		g.app.Send(globe.Event{Kind: globe.Visible, On: !m})
	}
	g.app.Step(g.poll(), time.Now())
	return nil
}

// poll 采样输入；坐标从设备像素换算回逻辑像素
func (g *game) poll() globe.Input {
	k := g.dpr
	if k <= 0 {
		k = 1
	}
	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	in := globe.Input{
		X:    float64(x) / k,
		Y:    float64(y) / k,
		Down: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		// ebiten 向上滚为正，浏览器约定向下为正
		WheelY: -wy,
	}
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		in.Touches = append(in.Touches, globe.Point{X: float64(tx) / k, Y: float64(ty) / k})
	}
	return in
}

func (g *game) Draw(screen *ebiten.Image) {
	st := g.app.Style()
	screen.Fill(st.Backdrop().NRGBA())
	render.Draw(g.app.Frame(), &surface{dst: screen, font: g.font}, st)
}

// Layout 以设备像素作为屏幕尺寸，逻辑尺寸与 DPR 交给地球
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.dpr = ebiten.Monitor().DeviceScaleFactor()
	if g.dpr <= 0 {
		g.dpr = 1
	}
	g.app.Resize(float64(outsideWidth), float64(outsideHeight), g.dpr)
	return int(math.Ceil(float64(outsideWidth) * g.dpr)), int(math.Ceil(float64(outsideHeight) * g.dpr))
}

// surface 把显示列表画到 ebiten 图像上（设备像素）
type surface struct {
	dst  *ebiten.Image
	font *text.GoTextFaceSource
}

func (s *surface) Clear(bg render.Color) {
	if bg.A > 0 {
		s.dst.Fill(bg.NRGBA())
	}
}

func (s *surface) StrokeCircle(cx, cy, r, width float64, c render.Color) {
	vector.StrokeCircle(s.dst, float32(cx), float32(cy), float32(r), float32(width), c.NRGBA(), true)
}

func (s *surface) FillCircle(cx, cy, r float64, c render.Color) {
	vector.DrawFilledCircle(s.dst, float32(cx), float32(cy), float32(r), c.NRGBA(), true)
}

func (s *surface) StrokePolyline(pts []render.Vec, width float64, c render.Color) {
	clr := c.NRGBA()
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		vector.StrokeLine(s.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(width), clr, true)
	}
}

// Text 以基线为锚点（与 canvas fillText 一致）
func (s *surface) Text(str string, x, y, size float64, c render.Color) {
	face := &text.GoTextFace{Source: s.font, Size: size}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(c.NRGBA())
	text.Draw(s.dst, str, face, op)
}
