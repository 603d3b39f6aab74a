// 包 svgsurface：基于 ajstarks/svgo 的矢量绘制面
package svgsurface

import (
	"fmt"
	"io"
	"math"

	"dotglobe/internal/render"

	svg "github.com/ajstarks/svgo"
)

// svgo 只接受整数坐标：内部放大 sub 倍后用 scale 变换还原，保留 0.1 像素精度
const sub = 10

// Surface：SVG 绘制面；Start 与 End 之间回放一帧
type Surface struct {
	c    *svg.SVG
	w, h int
	open bool
}

// New 写入 w 的 SVG 画布，尺寸为设备像素
func New(w io.Writer, width, height int) *Surface {
	return &Surface{c: svg.New(w), w: width, h: height}
}

// Start 写出文档头与缩放分组
func (s *Surface) Start() {
	s.c.Start(s.w, s.h)
	s.c.Gtransform(fmt.Sprintf("scale(%g)", 1.0/sub))
	s.open = true
}

// End 关闭分组与文档
func (s *Surface) End() {
	if !s.open {
		return
	}
	s.c.Gend()
	s.c.End()
	s.open = false
}

func q(v float64) int { return int(math.Round(v * sub)) }

func fill(c render.Color) string {
	return fmt.Sprintf("fill:rgb(%d,%d,%d);fill-opacity:%g", c.R, c.G, c.B, c.A)
}

func stroke(c render.Color, width float64) string {
	return fmt.Sprintf("fill:none;stroke:rgb(%d,%d,%d);stroke-opacity:%g;stroke-width:%g", c.R, c.G, c.B, c.A, width*sub)
}

func (s *Surface) Clear(bg render.Color) {
	if bg.A <= 0 {
		return
	}
	s.c.Rect(0, 0, s.w*sub, s.h*sub, fill(bg))
}

func (s *Surface) StrokeCircle(cx, cy, r, width float64, c render.Color) {
	if r <= 0 {
		return
	}
	s.c.Circle(q(cx), q(cy), q(r), stroke(c, width))
}

func (s *Surface) FillCircle(cx, cy, r float64, c render.Color) {
	if r <= 0 {
		return
	}
	s.c.Circle(q(cx), q(cy), q(r), fill(c))
}

func (s *Surface) StrokePolyline(pts []render.Vec, width float64, c render.Color) {
	if len(pts) < 2 {
		return
	}
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = q(p.X), q(p.Y)
	}
	s.c.Polyline(xs, ys, stroke(c, width))
}

// svgo 负责转义文本
func (s *Surface) Text(str string, x, y, size float64, c render.Color) {
	if str == "" {
		return
	}
	s.c.Text(q(x), q(y), str, fmt.Sprintf("%s;font-family:sans-serif;font-size:%g", fill(c), size*sub))
}

// Render 便捷函数：按帧的设备尺寸输出完整 SVG 文档
func Render(w io.Writer, f *render.Frame, st render.Style) error {
	if f == nil {
		return fmt.Errorf("svgsurface: nil frame")
	}
	dpr := f.DPR
	if dpr <= 0 {
		dpr = 1
	}
	s := New(w, int(math.Ceil(f.Width*dpr)), int(math.Ceil(f.Height*dpr)))
	s.Start()
	render.Draw(f, s, st)
	s.End()
	return nil
}
