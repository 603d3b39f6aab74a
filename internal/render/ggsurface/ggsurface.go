// 包 ggsurface：基于 gogpu/gg 软件光栅器的绘制面（PNG 输出）
package ggsurface

import (
	"fmt"
	"image"
	"io"
	"math"

	"dotglobe/internal/render"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// 文档注释：栅格绘制面
// 约束：非并发安全；每个会话/请求各自持有。绘制错误只记录第一个，由 Err 返回。
type Surface struct {
	dc    *gg.Context
	src   *text.FontSource
	faces map[float64]text.Face
	err   error
}

// New 创建 w×h 设备像素的画布
func New(w, h int) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("ggsurface: bad size %dx%d", w, h)
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("ggsurface: load font: %w", err)
	}
	return &Surface{dc: gg.NewContext(w, h), src: src, faces: make(map[float64]text.Face)}, nil
}

func (s *Surface) setColor(c render.Color) {
	r, g, b, a := c.Floats()
	s.dc.SetRGBA(r, g, b, a)
}

func (s *Surface) keep(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *Surface) Clear(bg render.Color) {
	r, g, b, a := bg.Floats()
	s.dc.ClearWithColor(gg.RGBA{R: r, G: g, B: b, A: a})
}

func (s *Surface) StrokeCircle(cx, cy, r, width float64, c render.Color) {
	if r <= 0 {
		return
	}
	s.setColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawCircle(cx, cy, r)
	s.keep(s.dc.Stroke())
}

func (s *Surface) FillCircle(cx, cy, r float64, c render.Color) {
	if r <= 0 {
		return
	}
	s.setColor(c)
	s.dc.DrawCircle(cx, cy, r)
	s.keep(s.dc.Fill())
}

func (s *Surface) StrokePolyline(pts []render.Vec, width float64, c render.Color) {
	if len(pts) < 2 {
		return
	}
	s.setColor(c)
	s.dc.SetLineWidth(width)
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.keep(s.dc.Stroke())
}

func (s *Surface) Text(str string, x, y, size float64, c render.Color) {
	if str == "" || size <= 0 {
		return
	}
	// 半像素取整，避免缩放动画时为每个浮点字号各建一个 face
	key := math.Round(size*2) / 2
	face, ok := s.faces[key]
	if !ok {
		face = s.src.Face(key)
		s.faces[key] = face
	}
	s.dc.SetFont(face)
	s.setColor(c)
	s.dc.DrawString(str, x, y)
}

// Err 绘制过程中的第一个错误
func (s *Surface) Err() error { return s.err }

// Image 当前画布
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG 输出 PNG
func (s *Surface) EncodePNG(w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	return s.dc.EncodePNG(w)
}

// Close 释放画布资源
func (s *Surface) Close() error { return s.dc.Close() }

// RenderPNG 便捷函数：按帧的设备尺寸新建画布、回放并编码
func RenderPNG(w io.Writer, f *render.Frame, st render.Style) error {
	if f == nil {
		return fmt.Errorf("ggsurface: nil frame")
	}
	dpr := f.DPR
	if dpr <= 0 {
		dpr = 1
	}
	s, err := New(int(math.Ceil(f.Width*dpr)), int(math.Ceil(f.Height*dpr)))
	if err != nil {
		return err
	}
	defer s.Close()
	render.Draw(f, s, st)
	return s.EncodePNG(w)
}
