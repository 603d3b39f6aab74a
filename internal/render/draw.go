package render

import "math"

// 文档注释：绘制面
// 背景：栅格（PNG）、SVG、窗口与终端各自实现；帧回放只依赖这五个原语。
// 约束：坐标为设备像素；实现不得保留 pts 切片。
type Surface interface {
	Clear(bg Color)
	StrokeCircle(cx, cy, r, width float64, c Color)
	FillCircle(cx, cy, r float64, c Color)
	StrokePolyline(pts []Vec, width float64, c Color)
	Text(s string, x, y, size float64, c Color)
}

// Draw 把帧回放到绘制面：球轮廓、经纬网、陆地轮廓、点阵、标注（自下而上）
// 帧或绘制面为 nil 时直接返回
func Draw(f *Frame, s Surface, st Style) {
	if f == nil || s == nil {
		return
	}
	if f.DPR != 1 && f.DPR > 0 {
		s = dprSurface{s: s, k: f.DPR}
	}
	k := f.Scale
	s.Clear(st.Background)
	s.StrokeCircle(f.Sphere.CX, f.Sphere.CY, f.Sphere.R, st.SphereWidth, st.Sphere)
	for _, run := range f.Graticule {
		if len(run) > 1 {
			s.StrokePolyline(run, st.GraticuleWidth*k, st.Graticule)
		}
	}
	for _, run := range f.Outlines {
		if len(run) > 1 {
			s.StrokePolyline(run, st.OutlineWidth*k, st.Outline)
		}
	}
	for _, d := range f.Dots {
		s.FillCircle(d.X, d.Y, f.DotRadius, st.Dot)
	}
	for _, m := range f.Markers {
		drawMarker(s, m, k, st)
	}
}

func drawMarker(s Surface, m MarkerMark, k float64, st Style) {
	if m.Featured {
		sin := math.Sin(m.Pulse)
		r := st.MarkerDot*k + sin*st.PulseAmp*k + st.RingOffset*k
		s.StrokeCircle(m.X, m.Y, r, st.RingWidth*k, st.Marker.WithAlpha(st.RingAlpha+sin*st.RingAlphaA))
	}
	s.FillCircle(m.X, m.Y, st.MarkerDot*k, st.Marker)
	if m.Featured {
		s.FillCircle(m.X, m.Y, st.MarkerCoreR*k, st.MarkerCore)
	}
	s.Text(m.Name, m.X+st.LabelDX*k, m.Y+st.LabelDY*k, st.LabelSize*k, st.Marker)
}

// dpr 变换：CSS 像素 → 设备像素
type dprSurface struct {
	s Surface
	k float64
}

func (d dprSurface) Clear(bg Color) { d.s.Clear(bg) }

func (d dprSurface) StrokeCircle(cx, cy, r, width float64, c Color) {
	d.s.StrokeCircle(cx*d.k, cy*d.k, r*d.k, width*d.k, c)
}

func (d dprSurface) FillCircle(cx, cy, r float64, c Color) {
	d.s.FillCircle(cx*d.k, cy*d.k, r*d.k, c)
}

func (d dprSurface) StrokePolyline(pts []Vec, width float64, c Color) {
	out := make([]Vec, len(pts))
	for i, p := range pts {
		out[i] = Vec{X: p.X * d.k, Y: p.Y * d.k}
	}
	d.s.StrokePolyline(out, width*d.k, c)
}

func (d dprSurface) Text(str string, x, y, size float64, c Color) {
	d.s.Text(str, x*d.k, y*d.k, size*d.k, c)
}
