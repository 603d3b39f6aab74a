package render

import "fmt"

// Op：一条绘制指令
type Op struct {
	Kind  string // clear|stroke_circle|fill_circle|polyline|text
	X, Y  float64
	R     float64
	Width float64
	N     int
	Text  string
	Color Color
}

func (o Op) String() string {
	switch o.Kind {
	case "text":
		return fmt.Sprintf("text %q @(%.1f,%.1f)", o.Text, o.X, o.Y)
	case "polyline":
		return fmt.Sprintf("polyline n=%d w=%.2f", o.N, o.Width)
	default:
		return fmt.Sprintf("%s @(%.1f,%.1f) r=%.2f", o.Kind, o.X, o.Y, o.R)
	}
}

// Recorder：记录绘制指令的绘制面（测试与调试统计）
type Recorder struct {
	Ops []Op
}

func (r *Recorder) Clear(bg Color) { r.Ops = append(r.Ops, Op{Kind: "clear", Color: bg}) }

func (r *Recorder) StrokeCircle(cx, cy, rad, width float64, c Color) {
	r.Ops = append(r.Ops, Op{Kind: "stroke_circle", X: cx, Y: cy, R: rad, Width: width, Color: c})
}

func (r *Recorder) FillCircle(cx, cy, rad float64, c Color) {
	r.Ops = append(r.Ops, Op{Kind: "fill_circle", X: cx, Y: cy, R: rad, Color: c})
}

func (r *Recorder) StrokePolyline(pts []Vec, width float64, c Color) {
	op := Op{Kind: "polyline", N: len(pts), Width: width, Color: c}
	if len(pts) > 0 {
		op.X, op.Y = pts[0].X, pts[0].Y
	}
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) Text(s string, x, y, size float64, c Color) {
	r.Ops = append(r.Ops, Op{Kind: "text", X: x, Y: y, R: size, Text: s, Color: c})
}

// Count 按类型计数
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, o := range r.Ops {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Reset 清空记录
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
