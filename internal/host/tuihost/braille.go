package tuihost

import (
	"math"
	"strings"

	"dotglobe/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// 每个字符格 2×4 个微像素（盲文点阵）
const (
	cellW = 2
	cellH = 4
)

// 文档注释：盲文点阵画布
// 背景：终端字符格约为 1:2，2×4 的盲文点阵让微像素接近正方形，地球不会被压扁；画布实现 render.Surface，直接回放显示列表。
// 约束：没有透明度，每个字符格记录画过的最不透明的颜色作为前景；文字按字符格覆盖在点阵之上。
type Canvas struct {
	cols, rows int
	mask       []uint8
	color      []render.Color
	text       []rune
}

// NewCanvas cols×rows 个字符格
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize 改变尺寸并清空
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols, c.rows = cols, rows
	n := cols * rows
	c.mask = make([]uint8, n)
	c.color = make([]render.Color, n)
	c.text = make([]rune, n)
}

// PixelSize 微像素尺寸（构建帧时的视口）
func (c *Canvas) PixelSize() (w, h int) { return c.cols * cellW, c.rows * cellH }

// 盲文点位：左列 1,2,3,7，右列 4,5,6,8
var dotBits = [cellW][cellH]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c *Canvas) set(mx, my int, col render.Color) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/cellW, my/cellH
	if cx >= c.cols || cy >= c.rows {
		return
	}
	i := cy*c.cols + cx
	c.mask[i] |= dotBits[mx%cellW][my%cellH]
	if col.A >= c.color[i].A {
		c.color[i] = col
	}
}

func (c *Canvas) line(x0, y0, x1, y1 int, col render.Color) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round(v float64) int { return int(math.Round(v)) }

func (c *Canvas) Clear(bg render.Color) {
	for i := range c.mask {
		c.mask[i] = 0
		c.color[i] = render.Color{}
		c.text[i] = 0
	}
}

func (c *Canvas) StrokeCircle(cx, cy, r, width float64, col render.Color) {
	if r <= 0 {
		return
	}
	n := int(math.Ceil(2 * math.Pi * r))
	if n < 8 {
		n = 8
	}
	px, py := round(cx+r), round(cy)
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x, y := round(cx+r*math.Cos(a)), round(cy+r*math.Sin(a))
		c.line(px, py, x, y, col)
		px, py = x, y
	}
}

func (c *Canvas) FillCircle(cx, cy, r float64, col render.Color) {
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	hit := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				c.set(x, y, col)
				hit = true
			}
		}
	}
	if !hit {
		c.set(round(cx), round(cy), col)
	}
}

func (c *Canvas) StrokePolyline(pts []render.Vec, width float64, col render.Color) {
	for i := 1; i < len(pts); i++ {
		c.line(round(pts[i-1].X), round(pts[i-1].Y), round(pts[i].X), round(pts[i].Y), col)
	}
}

// Text (x,y) 为基线起点（微像素）；按字符格写入，越界截断
func (c *Canvas) Text(s string, x, y, size float64, col render.Color) {
	cx, cy := round(x)/cellW, (round(y)-1)/cellH
	if cy < 0 || cy >= c.rows {
		return
	}
	for _, r := range s {
		if cx >= c.cols {
			return
		}
		if cx >= 0 {
			i := cy*c.cols + cx
			c.text[i] = r
			c.color[i] = col
		}
		cx++
	}
}

// Lines 无颜色的文本行
func (c *Canvas) Lines() []string {
	out := make([]string, c.rows)
	row := make([]rune, c.cols)
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			row[x] = c.cell(y*c.cols + x)
		}
		out[y] = string(row)
	}
	return out
}

func (c *Canvas) cell(i int) rune {
	switch {
	case c.text[i] != 0:
		return c.text[i]
	case c.mask[i] == 0:
		return ' '
	default:
		return rune(0x2800 + int(c.mask[i]))
	}
}

// View 按格上色后的整块文本；同色的连续字符合并为一段
func (c *Canvas) View(bg render.Color) string {
	var b strings.Builder
	base := lipgloss.NewStyle().Background(lipgloss.Color(hex(bg)))
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		x := 0
		for x < c.cols {
			col := c.color[y*c.cols+x]
			var run []rune
			for x < c.cols && c.color[y*c.cols+x] == col {
				run = append(run, c.cell(y*c.cols+x))
				x++
			}
			st := base
			if col.A > 0 {
				st = st.Foreground(lipgloss.Color(hex(blend(col, bg))))
			}
			b.WriteString(st.Render(string(run)))
		}
	}
	return b.String()
}

// minInk 终端上最淡的前景不透明度；低于它的经纬网在字符格里几乎看不见
const minInk = 0.45

// blend 把带透明度的颜色压到底色上（终端没有 alpha）
func blend(fg, bg render.Color) render.Color {
	a := math.Max(fg.A, minInk)
	mix := func(f, b uint8) uint8 { return uint8(math.Round(float64(f)*a + float64(b)*(1-a))) }
	return render.Color{R: mix(fg.R, bg.R), G: mix(fg.G, bg.G), B: mix(fg.B, bg.B), A: 1}
}

func hex(c render.Color) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
