package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color：8 位 RGB + 浮点透明度（与画布 rgba() 一致）
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA 构造颜色，alpha 截断到 [0,1]
func RGBA(r, g, b uint8, a float64) Color {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return Color{R: r, G: g, B: b, A: a}
}

// Hex 解析 #RRGGBB（不透明）
func Hex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("bad hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("bad hex color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
}

func mustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha 替换透明度
func (c Color) WithAlpha(a float64) Color { return RGBA(c.R, c.G, c.B, a) }

// Floats 0..1 分量（gg 等浮点画布使用）
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, c.A
}

// NRGBA 转为标准库非预乘颜色（ebiten/raylib/SVG 使用）
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(c.A*255 + 0.5)}
}

// CSS rgba() 文本
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}
