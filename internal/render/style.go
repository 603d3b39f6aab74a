package render

// 文档注释：绘制样式
// 背景：配色沿用站点的“carbon”色系：描边为 rgb(18,18,18) 的低透明度，点阵与标注为 #333333。
// 约束：宽度/半径均为 CSS 像素且在 scale=1 下给出，除球轮廓外都乘以当前缩放。
type Style struct {
	Background Color

	Sphere      Color
	SphereWidth float64

	Graticule      Color
	GraticuleWidth float64

	Outline      Color
	OutlineWidth float64

	Dot Color

	Marker      Color
	MarkerCore  Color
	MarkerDot   float64
	MarkerCoreR float64
	RingWidth   float64
	RingOffset  float64
	PulseAmp    float64
	RingAlpha   float64
	RingAlphaA  float64

	LabelSize float64
	LabelDX   float64
	LabelDY   float64
}

// PulseStep 每个渲染帧的脉冲相位增量
const PulseStep = 0.04

func DefaultStyle() Style {
	carbon := Color{R: 18, G: 18, B: 18}
	return Style{
		Background:     Color{R: 0, G: 0, B: 0, A: 0},
		Sphere:         carbon.WithAlpha(0.1),
		SphereWidth:    1,
		Graticule:      carbon.WithAlpha(0.12),
		GraticuleWidth: 0.6,
		Outline:        carbon.WithAlpha(0.35),
		OutlineWidth:   0.8,
		Dot:            RGBA(51, 51, 51, 0.5),
		Marker:         mustHex("#333333"),
		MarkerCore:     mustHex("#EBE9E4"),
		MarkerDot:      3,
		MarkerCoreR:    1.2,
		RingWidth:      1.2,
		RingOffset:     4,
		PulseAmp:       1.5,
		RingAlpha:      0.15,
		RingAlphaA:     0.1,
		LabelSize:      10,
		LabelDX:        8,
		LabelDY:        4,
	}
}

// Opaque 在不透明背景上绘制（PNG/终端等没有页面底色的输出）
func (s Style) Opaque(bg Color) Style {
	s.Background = bg
	return s
}

// Paper 页面底色
var Paper = mustHex("#EBE9E4")

// Backdrop 窗口宿主的底色：背景透明时用页面底色
func (s Style) Backdrop() Color {
	if s.Background.A == 0 {
		return Paper
	}
	return s.Background
}
