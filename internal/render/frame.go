// 包 render：逐帧显示列表（投影 + 剔除）与回放到任意绘制面
package render

import (
	"math"

	"dotglobe/internal/geo"
	"dotglobe/internal/marker"
	"dotglobe/internal/projection"
	"dotglobe/internal/view"
)

type Vec = projection.Vec

// DotRadius 点阵半径（scale=1 时）
const DotRadius = 1.1

// FacingMaxDeg 视图中心到“正对”标注的最大角距离
const FacingMaxDeg = 30.0

type Sphere struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	R  float64 `json:"r"`
}

type MarkerMark struct {
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Featured bool    `json:"featured"`
	Pulse    float64 `json:"pulse"`
}

// 文档注释：单帧显示列表
// 背景：投影与背面剔除只在 Build 中做一次，结果可回放到多个绘制面，也可直接序列化推送给客户端。
// 约束：坐标为 CSS 像素；DPR 只在回放时作用。
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
	Scale  float64 `json:"scale"`

	View   view.State `json:"view"`
	Mode   string     `json:"mode"`
	Facing string     `json:"facing,omitempty"`

	Sphere    Sphere       `json:"sphere"`
	Graticule [][]Vec      `json:"graticule"`
	Outlines  [][]Vec      `json:"outlines,omitempty"`
	Dots      []Vec        `json:"dots,omitempty"`
	DotRadius float64      `json:"dot_radius"`
	Markers   []MarkerMark `json:"markers,omitempty"`
}

// Input：构建一帧所需的全部只读数据
type Input struct {
	Width, Height float64
	DPR           float64
	View          view.State
	Mode          view.Mode

	Graticule []geo.Ring
	Rings     []geo.Ring
	Dots      []geo.LonLat

	Markers []marker.Marker
	Index   *marker.Index
	Pulse   float64
}

// Build 投影并剔除背面元素；零尺寸或非有限尺寸视口返回 nil
func Build(in Input) *Frame {
	if !(in.Width > 0) || !(in.Height > 0) || math.IsInf(in.Width, 0) || math.IsInf(in.Height, 0) {
		return nil
	}
	dpr := in.DPR
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	st := in.View.Normalize()
	cx, cy := in.Width/2, in.Height/2
	o := projection.New(st.Lng, st.Lat, st.Scale, projection.Radius(in.Width, in.Height), cx, cy)

	f := &Frame{
		Width:     in.Width,
		Height:    in.Height,
		DPR:       dpr,
		Scale:     st.Scale,
		View:      st,
		Mode:      in.Mode.String(),
		Sphere:    Sphere{CX: cx, CY: cy, R: o.Radius * st.Scale},
		DotRadius: DotRadius * st.Scale,
	}
	for _, r := range in.Graticule {
		f.Graticule = append(f.Graticule, o.ProjectRing(r)...)
	}
	for _, r := range in.Rings {
		f.Outlines = append(f.Outlines, o.ProjectRing(r)...)
	}
	if len(in.Dots) > 0 {
		f.Dots = make([]Vec, 0, len(in.Dots)/2)
		for _, d := range in.Dots {
			if v, ok := o.ProjectPoint(d); ok {
				f.Dots = append(f.Dots, v)
			}
		}
	}
	for _, m := range in.Markers {
		x, y, ok := o.Project(m.Lon, m.Lat)
		if !ok {
			continue
		}
		f.Markers = append(f.Markers, MarkerMark{Name: m.Name, X: x, Y: y, Featured: m.Featured, Pulse: in.Pulse})
	}
	if m, ok := in.Index.Within(st.Lng, st.Lat, FacingMaxDeg); ok {
		f.Facing = m.Name
	}
	return f
}
