// 包 projection：正射投影（orthographic）与经纬网生成
package projection

import (
	"math"

	"dotglobe/internal/geo"
)

// Vec 屏幕坐标（CSS 像素，原点左上，y 向下）
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// 文档注释：正射投影器
// 背景：每帧以当前视图中心（λ0, φ0）与缩放构建一次，预先计算中心三角函数，逐点投影时只算目标点。
// 约束：cosC < 0 的点位于背面半球，不可见；cosC == 0（切点）视为可见，全局保持一致。
type Ortho struct {
	CenterLng float64
	CenterLat float64
	Scale     float64
	Radius    float64
	CX, CY    float64

	lam0   float64
	sinPh0 float64
	cosPh0 float64
}

// New 构建投影器；lng/lat 为视图中心（度），radius 为未缩放的球半径，cx/cy 为视口中心
func New(lng, lat, scale, radius, cx, cy float64) *Ortho {
	ph0 := lat * geo.Deg
	return &Ortho{
		CenterLng: lng,
		CenterLat: lat,
		Scale:     scale,
		Radius:    radius,
		CX:        cx,
		CY:        cy,
		lam0:      lng * geo.Deg,
		sinPh0:    math.Sin(ph0),
		cosPh0:    math.Cos(ph0),
	}
}

// Radius 视口对应的球半径：min(w,h)/2.2
func Radius(w, h float64) float64 {
	return math.Min(w, h) / 2.2
}

// CosC 返回点与视图中心夹角的余弦，>=0 即位于可见半球
func (o *Ortho) CosC(lng, lat float64) float64 {
	ph := lat * geo.Deg
	return o.sinPh0*math.Sin(ph) + o.cosPh0*math.Cos(ph)*math.Cos(lng*geo.Deg-o.lam0)
}

// Project 投影经纬度到屏幕坐标；背面返回 ok=false
func (o *Ortho) Project(lng, lat float64) (x, y float64, ok bool) {
	ph := lat * geo.Deg
	dl := lng*geo.Deg - o.lam0
	sinPh, cosPh := math.Sin(ph), math.Cos(ph)
	cosDl := math.Cos(dl)
	cosC := o.sinPh0*sinPh + o.cosPh0*cosPh*cosDl
	if cosC < 0 {
		return 0, 0, false
	}
	r := o.Radius * o.Scale
	px := r * cosPh * math.Sin(dl)
	py := r * (o.cosPh0*sinPh - o.sinPh0*cosPh*cosDl)
	return o.CX + px, o.CY - py, true
}

// ProjectPoint 同 Project，返回 Vec
func (o *Ortho) ProjectPoint(p geo.LonLat) (Vec, bool) {
	x, y, ok := o.Project(p.Lon, p.Lat)
	return Vec{X: x, Y: y}, ok
}

// 文档注释：投影一条折线/环，按不可见顶点切分为若干可见段
// 背景：与画布 moveTo/lineTo 行为一致，遇到背面点即断开，下一个可见点重新起笔。
// 约束：环不自动闭合（与原始绘制一致）；单点段保留，由绘制层决定是否忽略。
func (o *Ortho) ProjectRing(r geo.Ring) [][]Vec {
	var runs [][]Vec
	var cur []Vec
	for _, p := range r {
		v, ok := o.ProjectPoint(p)
		if !ok {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, v)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}
