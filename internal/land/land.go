// 包 land：陆地数据集的获取、解析与预处理（轮廓环 + 点阵），以及陆地命中查询
package land

import (
	"time"

	"dotglobe/internal/geo"
)

// DefaultURL Natural Earth 1:110m 陆地多边形
const DefaultURL = "https://raw.githubusercontent.com/martynafford/natural-earth-geojson/refs/heads/master/110m/physical/ne_110m_land.json"

// 文档注释：已处理的陆地数据集
// 背景：加载一次后只读；轮廓环与点阵在加载时计算，渲染循环每帧只做投影。
// 约束：Rings 含每个多边形的外环与洞（绘制轮廓用）；Dots 仅在外环内且不在任何洞内。
type Land struct {
	Features []geo.Feature
	Rings    []geo.Ring
	Dots     []geo.LonLat
	Spacing  float64
	Source   string
	LoadedAt time.Time
}

// Stats 数据集摘要（/land 接口输出）
type Stats struct {
	Source   string    `json:"source"`
	Features int       `json:"features"`
	Polygons int       `json:"polygons"`
	Rings    int       `json:"rings"`
	Dots     int       `json:"dots"`
	Spacing  float64   `json:"spacing"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Build 由要素列表构建数据集；spacing<=0 时使用默认间距
func Build(features []geo.Feature, spacing float64) *Land {
	if spacing <= 0 {
		spacing = geo.DefaultSpacing
	}
	l := &Land{Features: features, Spacing: spacing, LoadedAt: time.Now()}
	for _, f := range features {
		for _, p := range f.Polygons {
			l.Rings = append(l.Rings, p.Rings()...)
		}
	}
	l.Dots = geo.DotFieldAll(features, spacing)
	return l
}

// Stats 摘要；nil 数据集返回零值
func (l *Land) Stats() Stats {
	if l == nil {
		return Stats{}
	}
	s := Stats{Source: l.Source, Features: len(l.Features), Rings: len(l.Rings), Dots: len(l.Dots), Spacing: l.Spacing, LoadedAt: l.LoadedAt}
	for _, f := range l.Features {
		s.Polygons += len(f.Polygons)
	}
	return s
}
