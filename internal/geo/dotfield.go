package geo

import "math"

// DefaultSpacing 点阵经纬度间隔（度）
const DefaultSpacing = 1.4

// 文档注释：多边形点阵采样（DotField）
// 背景：从外环包围盒左下角起按 spacing 步进网格，保留落在外环内且不在任何洞内的点；加载时一次性生成，渲染期只做投影。
// 约束：采样坐标以 min + i*spacing 计算，不累加浮点误差，保证同输入同输出；spacing<=0 返回空。
// 复杂度：O(包围盒面积/spacing² × 环顶点数)，只在加载时付出。
func DotField(p Polygon, spacing float64) []LonLat {
	if spacing <= 0 || len(p.Outer) < 3 {
		return nil
	}
	b := RingBBox(p.Outer)
	nx := int(math.Floor((b[2]-b[0])/spacing + 1e-9))
	ny := int(math.Floor((b[3]-b[1])/spacing + 1e-9))
	var dots []LonLat
	for i := 0; i <= nx; i++ {
		lon := b[0] + float64(i)*spacing
		for j := 0; j <= ny; j++ {
			lat := b[1] + float64(j)*spacing
			if !PointInRing(lon, lat, p.Outer) {
				continue
			}
			pt := LonLat{Lon: lon, Lat: lat}
			if inAnyHole(pt, p.Holes) {
				continue
			}
			dots = append(dots, pt)
		}
	}
	return dots
}

// DotFieldAll 按要素顺序拼接全部多边形的点阵，形成渲染用的扁平集合
func DotFieldAll(features []Feature, spacing float64) []LonLat {
	var out []LonLat
	for _, f := range features {
		for _, p := range f.Polygons {
			out = append(out, DotField(p, spacing)...)
		}
	}
	return out
}
