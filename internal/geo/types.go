// 包 geo：陆地多边形的最小几何结构、点入多边形判定与点阵采样
package geo

// 文档注释：经纬度点（度，WGS84）
// 约束：Lon ∈ [-180,180]，Lat ∈ [-90,90]；不做归一化，由数据源保证。
type LonLat struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Ring：有序顶点序列，首尾隐式闭合（GeoJSON 中重复的闭合点不影响射线判定）
type Ring []LonLat

// 文档注释：地理多边形（一块陆地）
// 背景：按 GeoJSON 约定，第一环为外环，其余为洞；加载后只读，供点阵生成与轮廓绘制共享。
// 约束：BBox 仅由外环计算（minLon, minLat, maxLon, maxLat）；洞必然位于外环内。
type Polygon struct {
	Outer Ring
	Holes []Ring
	BBox  [4]float64
}

// Feature：一个 GeoJSON 要素，Polygon 对应一个多边形，MultiPolygon 对应多个
type Feature struct {
	Name     string
	Polygons []Polygon
}

// NewPolygon 以外环与洞构建多边形并计算包围盒
func NewPolygon(outer Ring, holes ...Ring) Polygon {
	return Polygon{Outer: outer, Holes: holes, BBox: RingBBox(outer)}
}

// RingBBox 计算环的包围盒；空环返回反向盒（任何点都不在其中）
func RingBBox(r Ring) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	if len(r) == 0 {
		return b
	}
	b = [4]float64{r[0].Lon, r[0].Lat, r[0].Lon, r[0].Lat}
	for _, pt := range r[1:] {
		if pt.Lon < b[0] {
			b[0] = pt.Lon
		}
		if pt.Lat < b[1] {
			b[1] = pt.Lat
		}
		if pt.Lon > b[2] {
			b[2] = pt.Lon
		}
		if pt.Lat > b[3] {
			b[3] = pt.Lat
		}
	}
	return b
}

// Rings 返回外环与全部洞，用于轮廓绘制
func (p Polygon) Rings() []Ring {
	out := make([]Ring, 0, 1+len(p.Holes))
	out = append(out, p.Outer)
	return append(out, p.Holes...)
}
