package geo

// 文档注释：点入多边形判定（Even-Odd）
// 背景：在原始经纬度上判定而非投影后的屏幕坐标，避免投影畸变影响点阵结果。
// 约束：自相交或退化环的结果未定义但确定（同输入同输出）；不做几何修复。
func (p Polygon) Contains(pt LonLat) bool {
	if !InBBox(pt, p.BBox) {
		return false
	}
	if !PointInRing(pt.Lon, pt.Lat, p.Outer) {
		return false
	}
	return !inAnyHole(pt, p.Holes)
}

func inAnyHole(pt LonLat, holes []Ring) bool {
	for _, h := range holes {
		if PointInRing(pt.Lon, pt.Lat, h) {
			return true
		}
	}
	return false
}

// PointInRing 射线法判定 (x, y) 是否在环内；x 为经度，y 为纬度
func PointInRing(x, y float64, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		// 跨越判定保证 yj != yi，除法安全
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// InBBox 快速包围盒过滤（闭区间）
func InBBox(pt LonLat, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}
