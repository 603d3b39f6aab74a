package projection

import "dotglobe/internal/geo"

// 经纬网默认参数：30° 网格，2° 采样
const (
	GraticuleStep   = 30.0
	GraticuleSample = 2.0
)

// 文档注释：经纬网折线（经度/纬度）
// 背景：经线每 step 度一条，从南极到北极按 sample 采样；纬线跳过两极，从 -90+step 到 90-step。
// 约束：结果只与参数相关，可在启动时生成一次反复投影。
func Graticule(step, sample float64) []geo.Ring {
	if step <= 0 || sample <= 0 {
		return nil
	}
	var lines []geo.Ring
	for i := 0; ; i++ {
		lng := -180 + float64(i)*step
		if lng > 180+1e-9 {
			break
		}
		var r geo.Ring
		for j := 0; ; j++ {
			lat := -90 + float64(j)*sample
			if lat > 90+1e-9 {
				break
			}
			r = append(r, geo.LonLat{Lon: lng, Lat: lat})
		}
		lines = append(lines, r)
	}
	for i := 1; ; i++ {
		lat := -90 + float64(i)*step
		if lat >= 90-1e-9 {
			break
		}
		var r geo.Ring
		for j := 0; ; j++ {
			lng := -180 + float64(j)*sample
			if lng > 180+1e-9 {
				break
			}
			r = append(r, geo.LonLat{Lon: lng, Lat: lat})
		}
		lines = append(lines, r)
	}
	return lines
}
