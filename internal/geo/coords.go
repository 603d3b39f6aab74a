package geo

import "math"

// Deg 度转弧度系数
const Deg = math.Pi / 180

// WrapLon360 将经度折叠到 [0, 360)
func WrapLon360(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	// -1e-15 经 Mod 与加法后可能得到 360
	if lon >= 360 {
		lon -= 360
	}
	return lon
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
