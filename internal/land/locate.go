package land

import (
	"math"
	"time"

	"dotglobe/internal/geo"
)

// Hit 陆地命中结果
type Hit struct {
	Land    bool   `json:"land"`
	Feature string `json:"feature,omitempty"`
	Polygon int    `json:"polygon"`
}

// 文档注释：命中缓存键精度
// 约束：同一 geohash 单元内的点共享缓存结果；12 位单元约 3.7cm×1.9cm，远小于数据集顶点间距，海岸线两侧的点不会落进同一单元。
const GeohashPrecision = 12

// 文档注释：陆地命中查询（包围盒候选 → 射线法精确判定）
// 背景：服务端 /land/at 与会话点选使用；结果按 geohash 缓存，同一格内的重复查询直接返回。
// 约束：判定规则与点阵生成一致（外环内且不在洞内）；经度先归一化到 [-180,180]。
type Locator struct {
	land  *Land
	cache *LRU
}

// NewLocator cacheSize<=0 时不缓存
func NewLocator(l *Land, cacheSize int, ttl time.Duration) *Locator {
	return &Locator{land: l, cache: NewLRU(cacheSize, ttl)}
}

// At 查询经纬度是否落在陆地上
func (lc *Locator) At(lon, lat float64) Hit {
	if lc == nil || lc.land == nil {
		return Hit{}
	}
	lon = normLon(lon)
	key := encodeGeohash(lat, lon, GeohashPrecision)
	if h, ok := lc.cache.Get(key); ok {
		return h
	}
	pt := geo.LonLat{Lon: lon, Lat: lat}
	h := Hit{Polygon: -1}
	n := 0
search:
	for _, f := range lc.land.Features {
		for _, p := range f.Polygons {
			if geo.InBBox(pt, p.BBox) && p.Contains(pt) {
				h = Hit{Land: true, Feature: f.Name, Polygon: n}
				break search
			}
			n++
		}
	}
	lc.cache.Set(key, h)
	return h
}

func normLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return lon
}
