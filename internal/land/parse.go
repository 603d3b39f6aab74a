package land

import (
	"fmt"

	"dotglobe/internal/geo"
	"dotglobe/internal/logger"

	geojson "github.com/paulmach/go.geojson"
)

// 文档注释：解析 GeoJSON FeatureCollection
// 背景：只关心 Polygon/MultiPolygon；其他几何类型（点、线、集合）静默忽略。
// 约束：少于 3 个顶点的环跳过（debug 日志）；外环被跳过时整个多边形跳过；其余几何缺陷不做修复，交由射线法按原样判定。
func Parse(data []byte) ([]geo.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("land: decode geojson: %w", err)
	}
	out := make([]geo.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		name := featureName(f, i)
		var polys []geo.Polygon
		switch f.Geometry.Type {
		case geojson.GeometryPolygon:
			if p, ok := toPolygon(f.Geometry.Polygon, name); ok {
				polys = append(polys, p)
			}
		case geojson.GeometryMultiPolygon:
			for _, part := range f.Geometry.MultiPolygon {
				if p, ok := toPolygon(part, name); ok {
					polys = append(polys, p)
				}
			}
		default:
			continue
		}
		if len(polys) == 0 {
			continue
		}
		out = append(out, geo.Feature{Name: name, Polygons: polys})
	}
	return out, nil
}

func featureName(f *geojson.Feature, i int) string {
	for _, k := range []string{"name", "NAME", "featurecla"} {
		if s := f.PropertyMustString(k, ""); s != "" {
			return s
		}
	}
	return fmt.Sprintf("feature-%d", i)
}

func toPolygon(rings [][][]float64, name string) (geo.Polygon, bool) {
	if len(rings) == 0 {
		return geo.Polygon{}, false
	}
	outer := toRing(rings[0])
	if len(outer) < 3 {
		logger.L().Debug("land_ring_skipped", "feature", name, "kind", "outer", "points", len(outer))
		return geo.Polygon{}, false
	}
	var holes []geo.Ring
	for _, h := range rings[1:] {
		r := toRing(h)
		if len(r) < 3 {
			logger.L().Debug("land_ring_skipped", "feature", name, "kind", "hole", "points", len(r))
			continue
		}
		holes = append(holes, r)
	}
	return geo.NewPolygon(outer, holes...), true
}

func toRing(coords [][]float64) geo.Ring {
	r := make(geo.Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		r = append(r, geo.LonLat{Lon: c[0], Lat: c[1]})
	}
	return r
}
