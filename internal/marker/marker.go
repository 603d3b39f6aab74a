// 包 marker：地图标注点（城市/访客）与最近邻索引
package marker

import (
	"errors"
	"fmt"
	"strings"
)

// 文档注释：标注点
// 约束：Featured 标注绘制脉冲环与亮核，普通标注只绘制实心点与标签。
type Marker struct {
	Name     string  `json:"name"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Featured bool    `json:"featured"`
}

var ErrInvalid = errors.New("invalid marker")

// Validate 名称非空、经纬度在 WGS84 范围内
func (m Marker) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalid)
	}
	if m.Lon < -180 || m.Lon > 180 || m.Lat < -90 || m.Lat > 90 {
		return fmt.Errorf("%w: %s out of range (%v, %v)", ErrInvalid, m.Name, m.Lon, m.Lat)
	}
	return nil
}

// Porto 默认高亮标注
var Porto = Marker{Name: "Porto, PT", Lon: -8.61, Lat: 41.15, Featured: true}

// Defaults 内置标注：波尔图高亮，其余为静态城市
func Defaults() []Marker {
	return []Marker{
		Porto,
		{Name: "London, UK", Lon: -0.13, Lat: 51.51},
		{Name: "New York, US", Lon: -74.01, Lat: 40.71},
		{Name: "São Paulo, BR", Lon: -46.63, Lat: -23.55},
		{Name: "Cape Town, ZA", Lon: 18.42, Lat: -33.92},
		{Name: "Singapore, SG", Lon: 103.82, Lat: 1.35},
		{Name: "Tokyo, JP", Lon: 139.69, Lat: 35.69},
		{Name: "Sydney, AU", Lon: 151.21, Lat: -33.87},
	}
}

// Merge 按名称合并，后者覆盖前者，保持首次出现顺序
func Merge(base []Marker, extra ...Marker) []Marker {
	out := make([]Marker, 0, len(base)+len(extra))
	idx := make(map[string]int, len(base)+len(extra))
	for _, m := range append(append([]Marker(nil), base...), extra...) {
		if i, ok := idx[m.Name]; ok {
			out[i] = m
			continue
		}
		idx[m.Name] = len(out)
		out = append(out, m)
	}
	return out
}
