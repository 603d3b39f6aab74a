package marker

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// 文档注释：KD-Tree 最近邻（二维经纬，球面距离）
// 背景：每帧用视图中心查询“正对”的标注；标注数量小，构建一次常驻。
// 约束：按经度/纬度交替分割；纬度轴的剪枝下界为纬差（大圆距离不小于纬差），经度轴不剪枝（极区与日界线处经差不是下界）。
type Index struct {
	root *kdNode
	n    int
}

type kdNode struct {
	m  Marker
	ll s2.LatLng
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

// NewIndex 构建索引（复制输入，不修改调用方切片）
func NewIndex(ms []Marker) *Index {
	cp := append([]Marker(nil), ms...)
	return &Index{root: buildKD(cp, 0), n: len(cp)}
}

// Len 标注数量
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.n
}

func buildKD(ms []Marker, depth int) *kdNode {
	if len(ms) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(ms) / 2
	selectNth(ms, mid, ax)
	node := &kdNode{m: ms[mid], ll: s2.LatLngFromDegrees(ms[mid].Lat, ms[mid].Lon), ax: ax}
	node.l = buildKD(ms[:mid], depth+1)
	node.r = buildKD(ms[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []Marker, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []Marker, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if axisKey(a[j], ax) < axisKey(pv, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func axisKey(m Marker, ax int) float64 {
	if ax == 0 {
		return m.Lon
	}
	return m.Lat
}

// Nearest 返回距 (lon,lat) 最近的标注与大圆角距离；空索引返回 ok=false
func (ix *Index) Nearest(lon, lat float64) (Marker, s1.Angle, bool) {
	if ix == nil || ix.root == nil {
		return Marker{}, 0, false
	}
	q := s2.LatLngFromDegrees(lat, normLon(lon))
	var best Marker
	bestD := s1.Angle(math.Inf(1))
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := q.Distance(n.ll); d < bestD {
			bestD = d
			best = n.m
		}
		key := q.Lng.Degrees()
		if n.ax == 1 {
			key = q.Lat.Degrees()
		}
		split := axisKey(n.m, n.ax)
		first, second := n.l, n.r
		if key > split {
			first, second = n.r, n.l
		}
		dfs(first)
		if n.ax == 0 || s1.Angle(math.Abs(key-split))*s1.Degree < bestD {
			dfs(second)
		}
	}
	dfs(ix.root)
	return best, bestD, true
}

// Within 最近标注是否在 maxDeg 度以内
func (ix *Index) Within(lon, lat, maxDeg float64) (Marker, bool) {
	m, d, ok := ix.Nearest(lon, lat)
	if !ok || d.Degrees() > maxDeg {
		return Marker{}, false
	}
	return m, true
}

// 视图经度为 [0,360)，标注为 [-180,180]
func normLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return lon
}
