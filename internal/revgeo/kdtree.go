package revgeo

import (
	"math"

	"github.com/golang/geo/s2"
)

// 地球平均半径（千米）
const earthRadiusKm = 6371.0088

// 每度纬度对应的千米数
const kmPerDegree = earthRadiusKm * math.Pi / 180

// 文档注释：KD-Tree 最近邻（二维经纬）
// 约束：经度/纬度交替分割；距离使用 s2 球面角距离；仅支持最近一个点查询。
type kdNode struct {
	p  Place
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

func buildKD(ps []Place, depth int) *kdNode {
	if len(ps) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(ps) / 2
	selectNth(ps, mid, ax)
	node := &kdNode{p: ps[mid], ax: ax}
	node.l = buildKD(ps[:mid], depth+1)
	node.r = buildKD(ps[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []Place, n int, ax int) {
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

func partition(a []Place, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if axisValue(a[j], ax) < axisValue(pv, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func axisValue(p Place, ax int) float64 {
	if ax == 0 {
		return p.Lon
	}
	return p.Lat
}

// distanceKm：s2 球面距离
func distanceKm(a Point, lat, lon float64) float64 {
	return float64(s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(lat, lon))) * earthRadiusKm
}

// 最近邻查询，返回地点与距离（千米）
func nearest(node *kdNode, pt Point) (Place, float64) {
	var best Place
	bestD := math.MaxFloat64
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := distanceKm(pt, n.p.Lat, n.p.Lon); d < bestD {
			bestD = d
			best = n.p
		}
		var key, q float64
		if n.ax == 0 {
			key, q = pt.Lon, n.p.Lon
		} else {
			key, q = pt.Lat, n.p.Lat
		}
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		// 分割平面到查询点的距离小于当前最优距离时才遍历另一侧
		if math.Abs(key-q)*axisScale(n.ax, pt.Lat, bestD) < bestD {
			dfs(second)
		}
	}
	dfs(node)
	return best, bestD
}

// axisScale：该轴上每度对应的最小千米数；经度按 bestD 范围内最靠近极点的纬度估算
func axisScale(ax int, lat, bestD float64) float64 {
	if ax == 1 {
		return kmPerDegree
	}
	if bestD == math.MaxFloat64 {
		return 0
	}
	edge := math.Abs(lat) + bestD/kmPerDegree
	if edge >= 90 {
		return 0
	}
	return kmPerDegree * math.Cos(edge*math.Pi/180)
}
