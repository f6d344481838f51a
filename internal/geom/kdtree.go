package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Site：KD-Tree 中的一个点，Index 为调用方序列中的位置
type Site struct {
	Index int
	Point orb.Point
}

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：坐标未命中任何区域（海上、边界缝隙）时，按代表点提供最近区域兜底；调用方限制最大半径避免误归属。
// 约束：按经度/纬度交替分割；仅支持最近一个点查询；构建后只读，可并发查询。
type KDTree struct {
	root *kdNode
	size int
}

type kdNode struct {
	s  Site
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

func NewKDTree(sites []Site) *KDTree {
	cp := append([]Site(nil), sites...)
	return &KDTree{root: buildKD(cp, 0), size: len(cp)}
}

func (t *KDTree) Len() int { return t.size }

func buildKD(ss []Site, depth int) *kdNode {
	if len(ss) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(ss) / 2
	selectNth(ss, mid, ax)
	node := &kdNode{s: ss[mid], ax: ax}
	node.l = buildKD(ss[:mid], depth+1)
	node.r = buildKD(ss[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择（轴为经度/纬度）
func selectNth(a []Site, n int, ax int) {
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

func partition(a []Site, lo, hi, pivot, ax int) int {
	pv := a[pivot].Point[ax]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j].Point[ax] < pv {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// 文档注释：最近点查询（球面距离，千米）
// 背景：树按原始经纬度切分，剪枝需要球面上的下界：纬度方向的子树距离不小于纬差对应的经线弧长；
// 经度方向取以查询点为中心、半径为当前最优距离的球冠的经度半宽，球冠包含极点时不剪枝。
// 约束：经差按 ±180° 回绕计算；空树返回 false。
func (t *KDTree) Nearest(pt orb.Point) (Site, float64, bool) {
	if t == nil || t.root == nil {
		return Site{}, 0, false
	}
	best := Site{}
	bestD := math.Inf(1)
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		d := Haversine(pt, n.s.Point)
		if d < bestD {
			bestD = d
			best = n.s
		}
		key, q := pt[n.ax], n.s.Point[n.ax]
		first, second := n.l, n.r
		if key >= q {
			first, second = n.r, n.l
		}
		dfs(first)
		if n.ax == 1 {
			if math.Abs(key-q)*kmPerDegree <= bestD {
				dfs(second)
			}
			return
		}
		// second 位于切分线的另一侧：左子树经度 < q，右子树经度 >= q
		lo, hi := -180.0, q
		if second == n.r {
			lo, hi = q, 180.0
		}
		reach, ok := lonReach(pt[1], bestD)
		if !ok || lonGap(key, lo, hi) <= reach {
			dfs(second)
		}
	}
	dfs(t.root)
	return best, bestD, true
}

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = earthRadiusKm * math.Pi / 180
)

// lonReach：纬度 lat 处半径 d 千米球冠的经度半宽（度）；球冠覆盖极点时返回 false
func lonReach(lat, d float64) (float64, bool) {
	r := d / earthRadiusKm
	phi := lat * math.Pi / 180
	if math.IsInf(d, 1) || r >= math.Pi/2-math.Abs(phi) {
		return 0, false
	}
	// 留出浮点余量，宁可多访问也不漏解
	return math.Asin(math.Sin(r)/math.Cos(phi))*180/math.Pi + 1e-9, true
}

// lonGap：经度 x 到区间 [lo, hi] 的最小回绕经差（度）
func lonGap(x, lo, hi float64) float64 {
	if x >= lo && x <= hi {
		return 0
	}
	return math.Min(wrapLon(x-lo), wrapLon(x-hi))
}

func wrapLon(d float64) float64 {
	d = math.Mod(math.Abs(d), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// 球面距离（Haversine），返回千米
func Haversine(a, b orb.Point) float64 {
	const R = earthRadiusKm
	lat1, lon1 := a[1], a[0]
	lat2, lon2 := b[1], b[0]
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * R * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
