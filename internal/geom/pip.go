package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// 边界判定容差（度）
const edgeEps = 1e-12

// 文档注释：点入多面判定（Even-Odd）
// 背景：对多面逐个执行外环命中且不在洞内的判定；用于反查坐标所属区域与代表点校验。
// 约束：点落在任一环的边上视为命中；输入为经纬度坐标（X=经度，Y=纬度）。
func Contains(mp orb.MultiPolygon, pt orb.Point) bool {
	for _, poly := range mp {
		if PolygonContains(poly, pt) {
			return true
		}
	}
	return false
}

// PolygonContains：外环命中且不在洞内视为命中；洞的边界属于多边形
func PolygonContains(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	if onRing(pt, poly[0]) {
		return true
	}
	if !ringContains(pt, poly[0]) {
		return false
	}
	for i := 1; i < len(poly); i++ {
		if onRing(pt, poly[i]) {
			return true
		}
		if ringContains(pt, poly[i]) {
			return false
		}
	}
	return true
}

// 射线法判定点是否在环内
func ringContains(pt orb.Point, ring orb.Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt[0], pt[1]
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func onRing(pt orb.Point, ring orb.Ring) bool {
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if onSegment(pt, ring[j], ring[i]) {
			return true
		}
	}
	return false
}

func onSegment(p, a, b orb.Point) bool {
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if math.Abs(cross) > edgeEps {
		return false
	}
	return p[0] >= math.Min(a[0], b[0])-edgeEps && p[0] <= math.Max(a[0], b[0])+edgeEps &&
		p[1] >= math.Min(a[1], b[1])-edgeEps && p[1] <= math.Max(a[1], b[1])+edgeEps
}

// 快速包围盒过滤
func InBound(pt orb.Point, b orb.Bound) bool {
	return pt[0] >= b.Min[0] && pt[0] <= b.Max[0] && pt[1] >= b.Min[1] && pt[1] <= b.Max[1]
}
