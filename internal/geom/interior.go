package geom

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：多面内部代表点（扫描线）
// 背景：质心对凹形、多部件或带洞区域可能落在区域外，绘图锚点必须落在区域内。
// 做法：每个多边形取包围盒中线附近、且避开所有顶点纵坐标的水平扫描线，与全部环求交；
// 交点排序后两两成对即为内部区间，取所有多边形中最宽区间的中点。
// 约束：退化输入（零面积）回退为首个顶点，第二个返回值为 false 表示没有任何顶点。
func InteriorPoint(mp orb.MultiPolygon) (orb.Point, bool) {
	var best orb.Point
	bestW := -1.0
	for _, poly := range mp {
		if len(poly) == 0 || len(poly[0]) < 3 {
			continue
		}
		y := scanLine(poly)
		xs := crossings(poly, y)
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			if w := xs[i+1] - xs[i]; w > bestW {
				bestW = w
				best = orb.Point{(xs[i] + xs[i+1]) / 2, y}
			}
		}
	}
	if bestW >= 0 {
		return best, true
	}
	for _, poly := range mp {
		for _, r := range poly {
			if len(r) > 0 {
				return r[0], true
			}
		}
	}
	return orb.Point{}, false
}

// 扫描线纵坐标：取中线两侧最近顶点纵坐标的中点，保证不与任何顶点等高
func scanLine(poly orb.Polygon) float64 {
	b := poly.Bound()
	centre := (b.Min[1] + b.Max[1]) / 2
	lo, hi := b.Min[1], b.Max[1]
	for _, r := range poly {
		for _, p := range r {
			y := p[1]
			if y > centre && y < hi {
				hi = y
			} else if y <= centre && y > lo {
				lo = y
			}
		}
	}
	return (lo + hi) / 2
}

func crossings(poly orb.Polygon, y float64) []float64 {
	var xs []float64
	for _, r := range poly {
		for i := 0; i+1 < len(r); i++ {
			a, b := r[i], r[i+1]
			if (a[1] > y) != (b[1] > y) {
				xs = append(xs, a[0]+(y-a[1])*(b[0]-a[0])/(b[1]-a[1]))
			}
		}
	}
	return xs
}

// Centroid：面积加权质心，可能落在区域之外
func Centroid(mp orb.MultiPolygon) orb.Point {
	c, _ := planar.CentroidArea(mp)
	return c
}
