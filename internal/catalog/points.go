package catalog

import (
	"geo-catalog/internal/geom"
	"geo-catalog/internal/logger"

	"github.com/paulmach/orb"
)

// RepresentativePoint：保证落在区域几何内的绘图锚点
type RepresentativePoint struct {
	Name  string
	Code  string
	Point orb.Point
}

// PointTable：与自适应序列同序的代表点表；只读
type PointTable struct {
	pts    []RepresentativePoint
	byName map[string]int
}

// 文档注释：为自适应序列中的每个区域计算代表点
// 背景：质心可能落在凹形区域外或洞内，绘图锚点使用扫描线内部点。
// 约束：表顺序与 Regions(Adaptive) 一致；一次计算，之后只读。
func (c *Catalog) RepresentativePoints() *PointTable {
	regions := c.Regions(Adaptive)
	t := &PointTable{pts: make([]RepresentativePoint, len(regions)), byName: make(map[string]int, len(regions))}
	for i, r := range regions {
		pt, ok := geom.InteriorPoint(r.Geometry)
		if !ok {
			logger.L().Warn("representative_point_missing", "name", r.Name)
		}
		t.pts[i] = RepresentativePoint{Name: r.Name, Code: r.Code, Point: pt}
		t.byName[r.Name] = i
	}
	return t
}

func (t *PointTable) Len() int { return len(t.pts) }

func (t *PointTable) At(i int) (RepresentativePoint, bool) {
	if i < 0 || i >= len(t.pts) {
		return RepresentativePoint{}, false
	}
	return t.pts[i], true
}

func (t *PointTable) Lookup(name string) (RepresentativePoint, bool) {
	i, ok := t.byName[name]
	if !ok {
		return RepresentativePoint{}, false
	}
	return t.pts[i], true
}

// sites：KD-Tree 构建输入
func (t *PointTable) sites() []geom.Site {
	out := make([]geom.Site, len(t.pts))
	for i, p := range t.pts {
		out[i] = geom.Site{Index: i, Point: p.Point}
	}
	return out
}
