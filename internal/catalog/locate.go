package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"geo-catalog/internal/geom"
	"geo-catalog/internal/logger"

	"github.com/paulmach/orb"
)

// PointMode：节点锚点的取法
type PointMode string

const (
	// PointsDefault：adaptive 使用预计算代表点表，其他比例尺现算内部点
	PointsDefault        PointMode = ""
	PointsRepresentative PointMode = "representative"
	PointsCentroid       PointMode = "centroid"
)

func ParsePointMode(s string) (PointMode, error) {
	switch m := PointMode(strings.ToLower(strings.TrimSpace(s))); m {
	case PointsDefault, PointsRepresentative, PointsCentroid:
		return m, nil
	}
	return PointsDefault, fmt.Errorf("invalid point mode %q", s)
}

// Placement：一个节点名称解析后的区域与锚点
type Placement struct {
	Input      string
	Index      int
	Name       string
	Code       string
	Resolution Resolution
	Point      orb.Point
}

// Locator：面向绘图方的查询入口（名称/代码 → 索引 → 锚点，坐标 → 区域）
type Locator struct {
	cat    *Catalog
	conv   *NameConverter
	points *PointTable
	bounds []orb.Bound
	kd     *geom.KDTree
	iso2   map[string]int
}

// NewLocator：预计算代表点、包围盒与最近邻索引；构建后只读
func NewLocator(c *Catalog, conv *NameConverter) *Locator {
	l := &Locator{cat: c, conv: conv, points: c.RepresentativePoints(), iso2: make(map[string]int)}
	regions := c.Regions(Adaptive)
	l.bounds = make([]orb.Bound, len(regions))
	for i, r := range regions {
		l.bounds[i] = r.Geometry.Bound()
		if iso := strings.ToUpper(r.ISO2); len(iso) == 2 {
			if _, dup := l.iso2[iso]; !dup {
				l.iso2[iso] = i
			}
		}
	}
	l.kd = geom.NewKDTree(l.points.sites())
	logger.L().Debug("locator_ready", "regions", len(regions), "iso2", len(l.iso2))
	return l
}

func (l *Locator) Catalog() *Catalog         { return l.cat }
func (l *Locator) Converter() *NameConverter { return l.conv }
func (l *Locator) Points() *PointTable       { return l.points }

// IsCodeList：全部名称均为 3 个字符时视为 A3 代码
func IsCodeList(names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if utf8.RuneCountInString(n) != 3 {
			return false
		}
	}
	return true
}

// 文档注释：把节点名称解析为区域与锚点
// 背景：节点名称可能是 A3 代码或自由文本名称；代码走代码索引，名称先经别名表归一化再走名称索引。
// 约束：res 为空视为 adaptive；任一名称无法解析返回 UnknownRegionError，不返回部分结果。
func (l *Locator) Locate(names []string, res Resolution, mode PointMode) ([]Placement, error) {
	if res == "" {
		res = Adaptive
	}
	if !l.cat.Has(res) {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, res)
	}
	codes := IsCodeList(names)
	out := make([]Placement, 0, len(names))
	for _, n := range names {
		var idx int
		var ok bool
		if codes {
			idx, ok = l.cat.LookupCode(res, n)
		} else {
			idx, ok = l.cat.LookupName(res, l.conv.Convert(n))
		}
		if !ok {
			return nil, &UnknownRegionError{Name: n, Resolution: res}
		}
		r, _ := l.cat.Region(res, idx)
		out = append(out, Placement{
			Input:      n,
			Index:      idx,
			Name:       r.Name,
			Code:       r.Code,
			Resolution: res,
			Point:      l.anchor(res, idx, r, mode),
		})
	}
	return out, nil
}

func (l *Locator) anchor(res Resolution, idx int, r Region, mode PointMode) orb.Point {
	if mode == PointsCentroid {
		return geom.Centroid(r.Geometry)
	}
	if res == Adaptive {
		if p, ok := l.points.At(idx); ok {
			return p.Point
		}
	}
	pt, _ := geom.InteriorPoint(r.Geometry)
	return pt
}

// 文档注释：坐标反查所属区域（自适应序列）
// 背景：包围盒过滤 → 多面精确判定；未命中时按代表点最近邻兜底并标记为近似。
// 约束：maxRadiusKm <= 0 关闭兜底；坐标为 WGS84 经纬度。
func (l *Locator) RegionAt(pt orb.Point, maxRadiusKm float64) (Placement, bool, bool) {
	for i, b := range l.bounds {
		if !geom.InBound(pt, b) {
			continue
		}
		r, _ := l.cat.Region(Adaptive, i)
		if geom.Contains(r.Geometry, pt) {
			return l.placement(i, r), false, true
		}
	}
	if maxRadiusKm <= 0 {
		return Placement{}, false, false
	}
	s, d, ok := l.kd.Nearest(pt)
	if !ok || d > maxRadiusKm {
		return Placement{}, false, false
	}
	r, _ := l.cat.Region(Adaptive, s.Index)
	return l.placement(s.Index, r), true, true
}

// ByISO2：按 ISO alpha-2 代码查找自适应区域（首个出现者）
func (l *Locator) ByISO2(code string) (Placement, bool) {
	i, ok := l.iso2[strings.ToUpper(code)]
	if !ok {
		return Placement{}, false
	}
	r, _ := l.cat.Region(Adaptive, i)
	p := l.placement(i, r)
	p.Input = code
	return p, true
}

func (l *Locator) placement(i int, r Region) Placement {
	p, _ := l.points.At(i)
	return Placement{Input: r.Name, Index: i, Name: r.Name, Code: r.Code, Resolution: Adaptive, Point: p.Point}
}
