package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var (
	ErrEmptyGeometry = errors.New("geometry has no rings")
	ErrOpenRing      = errors.New("ring is not closed")
	ErrShortRing     = errors.New("ring has fewer than 4 points")
	ErrBadCoordinate = errors.New("coordinate is not finite")
)

// 文档注释：将 shapefile 的部件环组装为多面
// 背景：ESRI 约定外环顺时针、洞逆时针，且部件顺序不保证洞紧随其外环；按包含关系把洞挂到外环上。
// 约束：找不到包含外环的洞按最后一个外环处理；全部为逆时针（部分数据源反向绘制）时视为各自独立的外环。
func Assemble(parts []orb.Ring) (orb.MultiPolygon, error) {
	var shells []orb.Polygon
	var holes []orb.Ring
	for _, r := range parts {
		if err := validateRing(r); err != nil {
			return nil, err
		}
		if signedArea(r) <= 0 {
			shells = append(shells, orb.Polygon{r})
		} else {
			holes = append(holes, r)
		}
	}
	if len(shells) == 0 {
		if len(holes) == 0 {
			return nil, ErrEmptyGeometry
		}
		mp := make(orb.MultiPolygon, 0, len(holes))
		for _, h := range holes {
			mp = append(mp, orb.Polygon{h})
		}
		return mp, nil
	}
	for _, h := range holes {
		owner := len(shells) - 1
		for i := range shells {
			if InBound(h[0], shells[i][0].Bound()) && ringContains(h[0], shells[i][0]) {
				owner = i
				break
			}
		}
		shells[owner] = append(shells[owner], h)
	}
	return orb.MultiPolygon(shells), nil
}

// Validate：校验多面中每个环闭合、点数足够且坐标有限
func Validate(mp orb.MultiPolygon) error {
	if len(mp) == 0 {
		return ErrEmptyGeometry
	}
	for i, poly := range mp {
		if len(poly) == 0 {
			return fmt.Errorf("polygon %d: %w", i, ErrEmptyGeometry)
		}
		for j, r := range poly {
			if err := validateRing(r); err != nil {
				return fmt.Errorf("polygon %d ring %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func validateRing(r orb.Ring) error {
	if len(r) < 4 {
		return ErrShortRing
	}
	for _, p := range r {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return ErrBadCoordinate
		}
	}
	if !r.Closed() {
		return ErrOpenRing
	}
	return nil
}

// 鞋带公式：逆时针为正
func signedArea(r orb.Ring) float64 {
	a := 0.0
	for i := 0; i < len(r)-1; i++ {
		a += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	return a / 2
}
