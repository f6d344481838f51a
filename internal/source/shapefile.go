package source

import (
	"strings"

	"geo-catalog/internal/geom"
	"geo-catalog/internal/logger"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// 文档注释：读取 ESRI Shapefile（.shp + .dbf）
// 背景：Natural Earth 以 shapefile 发布各比例尺国家边界；几何部件需按环方向组装为多面。
// 约束：列名大小写不敏感；可选列缺失时对应字段为空；Null 几何与非面几何视为不合法。
func ReadShapefile(path string, fields Fields) ([]Record, error) {
	fields = fields.withDefaults()
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols := make(map[string]int)
	for i, f := range r.Fields() {
		cols[strings.ToUpper(cleanValue(f.String()))] = i
	}
	col := func(name string) int {
		if i, ok := cols[strings.ToUpper(name)]; ok {
			return i
		}
		return -1
	}
	nameIdx, codeIdx := col(fields.Name), col(fields.Code)
	if nameIdx < 0 {
		return nil, &FieldError{Field: fields.Name}
	}
	if codeIdx < 0 {
		return nil, &FieldError{Field: fields.Code}
	}
	isoIdx, isoAltIdx := col(fields.ISO2), col(fields.ISO2Alt)
	formalIdx, altIdx := col(fields.Formal), col(fields.Alternate)
	attr := func(n, idx int) string {
		if idx < 0 {
			return ""
		}
		return cleanValue(r.ReadAttribute(n, idx))
	}

	var out []Record
	for r.Next() {
		n, shape := r.Shape()
		rec := Record{
			Row:       n,
			Name:      attr(n, nameIdx),
			Code:      attr(n, codeIdx),
			ISO2:      pickISO2(attr(n, isoIdx), attr(n, isoAltIdx)),
			Formal:    attr(n, formalIdx),
			Alternate: attr(n, altIdx),
		}
		if rec.Name == "" {
			return nil, &RowError{Row: n, Field: fields.Name, Err: ErrEmptyValue}
		}
		mp, err := shapeGeometry(shape)
		if err != nil {
			return nil, &RowError{Row: n, Field: "geometry", Err: err}
		}
		rec.Geometry = mp
		out = append(out, rec)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("shapefile_read", "path", path, "rows", len(out))
	return out, nil
}

func shapeGeometry(s shp.Shape) (orb.MultiPolygon, error) {
	switch p := s.(type) {
	case *shp.Polygon:
		return geom.Assemble(splitParts(p.Parts, p.Points))
	case *shp.PolygonZ:
		return geom.Assemble(splitParts(p.Parts, p.Points))
	case *shp.PolygonM:
		return geom.Assemble(splitParts(p.Parts, p.Points))
	default:
		return nil, ErrNotPolygonal
	}
}

// splitParts：按部件起始下标切分点序列为环
func splitParts(parts []int32, pts []shp.Point) []orb.Ring {
	rings := make([]orb.Ring, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range pts[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}
