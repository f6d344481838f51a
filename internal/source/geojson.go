package source

import (
	"fmt"
	"os"

	"geo-catalog/internal/geom"
	"geo-catalog/internal/logger"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 文档注释：读取 GeoJSON FeatureCollection
// 背景：部分边界数据（geoBoundaries、自建简化边界）以 GeoJSON 发布；外环/洞结构由格式本身给出，只做合法性校验。
// 约束：名称列在所有要素中都不存在时视为缺列；属性值非字符串时按文本格式化，null 视为空。
func ReadGeoJSON(path string, fields Fields) ([]Record, error) {
	fields = fields.withDefaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !anyHas(fc, fields.Name) {
		return nil, &FieldError{Field: fields.Name}
	}
	if !anyHas(fc, fields.Code) {
		return nil, &FieldError{Field: fields.Code}
	}
	out := make([]Record, 0, len(fc.Features))
	for i, f := range fc.Features {
		rec := Record{
			Row:       i,
			Name:      prop(f.Properties, fields.Name),
			Code:      prop(f.Properties, fields.Code),
			ISO2:      pickISO2(prop(f.Properties, fields.ISO2), prop(f.Properties, fields.ISO2Alt)),
			Formal:    prop(f.Properties, fields.Formal),
			Alternate: prop(f.Properties, fields.Alternate),
		}
		if rec.Name == "" {
			return nil, &RowError{Row: i, Field: fields.Name, Err: ErrEmptyValue}
		}
		var mp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			return nil, &RowError{Row: i, Field: "geometry", Err: ErrNotPolygonal}
		}
		if err := geom.Validate(mp); err != nil {
			return nil, &RowError{Row: i, Field: "geometry", Err: err}
		}
		rec.Geometry = mp
		out = append(out, rec)
	}
	logger.L().Debug("geojson_read", "path", path, "rows", len(out))
	return out, nil
}

func anyHas(fc *geojson.FeatureCollection, key string) bool {
	for _, f := range fc.Features {
		if _, ok := f.Properties[key]; ok {
			return true
		}
	}
	return false
}

func prop(p geojson.Properties, key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return cleanValue(s)
	}
	return cleanValue(fmt.Sprint(v))
}
