// 包 source：读取行政边界数据源（ESRI Shapefile / GeoJSON），输出统一的区域记录
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported boundary source format")
	ErrEmptyValue        = errors.New("empty value")
	ErrNotPolygonal      = errors.New("geometry is not a polygon or multipolygon")
)

// Fields：属性列名映射，默认采用 Natural Earth 的列名
type Fields struct {
	Name      string
	Code      string
	ISO2      string
	ISO2Alt   string
	Formal    string
	Alternate string
}

func DefaultFields() Fields {
	return Fields{
		Name:      "NAME_LONG",
		Code:      "SU_A3",
		ISO2:      "ISO_A2",
		ISO2Alt:   "ISO_A2_EH",
		Formal:    "FORMAL_EN",
		Alternate: "NAME_EN",
	}
}

// withDefaults：未配置的列名回退到默认值
func (f Fields) withDefaults() Fields {
	d := DefaultFields()
	if f.Name == "" {
		f.Name = d.Name
	}
	if f.Code == "" {
		f.Code = d.Code
	}
	if f.ISO2 == "" {
		f.ISO2 = d.ISO2
	}
	if f.ISO2Alt == "" {
		f.ISO2Alt = d.ISO2Alt
	}
	if f.Formal == "" {
		f.Formal = d.Formal
	}
	if f.Alternate == "" {
		f.Alternate = d.Alternate
	}
	return f
}

// Record：数据源中的一行（一个行政单元）
type Record struct {
	Row       int
	Name      string
	Code      string
	ISO2      string
	Formal    string
	Alternate string
	Geometry  orb.MultiPolygon
}

// FieldError：整个数据源缺少必需列
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return fmt.Sprintf("missing required field %q", e.Field) }

// RowError：某一行的值或几何不合法
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d field %q: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// 文档注释：按扩展名选择读取器
// 背景：.shp 需要同名 .dbf 属性表；.geojson/.json 需为 FeatureCollection。
// 约束：记录按数据源原始顺序返回，Row 从 0 开始；任一行不合法即整体失败。
func Read(path string, fields Fields) ([]Record, error) {
	fields = fields.withDefaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadShapefile(path, fields)
	case ".geojson", ".json":
		return ReadGeoJSON(path, fields)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// pickISO2：主列不是两位字母代码（Natural Earth 对法国、挪威写 "-99"）时改用备用列
func pickISO2(primary, alt string) string {
	if isAlpha2(primary) {
		return primary
	}
	if isAlpha2(alt) {
		return alt
	}
	return primary
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
