package catalog

import (
	"fmt"
	"sort"
	"strings"

	"geo-catalog/internal/logger"
	"geo-catalog/internal/metrics"
)

// MergeOrder：人工别名表与数据源扫描别名的合并顺序
type MergeOrder int

const (
	// CuratedFirst：先写入人工别名，再扫描 FORMAL_EN、NAME_EN；冲突时数据源胜出
	CuratedFirst MergeOrder = iota
	// ScannedFirst：先扫描数据源，最后写入人工别名；冲突时人工别名胜出
	ScannedFirst
)

func (o MergeOrder) String() string {
	if o == ScannedFirst {
		return "scanned_first"
	}
	return "curated_first"
}

// ParseMergeOrder：空串为默认 CuratedFirst
func ParseMergeOrder(s string) (MergeOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "curated_first", "curated":
		return CuratedFirst, nil
	case "scanned_first", "scanned":
		return ScannedFirst, nil
	}
	return CuratedFirst, fmt.Errorf("unknown merge order %q", s)
}

// 人工维护的历史名称与拼写变体（FAO/UN 统计口径 → Natural Earth NAME_LONG）
var curatedAliases = map[string]string{
	"Democratic Republic of Korea":       "Dem. Rep. Korea",
	"Iran (Islamic Republic of)":         "Iran",
	"Venezuela (Bolivarian Republic of)": "Venezuela",
	"Bolivia (Plurinational State of)":   "Bolivia",
	"China, Taiwan Province of":          "Taiwan",
	"North Macedonia":                    "Macedonia",
	"China, mainland":                    "China",
	"Serbia and Montenegro":              "Serbia",
	"Sudan (former)":                     "Sudan",
	"Belgium-Luxembourg":                 "Belgium",
	"Ethiopia PDR":                       "Ethiopia",
	"Yugoslav SFR":                       "Serbia",
	"Cabo Verde":                         "Republic of Cabo Verde",
	"Eswatini":                           "eSwatini",
	"Sao Tome and Principe":              "São Tomé and Principe",
	"China, Hong Kong SAR":               "Hong Kong",
	"China, Macao SAR":                   "Macao",
	"Congo":                              "Republic of the Congo",
	"Czechia":                            "Czech Republic",
	"Gambia":                             "The Gambia",
}

// CuratedAliases：返回人工别名表的副本
func CuratedAliases() map[string]string {
	out := make(map[string]string, len(curatedAliases))
	for k, v := range curatedAliases {
		out[k] = v
	}
	return out
}

// NameConverter：别名 → 规范名称；只读
type NameConverter struct {
	m     map[string]string
	order MergeOrder
}

// 文档注释：构建别名归一化表
// 背景：节点名称常来自统计数据（正式名、英文名、历史国名），需归一化为边界数据的规范名称后再查索引。
// 做法：扫描自适应序列的正式名列，再扫描英文名列（后写覆盖先写）；人工别名按 order 放在扫描之前或之后。
// 约束：空值跳过；查不到的名称原样返回，由调用方在索引查找处暴露失败。
func BuildNameConverter(c *Catalog, order MergeOrder) *NameConverter {
	nc := &NameConverter{m: make(map[string]string), order: order}
	if order == CuratedFirst {
		nc.merge(curatedAliases)
	}
	var regions []Region
	if c != nil {
		regions = c.Regions(Adaptive)
	}
	for _, r := range regions {
		if r.Formal != "" {
			nc.m[r.Formal] = r.Name
		}
	}
	for _, r := range regions {
		if r.Alternate != "" {
			nc.m[r.Alternate] = r.Name
		}
	}
	if order == ScannedFirst {
		nc.merge(curatedAliases)
	}
	metrics.NameAliases.Set(float64(len(nc.m)))
	logger.L().Debug("name_converter_ready", "aliases", len(nc.m), "order", order.String())
	return nc
}

func (nc *NameConverter) merge(src map[string]string) {
	for k, v := range src {
		nc.m[k] = v
	}
}

// Convert：已知别名返回规范名称，否则原样返回
func (nc *NameConverter) Convert(s string) string {
	if v, ok := nc.Lookup(s); ok {
		return v
	}
	return s
}

func (nc *NameConverter) Lookup(s string) (string, bool) {
	if nc == nil {
		return "", false
	}
	v, ok := nc.m[s]
	return v, ok
}

func (nc *NameConverter) Len() int {
	if nc == nil {
		return 0
	}
	return len(nc.m)
}

func (nc *NameConverter) Order() MergeOrder { return nc.order }

// Each：按别名字典序遍历，供导出使用
func (nc *NameConverter) Each(fn func(alias, name string)) {
	if nc == nil {
		return
	}
	keys := make([]string, 0, len(nc.m))
	for k := range nc.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k, nc.m[k])
	}
}
