package api

import "geo-catalog/internal/catalog"

// 文档注释：对外返回结构
// 背景：统一对外序列化模型，仅包含绘图方需要的字段；/locate 与 /reverse 的缓存直接存放这些结构。
// 约束：字段稳定；新增字段需评估缓存兼容性。
type resolveResult struct {
	Input string `json:"input"`
	Name  string `json:"name"`
	Known bool   `json:"known"`
}

type regionItem struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

type placementItem struct {
	Input      string  `json:"input"`
	Name       string  `json:"name"`
	Index      int     `json:"index"`
	Code       string  `json:"code"`
	Resolution string  `json:"resolution"`
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	Approx     bool    `json:"approx,omitempty"`
}

type errorResult struct {
	Error string `json:"error"`
	Name  string `json:"name,omitempty"`
}

func toItem(p catalog.Placement, approx bool) placementItem {
	return placementItem{
		Input:      p.Input,
		Name:       p.Name,
		Index:      p.Index,
		Code:       p.Code,
		Resolution: string(p.Resolution),
		Lon:        p.Point.Lon(),
		Lat:        p.Point.Lat(),
		Approx:     approx,
	}
}
