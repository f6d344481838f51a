// 包 catalog：多比例尺行政边界目录
// 负责按比例尺建立名称索引、跨比例尺去重的自适应序列、别名归一化表与区域代表点。
// 构建完成后只读，可在任意数量的并发读者之间共享，无需额外同步。
package catalog

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Resolution：数据集比例尺标签
type Resolution string

const (
	Res110m  Resolution = "110m"
	Res50m   Resolution = "50m"
	Res10m   Resolution = "10m"
	Adaptive Resolution = "adaptive"
)

// 合并优先级：粗 → 细
var priority = []Resolution{Res110m, Res50m, Res10m}

// Priority：返回可加载的比例尺（按合并优先级）
func Priority() []Resolution { return append([]Resolution(nil), priority...) }

func (r Resolution) rank() int {
	for i, p := range priority {
		if p == r {
			return i
		}
	}
	return -1
}

// ParseResolution：解析比例尺标签，空串视为 adaptive
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return Adaptive, nil
	case Res110m, Res50m, Res10m, Adaptive:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResolution, s)
}

// Region：一个行政单元；加载后不可变，Geometry 与目录共享，调用方不得修改
type Region struct {
	Name       string
	Code       string
	ISO2       string
	Formal     string
	Alternate  string
	Geometry   orb.MultiPolygon
	Resolution Resolution
	Row        int
}

// Dataset：某一比例尺下按数据源顺序排列的区域
type Dataset struct {
	Resolution Resolution
	Regions    []Region
}
