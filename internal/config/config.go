// 包 config：集中读取环境变量配置（支持 .env），为各入口提供统一默认值
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/source"

	"github.com/joho/godotenv"
)

// Config：服务与命令行工具共用的配置
type Config struct {
	Sources          map[catalog.Resolution]string
	Fields           source.Fields
	MergeOrder       catalog.MergeOrder
	Addr             string
	APIBase          string
	ReverseRadiusKm  float64
	ReverseCacheSize int
	ReverseCacheTTL  time.Duration
	LocateCacheTTL   time.Duration
	GeoIPPath        string
}

// LoadEnvFiles：加载 .env 与 data/env/.env，文件不存在时忽略
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// 文档注释：从环境变量构建配置
// 背景：边界文件默认位于 CATALOG_DIR 下，沿用 Natural Earth 的文件名；显式配置的路径优先。
func Load() (*Config, error) {
	order, err := catalog.ParseMergeOrder(os.Getenv("NAME_MERGE_ORDER"))
	if err != nil {
		return nil, err
	}
	sources, err := Sources()
	if err != nil {
		return nil, err
	}
	c := &Config{
		Sources:          sources,
		MergeOrder:       order,
		Addr:             getenv("ADDR", ":8080"),
		APIBase:          getenv("API_BASE", "/api"),
		ReverseRadiusKm:  getFloat("REVERSE_RADIUS_KM", 50),
		ReverseCacheSize: getInt("REVERSE_CACHE_SIZE", 4096),
		ReverseCacheTTL:  time.Duration(getInt("REVERSE_CACHE_TTL_S", 3600)) * time.Second,
		LocateCacheTTL:   time.Duration(getInt("LOCATE_CACHE_TTL_S", 3600)) * time.Second,
		GeoIPPath:        os.Getenv("GEOIP_PATH"),
		Fields: source.Fields{
			Name:      os.Getenv("CATALOG_FIELD_NAME"),
			Code:      os.Getenv("CATALOG_FIELD_CODE"),
			ISO2:      os.Getenv("CATALOG_FIELD_ISO2"),
			ISO2Alt:   os.Getenv("CATALOG_FIELD_ISO2_ALT"),
			Formal:    os.Getenv("CATALOG_FIELD_FORMAL"),
			Alternate: os.Getenv("CATALOG_FIELD_ALTERNATE"),
		},
	}
	return c, nil
}

// 文档注释：各比例尺边界文件路径
// 背景：默认加载全部三个比例尺；CATALOG_RESOLUTIONS（逗号分隔）可显式只加载其中一部分。
// 约束：默认路径无论文件是否存在都会纳入，缺失文件由目录加载阶段报 SourceLoadError，不会被静默跳过。
func Sources() (map[catalog.Resolution]string, error) {
	wanted := catalog.Priority()
	if s := strings.TrimSpace(os.Getenv("CATALOG_RESOLUTIONS")); s != "" {
		wanted = wanted[:0]
		for _, p := range strings.Split(s, ",") {
			res, err := catalog.ParseResolution(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			if res == catalog.Adaptive {
				return nil, fmt.Errorf("CATALOG_RESOLUTIONS: %q is not a source resolution", p)
			}
			wanted = append(wanted, res)
		}
	}
	dir := getenv("CATALOG_DIR", filepath.Join("data", "world_maps"))
	out := make(map[catalog.Resolution]string, len(wanted))
	for _, res := range wanted {
		key := "CATALOG_" + strings.ToUpper(string(res))
		if p := os.Getenv(key); p != "" {
			out[res] = p
			continue
		}
		out[res] = filepath.Join(dir, "ne_"+string(res)+"_admin_0_countries.shp")
	}
	return out, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			return n
		}
	}
	return def
}

func getFloat(k string, def float64) float64 {
	if s := os.Getenv(k); s != "" {
		if f, e := strconv.ParseFloat(s, 64); e == nil && f >= 0 {
			return f
		}
	}
	return def
}
