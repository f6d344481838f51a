// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"geo-catalog/internal/cache"
	"geo-catalog/internal/catalog"
	"geo-catalog/internal/geoip"
	"geo-catalog/internal/logger"
	"geo-catalog/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// IPResolver：IP → 区域（由 internal/geoip 实现）
type IPResolver interface {
	Lookup(ip string) (catalog.Placement, error)
}

// Deps：路由依赖；Redis、反查缓存与 GeoIP 均可为空
type Deps struct {
	Locator         *catalog.Locator
	Redis           *redis.Client
	ReverseCache    *cache.LRU[placementItem]
	GeoIP           IPResolver
	ReverseRadiusKm float64
	LocateCacheTTL  time.Duration
}

// NewReverseCache：/reverse 使用的进程内缓存
func NewReverseCache(size int, ttl time.Duration) *cache.LRU[placementItem] {
	return cache.NewLRU[placementItem](size, ttl)
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	apiMux := http.NewServeMux()
	apiMux.Handle("/resolve", instrument("resolve", d.handleResolve))
	apiMux.Handle("/regions", instrument("regions", d.handleRegions))
	apiMux.Handle("/locate", instrument("locate", d.handleLocate))
	apiMux.Handle("/reverse", instrument("reverse", d.handleReverse))
	apiMux.Handle("/geoip", instrument("geoip", d.handleGeoIP))
	return apiMux
}

func instrument(endpoint string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
		fn(w, r)
		metrics.RequestDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(t).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResult{Error: msg})
}

// /resolve?name=：别名归一化；未知名称原样返回并标记 known=false
func (d Deps) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	canon, known := d.Locator.Converter().Lookup(name)
	if !known {
		canon = name
	}
	writeJSON(w, http.StatusOK, resolveResult{Input: name, Name: canon, Known: known})
}

// /regions?resolution=：按序列顺序列出区域
func (d Deps) handleRegions(w http.ResponseWriter, r *http.Request) {
	res, err := catalog.ParseResolution(r.URL.Query().Get("resolution"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cat := d.Locator.Catalog()
	if !cat.Has(res) {
		writeError(w, http.StatusNotFound, "resolution not loaded: "+string(res))
		return
	}
	regions := cat.Regions(res)
	out := make([]regionItem, len(regions))
	for i, g := range regions {
		out[i] = regionItem{Index: i, Name: g.Name, Code: g.Code}
	}
	writeJSON(w, http.StatusOK, out)
}

// /geoip?ip=：未配置 GeoIP 数据库时整体返回 404
func (d Deps) handleGeoIP(w http.ResponseWriter, r *http.Request) {
	if d.GeoIP == nil {
		writeError(w, http.StatusNotFound, "geoip disabled")
		return
	}
	ip := getClientIP(r)
	p, err := d.GeoIP.Lookup(ip)
	if err != nil {
		var ue *catalog.UnknownRegionError
		switch {
		case errors.Is(err, geoip.ErrBadIP):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &ue), errors.Is(err, geoip.ErrNoCountry):
			metrics.UnresolvedTotal.WithLabelValues("geoip").Inc()
			writeJSON(w, http.StatusNotFound, errorResult{Error: err.Error(), Name: ip})
		default:
			logger.L().Error("geoip_lookup_error", "ip", ip, "err", err)
			writeError(w, http.StatusInternalServerError, "lookup failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, toItem(p, false))
}
