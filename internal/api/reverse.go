package api

import (
	"net/http"
	"strconv"

	"geo-catalog/internal/geom"
	"geo-catalog/internal/logger"
	"geo-catalog/internal/metrics"

	"github.com/paulmach/orb"
)

const reverseGeohashPrecision = 6

// 文档注释：坐标反查区域
// 背景：热点坐标在短周期内重复出现，进程内缓存以 geohash(6) 为键跳过包围盒过滤与多面判定；
// 未命中任何多面时按代表点最近邻兜底（REVERSE_RADIUS_KM 内）并标记 approx。
// 约束：仅缓存命中结果；geohash 单元跨越国界时按首次查询的结果返回。
func (d Deps) reverse(lat, lon float64) (placementItem, bool) {
	key := geom.Geohash(lat, lon, reverseGeohashPrecision)
	if d.ReverseCache != nil {
		if v, ok := d.ReverseCache.Get(key); ok {
			metrics.CacheHitsTotal.WithLabelValues("reverse").Inc()
			return v, true
		}
		metrics.CacheMissesTotal.WithLabelValues("reverse").Inc()
	}
	p, approx, ok := d.Locator.RegionAt(orb.Point{lon, lat}, d.ReverseRadiusKm)
	if !ok {
		return placementItem{}, false
	}
	item := toItem(p, approx)
	if d.ReverseCache != nil {
		d.ReverseCache.Set(key, item)
	}
	logger.L().Debug("reverse_lookup", "lat", lat, "lon", lon, "name", item.Name, "approx", approx)
	return item, true
}

// /reverse?lat=&lon=
func (d Deps) handleReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "lat/lon must be valid WGS84 coordinates")
		return
	}
	item, ok := d.reverse(lat, lon)
	if !ok {
		metrics.UnresolvedTotal.WithLabelValues("reverse").Inc()
		writeError(w, http.StatusNotFound, "no region at coordinate")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
