package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/logger"
	"geo-catalog/internal/metrics"
)

func locateKey(names []string, res catalog.Resolution, mode catalog.PointMode) string {
	return "locate:" + string(res) + ":" + string(mode) + ":" + strings.Join(names, ",")
}

// 文档注释：/locate?names=a,b&resolution=&points=
// 背景：绘图方一次提交整张图的节点名称，返回每个节点的区域索引与锚点；结果可缓存到 Redis。
// 约束：任一名称无法解析返回 404 并带出该名称，不返回部分结果；Redis 读写失败只记录日志，不影响响应。
func (d Deps) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	names := splitNames(q.Get("names"))
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "names is required")
		return
	}
	res, err := catalog.ParseResolution(q.Get("resolution"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := catalog.ParsePointMode(q.Get("points"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	key := locateKey(names, res, mode)
	if out, ok := d.cachedLocate(ctx, key); ok {
		writeJSON(w, http.StatusOK, out)
		return
	}

	ps, err := d.Locator.Locate(names, res, mode)
	if err != nil {
		var ue *catalog.UnknownRegionError
		switch {
		case errors.As(err, &ue):
			metrics.UnresolvedTotal.WithLabelValues("locate").Inc()
			writeJSON(w, http.StatusNotFound, errorResult{Error: err.Error(), Name: ue.Name})
		case errors.Is(err, catalog.ErrNotLoaded):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			logger.L().Error("locate_error", "err", err)
			writeError(w, http.StatusInternalServerError, "locate failed")
		}
		return
	}
	out := make([]placementItem, len(ps))
	for i, p := range ps {
		out[i] = toItem(p, false)
	}
	if d.Redis != nil {
		b, _ := json.Marshal(out)
		if err := d.Redis.Set(ctx, key, string(b), d.LocateCacheTTL).Err(); err != nil {
			logger.L().Debug("locate_cache_set_error", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (d Deps) cachedLocate(ctx context.Context, key string) ([]placementItem, bool) {
	if d.Redis == nil {
		return nil, false
	}
	s, err := d.Redis.Get(ctx, key).Result()
	if err != nil || s == "" {
		metrics.CacheMissesTotal.WithLabelValues("locate").Inc()
		return nil, false
	}
	var out []placementItem
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		metrics.CacheMissesTotal.WithLabelValues("locate").Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.WithLabelValues("locate").Inc()
	return out, true
}
