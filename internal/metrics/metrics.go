package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogBuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocatalog_builds_total",
		Help: "Catalog build attempts by outcome",
	}, []string{"outcome"})
	CatalogBuildDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geocatalog_build_duration_ms",
		Help:    "Catalog build duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	CatalogRegions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geocatalog_regions",
		Help: "Number of regions per resolution (including adaptive)",
	}, []string{"resolution"})
	NameAliases = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geocatalog_name_aliases",
		Help: "Number of entries in the name converter",
	})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocatalog_requests_total",
		Help: "Total API requests by endpoint",
	}, []string{"endpoint"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocatalog_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	UnresolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocatalog_unresolved_total",
		Help: "Lookups that did not resolve to a region",
	}, []string{"endpoint"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocatalog_cache_hits_total",
		Help: "Cache hits by cache",
	}, []string{"cache"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocatalog_cache_misses_total",
		Help: "Cache misses by cache",
	}, []string{"cache"})
)

func init() {
	prometheus.MustRegister(CatalogBuildsTotal)
	prometheus.MustRegister(CatalogBuildDurationMs)
	prometheus.MustRegister(CatalogRegions)
	prometheus.MustRegister(NameAliases)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(UnresolvedTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
