package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counties_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "counties_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	SearchQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counties_search_queries_total",
		Help: "Total search queries by filter",
	}, []string{"filter"})
	SearchSupersededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counties_search_superseded_total",
		Help: "Total search queries cancelled by a newer query",
	})
	SearchIndexedItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "counties_search_indexed_items",
		Help: "Number of items written by the last indexing run",
	})
	HistoryWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counties_history_writes_total",
		Help: "History file writes by status",
	}, []string{"status"})
	FavouritesWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counties_favourites_writes_total",
		Help: "Favourites store writes by operation",
	}, []string{"op"})
	FavouritesExternalChangesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counties_favourites_external_changes_total",
		Help: "Favourites changes received from other devices",
	})
	NearbyCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counties_nearby_cache_hits_total",
		Help: "Total nearby cache hits (memory or redis)",
	})
	NearbyCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counties_nearby_cache_misses_total",
		Help: "Total nearby cache misses",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "counties_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchSupersededTotal)
	prometheus.MustRegister(SearchIndexedItems)
	prometheus.MustRegister(HistoryWritesTotal)
	prometheus.MustRegister(FavouritesWritesTotal)
	prometheus.MustRegister(FavouritesExternalChangesTotal)
	prometheus.MustRegister(NearbyCacheHitsTotal)
	prometheus.MustRegister(NearbyCacheMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标，挂载在 <API_BASE>/metrics。
func Handler() http.Handler { return promhttp.Handler() }
