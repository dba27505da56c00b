package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	SelectRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crashmap_select_requests_total",
		Help: "Total number of region selection requests",
	})
	InvalidShapesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_invalid_shapes_total",
		Help: "Total number of drawn shapes rejected, by reason",
	}, []string{"reason"})
	SelectedRecords = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crashmap_selected_records",
		Help:    "Number of records inside the drawn region",
		Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
	})
	FilterDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crashmap_filter_duration_ms",
		Help:    "Region filter duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	SelectionStoreErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crashmap_selection_store_errors_total",
		Help: "Selection store failures by operation",
	}, []string{"op"})
	DatasetRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crashmap_dataset_records",
		Help: "Number of crash records currently loaded",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(SelectRequestsTotal)
	prometheus.MustRegister(InvalidShapesTotal)
	prometheus.MustRegister(SelectedRecords)
	prometheus.MustRegister(FilterDurationMs)
	prometheus.MustRegister(SelectionStoreErrorsTotal)
	prometheus.MustRegister(DatasetRecords)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标，由主入口挂载到 {API_BASE}/metrics。
func Handler() http.Handler { return promhttp.Handler() }
