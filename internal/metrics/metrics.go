package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_resolutions_total",
			Help: "Record resolutions by group, operation and outcome",
		},
		[]string{"group", "operation", "outcome"},
	)

	RecordWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_record_writes_total",
			Help: "Committed writes by record kind",
		},
		[]string{"kind"},
	)

	ContractUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_contract_uploads_total",
			Help: "Contract files stored, by result",
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_cache_lookups_total",
			Help: "Global settings cache lookups, by result",
		},
		[]string{"result"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settings_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// Handler exposes the default registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
