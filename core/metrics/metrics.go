// Package metrics provides Prometheus metrics for the catalog server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dirsync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dirsync_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	catalogFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dirsync_catalog_files",
			Help: "Number of records in the catalog index",
		},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dirsync_scan_duration_seconds",
			Help:    "Time to scan the published directory",
			Buckets: prometheus.DefBuckets,
		},
	)

	scanWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dirsync_scan_warnings_total",
			Help: "Entries skipped during scans because of errors",
		},
	)

	listQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dirsync_list_queries_total",
			Help: "Catalog listing queries by refresh mode",
		},
		[]string{"refresh"},
	)

	tombstones = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dirsync_tombstones_total",
			Help: "Records marked deleted during refresh",
		},
	)
)

// Middleware records request counts and latencies by route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RecordScan records a completed scan.
func RecordScan(d time.Duration, files, warnings int) {
	scanDuration.Observe(d.Seconds())
	catalogFiles.Set(float64(files))
	scanWarnings.Add(float64(warnings))
}

// RecordList records a listing query and the tombstones it produced.
func RecordList(refresh bool, newTombstones int) {
	listQueries.WithLabelValues(strconv.FormatBool(refresh)).Inc()
	if newTombstones > 0 {
		tombstones.Add(float64(newTombstones))
	}
}
