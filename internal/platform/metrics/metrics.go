package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const metricPrefix = "aed_"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
	HTTPRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricPrefix + "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "searches_total",
		Help: "Location searches by kind",
	}, []string{"kind"})
	ImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "imports_total",
		Help: "Open data imports by result",
	}, []string{"result"})
	ImportedLocations = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: metricPrefix + "imported_locations",
		Help: "Locations written by the last successful import",
	})
	UpsertFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "upsert_failures_total",
		Help: "Location upserts rejected by the store",
	})
	AreaCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "area_cache_hits_total",
		Help: "Area name cache hits",
	})
	AreaCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "area_cache_misses_total",
		Help: "Area name cache misses",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDurationMs)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(ImportsTotal)
	prometheus.MustRegister(ImportedLocations)
	prometheus.MustRegister(UpsertFailuresTotal)
	prometheus.MustRegister(AreaCacheHitsTotal)
	prometheus.MustRegister(AreaCacheMissesTotal)
}

// Counter reports the size of a data set for gauge metrics.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// RegisterLocationCount exposes the number of stored locations, queried on scrape.
func RegisterLocationCount(c Counter) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stored_locations",
			Help: "Installation locations currently stored",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			n, err := c.Count(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("metrics location count failed")
				return 0
			}
			return float64(n)
		},
	))
}

// Handler serves the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
