package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for report building
// and the forecast provider.
type Metrics struct {
	ReportsTotal     *prometheus.CounterVec // labels: outcome={built,event_not_found,...}
	ReportDuration   prometheus.Histogram
	ReportsPublished prometheus.Counter

	// Forecast provider metrics.
	ForecastRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ForecastAPIDuration prometheus.Histogram
	ForecastCache       *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_risk",
			Name:      "reports_total",
			Help:      "Report requests by outcome.",
		}, []string{"outcome"}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_risk",
			Name:      "report_duration_seconds",
			Help:      "Duration of a successful report build, including external calls.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_risk",
			Name:      "reports_published_total",
			Help:      "Total reports written to the report topic.",
		}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_risk",
			Name:      "forecast_requests_total",
			Help:      "AEMET forecast fetches by outcome.",
		}, []string{"outcome"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_risk",
			Name:      "forecast_api_duration_seconds",
			Help:      "AEMET forecast fetch duration in seconds, both request steps.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_risk",
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.ReportsTotal,
		m.ReportDuration,
		m.ReportsPublished,
		m.ForecastRequests,
		m.ForecastAPIDuration,
		m.ForecastCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_risk", Name: "reports_total"}, []string{"outcome"}),
		ReportDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_risk", Name: "report_duration_seconds"}),
		ReportsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_risk", Name: "reports_published_total"}),
		ForecastRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_risk", Name: "forecast_requests_total"}, []string{"outcome"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_risk", Name: "forecast_api_duration_seconds"}),
		ForecastCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_risk", Name: "forecast_cache_total"}, []string{"result"}),
	}
}
