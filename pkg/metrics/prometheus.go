package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all prometheus metrics of a scrape run
type Metrics struct {
	RowsParsed       *prometheus.CounterVec
	RowsSkipped      *prometheus.CounterVec
	FlightsInserted  prometheus.Counter
	UpdatesMatched   prometheus.Counter
	UpdatesUnmatched prometheus.Counter
	RunDuration      prometheus.Histogram
	LastSuccess      prometheus.Gauge
	ErrorsCount      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the run metrics on a fresh registry so a run can push exactly its own series
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		RowsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_parsed_total",
			Help:      "The total number of board rows normalized into flight records",
		}, []string{"board"}),
		RowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "The total number of board rows dropped as malformed",
		}, []string{"board"}),
		FlightsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_inserted_total",
			Help:      "The total number of flight documents inserted",
		}),
		UpdatesMatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_matched_total",
			Help:      "The total number of delayed flights matched to a stored record",
		}),
		UpdatesUnmatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_unmatched_total",
			Help:      "The total number of delayed flights with no stored record",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time taken by a scrape run",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that completed",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		gatherer: registry,
	}
}

// Push sends the run's series to a Pushgateway under the given job name
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(m.gatherer).PushContext(ctx)
}
