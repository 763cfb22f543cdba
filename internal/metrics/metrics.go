// Package metrics holds the Prometheus collectors for playlist refreshes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons for EntriesSkipped.
const (
	ReasonMalformed = "malformed"
	ReasonOrphan    = "orphan"
	ReasonDuplicate = "duplicate"
)

// Metrics records refresh outcomes.
type Metrics struct {
	registry *prometheus.Registry

	CategoriesCreated prometheus.Counter
	ChannelsCreated   prometheus.Counter
	EntriesSkipped    *prometheus.CounterVec
	FetchFailures     prometheus.Counter
	LastRefresh       prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CategoriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xtreamvault_categories_created_total",
			Help: "Categories inserted by playlist parse passes.",
		}),
		ChannelsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xtreamvault_channels_created_total",
			Help: "Channels inserted by playlist parse passes.",
		}),
		EntriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xtreamvault_entries_skipped_total",
			Help: "Playlist entries not inserted, by reason.",
		}, []string{"reason"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xtreamvault_fetch_failures_total",
			Help: "Playlist downloads that failed.",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xtreamvault_last_refresh_timestamp_seconds",
			Help: "Unix time of the last completed parse pass.",
		}),
	}
	m.registry.MustRegister(m.CategoriesCreated, m.ChannelsCreated, m.EntriesSkipped, m.FetchFailures, m.LastRefresh)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
