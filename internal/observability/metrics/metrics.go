// Package metrics exposes the ingestion pipeline's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics counts pipeline activity: fetches, reconcile outcomes, auth churn.
type Metrics struct {
	DataframesFetched   *prometheus.CounterVec
	RatingsInserted     *prometheus.CounterVec
	RatingsDeduplicated *prometheus.CounterVec
	MalformedEntries    *prometheus.CounterVec
	TokenRefreshes      *prometheus.CounterVec
	FetchFailures       *prometheus.CounterVec
	AuthFailures        *prometheus.CounterVec
}

func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	return registry
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		DataframesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_dataframes_fetched_total",
			Help: "Dataframes returned by the rating service per cloud.",
		}, []string{"cloud"}),
		RatingsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_ratings_inserted_total",
			Help: "Rating rows inserted by the reconciliation engine.",
		}, []string{"cloud"}),
		RatingsDeduplicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_ratings_deduplicated_total",
			Help: "Rating entries skipped because the dedup tuple already exists.",
		}, []string{"cloud"}),
		MalformedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_malformed_entries_total",
			Help: "Dataframe resource entries skipped as malformed.",
		}, []string{"cloud"}),
		TokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_token_refreshes_total",
			Help: "Identity authentication round-trips per cloud.",
		}, []string{"cloud"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_fetch_failures_total",
			Help: "Failed dataframe fetches per cloud.",
		}, []string{"cloud"}),
		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratewatch_auth_failures_total",
			Help: "Failed identity authentications per cloud.",
		}, []string{"cloud"}),
	}

	registry.MustRegister(
		m.DataframesFetched,
		m.RatingsInserted,
		m.RatingsDeduplicated,
		m.MalformedEntries,
		m.TokenRefreshes,
		m.FetchFailures,
		m.AuthFailures,
	)

	return m
}

// Module provides the registry and the pipeline instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(NewRegistry),
	fx.Provide(New),
)
