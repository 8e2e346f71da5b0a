package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Catalog reads issued against the listing store",
		},
		[]string{"outcome"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "catalog_query_duration_seconds",
			Help: "Duration of catalog reads in seconds",
		},
		[]string{"outcome"},
	)

	CatalogResultsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_results_superseded_total",
			Help: "Catalog results discarded because a newer request was issued",
		},
	)

	BookmarkToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmark_toggles_total",
			Help: "Bookmark toggles by resulting state",
		},
		[]string{"state"},
	)

	BookmarkLocksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookmark_locks_active",
			Help: "Per (user, listing) locks currently held or awaited",
		},
	)

	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Moderation transitions by action and result",
		},
		[]string{"action", "result"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_submissions_total",
			Help: "Wizard submissions by flow and result",
		},
		[]string{"flow", "result"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"},
	)
)
