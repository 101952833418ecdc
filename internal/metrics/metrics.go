package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SearchIndexQueries counts searches answered by the full-text index.
	SearchIndexQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helsejournal",
			Name:      "search_index_queries_total",
			Help:      "Searches served by the full-text index",
		},
	)

	// SearchFallbacks counts searches that fell back to the relational
	// substring match because the index was unreachable. This is the
	// observable boundary between the two search paths.
	SearchFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helsejournal",
			Name:      "search_fallbacks_total",
			Help:      "Searches served by the relational fallback",
		},
	)

	// SearchIndexErrors counts index queries rejected by the index
	// itself (reachable, but the query failed).
	SearchIndexErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helsejournal",
			Name:      "search_index_errors_total",
			Help:      "Index queries that failed with a non-availability error",
		},
	)

	// IndexWriteFailures counts fire-and-forget index writes that did
	// not complete; affected documents stay reachable via the tree but
	// unsearchable by content until reindexed.
	IndexWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helsejournal",
			Name:      "index_write_failures_total",
			Help:      "Search index writes that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(SearchIndexQueries)
	prometheus.MustRegister(SearchFallbacks)
	prometheus.MustRegister(SearchIndexErrors)
	prometheus.MustRegister(IndexWriteFailures)
}
