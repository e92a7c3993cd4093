package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operational counters. Infra clients and feature services increment
// these; the /metrics endpoint exposes them.
var (
	WorkspaceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waxwing_workspace_requests_total",
		Help: "Requests sent to the workspace API, by operation and outcome.",
	}, []string{"operation", "outcome"})

	CoverLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waxwing_cover_lookups_total",
		Help: "Artwork provider lookups, by provider and outcome.",
	}, []string{"provider", "outcome"})

	PositionWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waxwing_position_writes_total",
		Help: "Album position values written back to the workspace.",
	})

	RunsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waxwing_runs_started_total",
		Help: "Sort and cover runs started, by kind.",
	}, []string{"kind"})
)
