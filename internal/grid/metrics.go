package grid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels are bounded; window ids never become label values.
var (
	assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridstart_assignments_total",
		Help: "Assign calls by outcome",
	}, []string{"result"}) // "placed", "existing", "skipped", "failed", "none"

	evictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridstart_evictions_total",
		Help: "Cells freed by reason",
	}, []string{"reason"}) // "timeout", "oldest", "destroyed", "stale"

	syncCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridstart_sync_corrections_total",
		Help: "Cell table and index repairs made by the sync pass",
	})

	occupiedCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gridstart_occupied_cells",
		Help: "Currently occupied grid cells",
	})
)
