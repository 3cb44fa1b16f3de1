package spreadsheet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cellUpdatesTotal counts committed cell updates by the kind of the new
	// contents
	cellUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spreadsheet_cell_updates_total",
		Help: "Total committed cell updates by contents kind",
	}, []string{"kind"})

	// recalculatedCells tracks how many cells each update touched,
	// including the changed cell
	recalculatedCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spreadsheet_recalculated_cells",
		Help:    "Number of cells recalculated per update",
		Buckets: []float64{1, 2, 5, 10, 100, 1000, 10000},
	})

	// circularRejectionsTotal counts formula assignments rolled back
	// because they closed a cycle
	circularRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadsheet_circular_rejections_total",
		Help: "Total formula assignments rejected as circular",
	})

	// formulaFormatErrorsTotal counts formula text that failed to parse
	formulaFormatErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadsheet_formula_format_errors_total",
		Help: "Total formula assignments rejected as malformed",
	})
)
