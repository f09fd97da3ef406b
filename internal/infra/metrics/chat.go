package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		exchangesTotal,
		revealRunsTotal,
		persistOutcomes,
		turnsPruned,
	)
}

var (
	exchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_exchanges_total",
			Help: "Completed exchanges by outcome (ok, advisory, provider_error).",
		},
		[]string{"outcome"},
	)

	revealRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_reveal_runs_total",
			Help: "Reveal runs by completion kind (finished, cancelled).",
		},
		[]string{"kind"},
	)

	persistOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_persist_outcomes_total",
			Help: "Remote/local persistence sink outcomes.",
		},
		[]string{"sink", "success"},
	)

	turnsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_turns_pruned_total",
			Help: "Turns removed by the retention worker.",
		},
	)
)

func IncExchange(outcome string) {
	exchangesTotal.WithLabelValues(outcome).Inc()
}

func IncRevealRun(cancelled bool) {
	kind := "finished"
	if cancelled {
		kind = "cancelled"
	}
	revealRunsTotal.WithLabelValues(kind).Inc()
}

func IncPersist(sink string, success bool) {
	s := "true"
	if !success {
		s = "false"
	}
	persistOutcomes.WithLabelValues(sink, s).Inc()
}

func AddTurnsPruned(n int64) {
	turnsPruned.Add(float64(n))
}
