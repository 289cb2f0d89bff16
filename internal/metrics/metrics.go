package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leave_portal"

var (
	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Session guard state transitions by target state.",
	}, []string{"state"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Leave and leave-type mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	staleRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_refreshes_total",
		Help:      "List refresh responses discarded because a newer refresh was issued.",
	})
)

func SessionTransition(state string) {
	sessionTransitions.WithLabelValues(state).Inc()
}

// Mutation records one mutating call. outcome is "ok", "rejected" (client
// validation or gating), "failed" (transport or server) or "abandoned"
// (caller went away mid-call).
func Mutation(operation, outcome string) {
	mutations.WithLabelValues(operation, outcome).Inc()
}

func StaleRefresh() {
	staleRefreshes.Inc()
}
