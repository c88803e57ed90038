package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

var (
	// ticksTotal counts ticks per machine.
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_ticks_total",
		Help: "Total number of ticks by machine",
	}, []string{"machine"})

	// transitionsTotal counts fired transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transitions_total",
		Help: "Total number of fired transitions by machine, from_state and to_state",
	}, []string{"machine", "from_state", "to_state"})

	// resetsTotal counts machine resets.
	resetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_resets_total",
		Help: "Total number of machine resets by machine",
	}, []string{"machine"})

	// buildsTotal counts Build calls by outcome.
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_builds_total",
		Help: "Total number of machine builds by outcome (success or error)",
	}, []string{"outcome"})
)

func recordTransition(machine, from, to string) {
	transitionsTotal.WithLabelValues(sanitizeMachine(machine), from, to).Inc()
}

func recordBuild(err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}

	buildsTotal.WithLabelValues(outcome).Inc()
}

func sanitizeMachine(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}
