package runner

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the runner's own metrics so embedders can expose
// them without polluting the default registry.
var Registry = prometheus.NewRegistry()

var (
	commandsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restaking_runner",
		Name:      "command_attempts_total",
		Help:      "Number of external command attempts.",
	})
	commandFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restaking_runner",
		Name:      "command_failures_total",
		Help:      "Number of failed external command attempts.",
	})
	retriesExhaustedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restaking_runner",
		Name:      "retries_exhausted_total",
		Help:      "Number of commands that failed on every retry attempt.",
	})
)

func init() {
	Registry.MustRegister(
		commandsTotal,
		commandFailuresTotal,
		retriesExhaustedTotal,
	)
}
