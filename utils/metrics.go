package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "dex_welcome"

// Render outcomes.
const (
	RenderSent    = "sent"
	RenderDropped = "dropped"
	RenderFailed  = "failed"
)

// Registry holds every service metric. It is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	commandsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "commands_total",
		Help:      "Administrator commands handled, by verb and outcome.",
	}, []string{"verb", "outcome"})

	rendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "renders_total",
		Help:      "Message renders for delivery, by outcome.",
	}, []string{"outcome"})

	persistenceFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "persistence_failures_total",
		Help:      "Server config saves that failed.",
	})

	eventsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "events_total",
		Help:      "Gateway events received, by type.",
	}, []string{"type"})

	discordReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "discord_reconnects_total",
		Help:      "Gateway session resumes.",
	})
)

func init() {
	Registry.MustRegister(commandsHandled, rendersTotal, persistenceFailures, eventsReceived, discordReconnects)
}

// IncrementCommands counts a handled command.
func IncrementCommands(verb, outcome string) {
	commandsHandled.WithLabelValues(verb, outcome).Inc()
}

// IncrementRenders counts a render by outcome.
func IncrementRenders(outcome string) {
	rendersTotal.WithLabelValues(outcome).Inc()
}

// IncrementPersistenceFailures counts a failed save.
func IncrementPersistenceFailures() {
	persistenceFailures.Inc()
}

// IncrementEvents counts a received gateway event.
func IncrementEvents(eventType string) {
	eventsReceived.WithLabelValues(eventType).Inc()
}

// IncrementReconnects counts a gateway resume.
func IncrementReconnects() {
	discordReconnects.Inc()
}

// GetMetrics sums every metric family across its labels, keyed by family name.
func GetMetrics() map[string]interface{} {
	out := map[string]interface{}{}
	families, err := Registry.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
		out[mf.GetName()] = total
	}
	return out
}
