package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func metricValue(t *testing.T, name string) float64 {
	t.Helper()
	v, _ := GetMetrics()[name].(float64)
	return v
}

func TestGetMetrics_SumsAcrossLabels(t *testing.T) {
	before := metricValue(t, "dex_welcome_commands_total")

	IncrementCommands("init", "ok")
	IncrementCommands("setmessage", "usage")

	assert.Equal(t, before+2, metricValue(t, "dex_welcome_commands_total"))
}

func TestIncrementRendersAndFailures(t *testing.T) {
	renders := metricValue(t, "dex_welcome_renders_total")
	failures := metricValue(t, "dex_welcome_persistence_failures_total")

	IncrementRenders(RenderDropped)
	IncrementPersistenceFailures()

	assert.Equal(t, renders+1, metricValue(t, "dex_welcome_renders_total"))
	assert.Equal(t, failures+1, metricValue(t, "dex_welcome_persistence_failures_total"))
}
