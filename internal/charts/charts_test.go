// internal/charts/charts_test.go

package charts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWorkingLevel(t *testing.T) {
	traces := NewTraces(5)

	traces.AddWorkingLevel(1.30000, 2)

	require.Len(t, traces.WorkingLevels, 1)

	trace := traces.WorkingLevels[0]
	require.Len(t, trace, 5)

	assert.True(t, math.IsNaN(trace[0]))
	assert.True(t, math.IsNaN(trace[1]))
	assert.InDelta(t, 1.30000, trace[2], 1e-9)
	assert.InDelta(t, 1.30000, trace[4], 1e-9)
}

func TestAddTakeProfitAndStopLoss(t *testing.T) {
	traces := NewTraces(3)

	traces.AddTakeProfit(1.30000, 0)
	traces.AddStopLoss(1.29352, 1)

	require.Len(t, traces.TakeProfits, 1)
	require.Len(t, traces.StopLosses, 1)

	assert.InDelta(t, 1.30000, traces.TakeProfits[0][0], 1e-9)
	assert.True(t, math.IsNaN(traces.StopLosses[0][0]))
	assert.InDelta(t, 1.29352, traces.StopLosses[0][2], 1e-9)
}
