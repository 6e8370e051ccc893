package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCyclePositionAdvancesWithCPS(t *testing.T) {
	start := time.Now()
	clk := Clock{SessionStart: start, CPS: 2.0}
	assert.InDelta(t, 0, clk.CyclePosition(start), 1e-9)
	assert.InDelta(t, 1.0, clk.CyclePosition(start.Add(500*time.Millisecond)), 1e-6)
	assert.InDelta(t, 2.0, clk.CyclePosition(start.Add(time.Second)), 1e-6)
}

func TestCyclePositionOfflineIsSampleExact(t *testing.T) {
	assert.InDelta(t, 0.5, CyclePositionOffline(22050, 44100, 1.0), 1e-9)
	assert.InDelta(t, 1.0, CyclePositionOffline(22050, 44100, 2.0), 1e-9)
}
