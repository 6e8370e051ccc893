// Package transport derives a phonon cycle position — the fractional
// number of cycles elapsed since a session started — from either wall-clock
// time (live playback) or an elapsed sample count (offline rendering), per
// spec.md §3.1/§4.6. internal/graph.Graph owns the authoritative
// SessionStart/CPS/sampleCount state and delegates the arithmetic here so
// the same formula backs both the real-time and render code paths.
package transport

import "time"

// Clock converts elapsed time into a cycle position at a fixed
// cycles-per-second rate.
type Clock struct {
	SessionStart time.Time
	CPS          float64
}

// CyclePosition reports the cycle position at wall-clock time now.
func (c Clock) CyclePosition(now time.Time) float64 {
	return now.Sub(c.SessionStart).Seconds() * c.CPS
}

// CyclePositionOffline reports the cycle position after sampleCount frames
// have been rendered at sampleRate, independent of wall-clock time — the
// deterministic path spec.md §8 requires offline WAV rendering to take.
func CyclePositionOffline(sampleCount int64, sampleRate, cps float64) float64 {
	return float64(sampleCount) / sampleRate * cps
}
