// Package telemetry publishes the observable runtime state (spec.md §6.4)
// to an external monitor over OSC, the same fire-and-forget
// "describe transport state to a companion process" idiom the teacher's
// model package uses to keep SuperCollider informed of playback state.
package telemetry

import (
	"log"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/phonon-lang/phonon/internal/diagnostics"
	"github.com/phonon-lang/phonon/internal/runtime"
)

// messageConfig mirrors the teacher's OSCMessageConfig: an address, its
// positional arguments, and an optional log line describing what was sent.
type messageConfig struct {
	Address    string
	Parameters []interface{}
	LogFormat  string
	LogArgs    []interface{}
}

// Reporter periodically sends the runtime's observable state to an OSC
// listener (any external monitor).
type Reporter struct {
	client *osc.Client
	rt     *runtime.Runtime

	lastErr error
}

// NewReporter dials an OSC client at host:port. Per the teacher's own
// pattern, failing to reach a listener is not fatal: messages simply go
// nowhere until something is listening.
func NewReporter(rt *runtime.Runtime, host string, port int) *Reporter {
	return &Reporter{
		client: osc.NewClient(host, port),
		rt:     rt,
	}
}

// SetLastError records the control thread's most recent compile outcome so
// the next Report call includes it.
func (r *Reporter) SetLastError(err error) {
	r.lastErr = err
}

// Report sends the current snapshot as separate OSC messages, one per
// observable field, matching the teacher's one-address-per-concern style
// (/set "pregain" ..., /set "postgain" ...) rather than a single packed
// blob.
func (r *Reporter) Report() {
	snap := diagnostics.SnapshotFrom(r.rt, r.lastErr)

	r.send(messageConfig{
		Address:    "/phonon/underruns",
		Parameters: []interface{}{int32(snap.UnderrunCount)},
		LogFormat:  "telemetry: underrun_count=%d",
		LogArgs:    []interface{}{snap.UnderrunCount},
	})
	r.send(messageConfig{
		Address:    "/phonon/cps",
		Parameters: []interface{}{float32(snap.CPS)},
		LogFormat:  "telemetry: cps=%.3f",
		LogArgs:    []interface{}{snap.CPS},
	})
	r.send(messageConfig{
		Address:    "/phonon/cycle",
		Parameters: []interface{}{float32(snap.CyclePosition)},
		LogFormat:  "telemetry: cycle_position=%.3f",
		LogArgs:    []interface{}{snap.CyclePosition},
	})

	errText := ""
	if snap.LastError != nil {
		errText = snap.LastError.Message
	}
	r.send(messageConfig{
		Address:    "/phonon/error",
		Parameters: []interface{}{errText},
		LogFormat:  "telemetry: last_error=%q",
		LogArgs:    []interface{}{errText},
	})
}

func (r *Reporter) send(cfg messageConfig) {
	if r.client == nil {
		return
	}
	msg := osc.NewMessage(cfg.Address)
	for _, p := range cfg.Parameters {
		msg.Append(p)
	}
	if err := r.client.Send(msg); err != nil {
		log.Printf("telemetry: error sending OSC message to %s: %v", cfg.Address, err)
		return
	}
	if cfg.LogFormat != "" {
		log.Printf(cfg.LogFormat, cfg.LogArgs...)
	}
}

// Run reports on a fixed interval until stop is closed. Intended to be run
// on its own goroutine from phonon live/edit.
func (r *Reporter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Report()
		}
	}
}
