// Package runtime bridges a compiled *graph.Graph to an audio host: a
// background Worker renders chunks of frames into a lock-free ring buffer
// ahead of need, while Runtime.Callback drains that ring from whatever
// real-time thread the host (cmd/phonon's live mode, internal/audiosink)
// drives it from. Hot-swapping the graph (a successful recompile, spec.md
// §7) happens via an atomic pointer so the audio thread never sees a torn
// or half-built graph, and carries the outgoing graph's voice manager and
// session clock forward so playback doesn't glitch or restart from zero.
package runtime

import (
	"sync/atomic"

	"github.com/phonon-lang/phonon/internal/graph"
)

// DefaultChunkFrames is how many frames the Worker renders per iteration.
const DefaultChunkFrames = 512

// DefaultRingFrames holds roughly one second of audio at a typical 48kHz
// rate, per spec.md's ring-buffer sizing requirement ("≥ 1 second worth of
// samples, e.g. 48 000 at 48 kHz"): a GC pause, scheduler stall, or slow
// recompile-triggered Swap can stall the Worker for tens of milliseconds,
// and the ring needs enough slack to absorb that without an audible
// underrun. NewRingBuffer rounds this up to the next power of two.
const DefaultRingFrames = 48000

// Runtime owns the currently-playing graph and the ring buffer that
// decouples its (possibly slower, GC-bearing) render loop from the audio
// callback.
type Runtime struct {
	g atomic.Pointer[graph.Graph]

	rb          *RingBuffer
	chunkFrames int
	underruns   atomic.Int64

	worker *worker
}

// New constructs a Runtime around an initial graph. Call Start to begin
// background rendering before the first Callback.
func New(g *graph.Graph) *Runtime {
	rt := &Runtime{
		rb:          NewRingBuffer(DefaultRingFrames),
		chunkFrames: DefaultChunkFrames,
	}
	rt.g.Store(g)
	rt.worker = newWorker(rt)
	return rt
}

// Start launches the background render goroutine.
func (rt *Runtime) Start() {
	rt.worker.start()
}

// Stop halts the background render goroutine and waits for it to exit.
func (rt *Runtime) Stop() {
	rt.worker.stopAndWait()
}

// Graph returns the currently-live graph.
func (rt *Runtime) Graph() *graph.Graph {
	return rt.g.Load()
}

// Swap installs a newly compiled graph in place of the current one. The
// outgoing graph's voice manager and session-start clock are carried into
// the incoming graph first, so in-flight notes keep decaying and the
// transport's cycle position doesn't jump, exactly as spec.md §7's
// hot-swap invariant requires; only then is the pointer published.
func (rt *Runtime) Swap(g *graph.Graph) {
	if old := rt.g.Load(); old != nil {
		transferContinuity(old, g)
	}
	rt.g.Store(g)
}

// UnderrunCount reports how many frames Callback has had to zero-fill
// because the Worker fell behind.
func (rt *Runtime) UnderrunCount() int64 {
	return rt.underruns.Load()
}

// Callback fills out (interleaved stereo float32) from the ring buffer. It
// never blocks and never allocates: on underrun the unfilled tail is
// zeroed and the shortfall is added to the underrun counter, so a struggling
// Worker produces silence or glitches rather than stalling the audio host.
func (rt *Runtime) Callback(out []float32) {
	n := rt.rb.Read(out)
	got := n * 2
	if got < len(out) {
		rt.underruns.Add(int64(len(out)-got) / 2)
		for i := got; i < len(out); i++ {
			out[i] = 0
		}
	}
}

// transferContinuity moves the phase-carrying state of the outgoing graph
// into the incoming one: the voice manager (so already-triggered samples
// and synths keep releasing instead of being cut), and the session clock
// (so live cycle position keeps counting from the original downbeat).
func transferContinuity(old, next *graph.Graph) {
	next.Voices = old.Voices
	next.SessionStart = old.SessionStart
	for _, n := range next.Nodes {
		switch node := n.(type) {
		case *graph.Sample:
			node.Voices = next.Voices
		case *graph.SynthPattern:
			node.Voices = next.Voices
		}
	}
}
