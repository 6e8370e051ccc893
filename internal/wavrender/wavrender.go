// Package wavrender drives an offline render: pull frames directly and
// synchronously from a *graph.Graph (no ring buffer, no wall clock) and
// write them to a RIFF/WAVE file. Synchronous, in-order ProcessSample
// calls are what makes a render byte-identical on every run, per spec.md
// §8's determinism property — the async ring-buffered path in
// internal/runtime exists for live playback pacing, not for this. Uses
// github.com/go-audio/wav and github.com/go-audio/audio, the teacher's own
// dependency pair for *reading* WAV files in internal/getbpm — used here
// to close the loop by *writing* them.
package wavrender

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/phonon-lang/phonon/internal/graph"
)

// BitDepth selects the PCM sample format written to disk.
type BitDepth int

const (
	BitDepth16 BitDepth = 16
	BitDepth24 BitDepth = 24
)

// Options configures a render pass.
type Options struct {
	SampleRate int
	BitDepth   BitDepth
	// Frames is the exact number of stereo frames to render. Render
	// converts a --duration/--cycles CLI flag into this count before
	// calling Render, keeping the frame-count math in one place.
	Frames int64
	// ChunkFrames batches how many frames are encoded per wav.Encoder.Write
	// call; it has no effect on the output, only on write batching.
	ChunkFrames int
}

const defaultChunkFrames = 4096

// FramesForDuration converts a wall-clock duration in seconds to a frame
// count at the given sample rate.
func FramesForDuration(seconds float64, sampleRate int) int64 {
	return int64(seconds*float64(sampleRate) + 0.5)
}

// FramesForCycles converts a cycle count to a frame count at the given
// sample rate and cycles-per-second rate.
func FramesForCycles(cycles float64, sampleRate int, cps float64) int64 {
	if cps <= 0 {
		return 0
	}
	return int64(cycles/cps*float64(sampleRate) + 0.5)
}

// Render evaluates g for exactly opts.Frames stereo frames, in order, and
// writes them as a PCM WAV file to w. g.Offline must already be set so its
// cycle position advances from the sample count rather than wall-clock
// time.
func Render(w io.WriteSeeker, g *graph.Graph, opts Options) error {
	if opts.ChunkFrames <= 0 {
		opts.ChunkFrames = defaultChunkFrames
	}
	bitDepth := opts.BitDepth
	if bitDepth == 0 {
		bitDepth = BitDepth16
	}

	enc := wav.NewEncoder(w, opts.SampleRate, int(bitDepth), 2, 1)
	defer enc.Close()

	format := &audio.Format{NumChannels: 2, SampleRate: opts.SampleRate}
	maxVal := (int(1) << (uint(bitDepth) - 1)) - 1

	intData := make([]int, opts.ChunkFrames*2)

	var rendered int64
	for rendered < opts.Frames {
		remaining := opts.Frames - rendered
		n := int64(opts.ChunkFrames)
		if remaining < n {
			n = remaining
		}

		sampleBuf := intData[:n*2]
		for i := int64(0); i < n; i++ {
			l, r := g.ProcessSample()
			sampleBuf[i*2] = floatToPCM(l, maxVal)
			sampleBuf[i*2+1] = floatToPCM(r, maxVal)
		}

		ib := &audio.IntBuffer{
			Format:         format,
			Data:           sampleBuf,
			SourceBitDepth: int(bitDepth),
		}
		if err := enc.Write(ib); err != nil {
			return fmt.Errorf("wavrender: write chunk: %w", err)
		}
		rendered += n
	}
	return nil
}

func floatToPCM(v float32, maxVal int) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * float32(maxVal))
}
