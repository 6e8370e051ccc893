package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/samplebank"
	"github.com/phonon-lang/phonon/internal/wavrender"
)

const defaultRenderSeconds = 4.0

var (
	renderDuration   float64
	renderCycles     float64
	renderSampleRate int
	renderParallel   bool
	renderThreads    int
	renderSampleDir  string
)

var renderCmd = &cobra.Command{
	Use:   "render <input.ph> <output.wav>",
	Short: "Render a phonon program to a RIFF/WAVE file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().Float64Var(&renderDuration, "duration", 0, "render this many seconds")
	renderCmd.Flags().Float64Var(&renderCycles, "cycles", 0, "render this many cycles (overrides --duration)")
	renderCmd.Flags().IntVar(&renderSampleRate, "sample-rate", 44100, "output sample rate in Hz")
	renderCmd.Flags().BoolVar(&renderParallel, "parallel", false,
		"render chunks on multiple goroutines (ignored: rendering is always sample-exact sequential)")
	renderCmd.Flags().IntVar(&renderThreads, "threads", 1,
		"worker count for --parallel (ignored: rendering is always sample-exact sequential)")
	renderCmd.Flags().StringVar(&renderSampleDir, "sample-dir", "samples", "directory sample banks are loaded from")
}

func runRender(cmd *cobra.Command, args []string) error {
	closer, err := setupLogging()
	if err != nil {
		return newCLIError(exitIOError, err)
	}
	defer closer.Close()

	inputPath, outputPath := args[0], args[1]

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return newCLIError(exitIOError, err)
	}

	bank := samplebank.NewDiskBank(renderSampleDir)
	g, err := compiler.Compile(string(src), float64(renderSampleRate), bank)
	if err != nil {
		return newCLIError(exitUserError, err)
	}
	g.Offline = true

	var frames int64
	switch {
	case renderCycles > 0:
		frames = wavrender.FramesForCycles(renderCycles, renderSampleRate, g.CPS)
	case renderDuration > 0:
		frames = wavrender.FramesForDuration(renderDuration, renderSampleRate)
	default:
		frames = wavrender.FramesForDuration(defaultRenderSeconds, renderSampleRate)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return newCLIError(exitIOError, err)
	}
	defer out.Close()

	opts := wavrender.Options{SampleRate: renderSampleRate, BitDepth: wavrender.BitDepth16, Frames: frames}
	if err := wavrender.Render(out, g, opts); err != nil {
		return newCLIError(exitIOError, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frames (%.2fs) to %s\n",
		frames, float64(frames)/float64(renderSampleRate), outputPath)
	return nil
}
