package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phonon-lang/phonon/internal/audiosink"
	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/runtime"
	"github.com/phonon-lang/phonon/internal/samplebank"
	"github.com/phonon-lang/phonon/internal/telemetry"
)

var (
	liveSampleRate int
	liveSampleDir  string
	liveOSCPort    int
)

var liveCmd = &cobra.Command{
	Use:   "live <input.ph>",
	Short: "Compile a phonon program and play it against the default audio device",
	Args:  cobra.ExactArgs(1),
	RunE:  runLive,
}

func init() {
	liveCmd.Flags().IntVar(&liveSampleRate, "sample-rate", 44100, "output sample rate in Hz")
	liveCmd.Flags().StringVar(&liveSampleDir, "sample-dir", "samples", "directory sample banks are loaded from")
	liveCmd.Flags().IntVar(&liveOSCPort, "telemetry-port", 57200, "OSC port to report observable runtime state on")
}

func runLive(cmd *cobra.Command, args []string) error {
	closer, err := setupLogging()
	if err != nil {
		return newCLIError(exitIOError, err)
	}
	defer closer.Close()

	src, err := os.ReadFile(args[0])
	if err != nil {
		return newCLIError(exitIOError, err)
	}

	bank := samplebank.NewDiskBank(liveSampleDir)
	g, err := compiler.Compile(string(src), float64(liveSampleRate), bank)
	if err != nil {
		return newCLIError(exitUserError, err)
	}

	rt := runtime.New(g)
	rt.Start()

	sink, err := audiosink.Open(rt, liveSampleRate)
	if err != nil {
		return newCLIError(exitAudioDeviceError, err)
	}
	sink.Start()

	reporter := telemetry.NewReporter(rt, "localhost", liveOSCPort)
	stopTelemetry := make(chan struct{})
	go reporter.Run(telemetryInterval, stopTelemetry)

	done := make(chan struct{})
	setupCleanupOnExit(func() {
		close(stopTelemetry)
		rt.Stop()
		sink.Close()
		close(done)
	})

	fmt.Fprintf(cmd.OutOrStdout(), "phonon live: playing %s at %d Hz (ctrl-c to stop)\n", args[0], liveSampleRate)
	<-done
	return nil
}
