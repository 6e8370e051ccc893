package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/phonon-lang/phonon/internal/audiosink"
	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/liveview"
	"github.com/phonon-lang/phonon/internal/runtime"
	"github.com/phonon-lang/phonon/internal/samplebank"
	"github.com/phonon-lang/phonon/internal/telemetry"
)

var (
	editSampleRate int
	editSampleDir  string
	editOSCPort    int
)

var editCmd = &cobra.Command{
	Use:   "edit <input.ph>",
	Short: "Play a phonon program with live reload and a status TUI",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().IntVar(&editSampleRate, "sample-rate", 44100, "output sample rate in Hz")
	editCmd.Flags().StringVar(&editSampleDir, "sample-dir", "samples", "directory sample banks are loaded from")
	editCmd.Flags().IntVar(&editOSCPort, "telemetry-port", 57200, "OSC port to report observable runtime state on")
}

func runEdit(cmd *cobra.Command, args []string) error {
	closer, err := setupLogging()
	if err != nil {
		return newCLIError(exitIOError, err)
	}
	defer closer.Close()

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return newCLIError(exitIOError, err)
	}

	bank := samplebank.NewDiskBank(editSampleDir)
	g, err := compiler.Compile(string(src), float64(editSampleRate), bank)
	if err != nil {
		return newCLIError(exitUserError, err)
	}

	rt := runtime.New(g)
	rt.Start()
	defer rt.Stop()

	sink, err := audiosink.Open(rt, editSampleRate)
	if err != nil {
		return newCLIError(exitAudioDeviceError, err)
	}
	defer sink.Close()
	sink.Start()

	reporter := telemetry.NewReporter(rt, "localhost", editOSCPort)
	stopTelemetry := make(chan struct{})
	defer close(stopTelemetry)
	go reporter.Run(telemetryInterval, stopTelemetry)

	model := liveview.New(path, float64(editSampleRate), bank, rt)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return newCLIError(exitIOError, err)
	}
	return nil
}
