package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// telemetryInterval is how often live/edit report observable runtime
// state over OSC (spec.md §6.4).
const telemetryInterval = 500 * time.Millisecond

var debugLog string

var rootCmd = &cobra.Command{
	Use:           "phonon",
	Short:         "A live-coding audio synthesis engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&debugLog, "debug", "",
		"if set, write debug logs to this file; empty disables logging")
	rootCmd.AddCommand(renderCmd, liveCmd, editCmd)
}

// Execute runs the CLI; its error (if any) already carries the exit code
// main() should use, via cliError.
func Execute() error {
	return rootCmd.Execute()
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// setupLogging mirrors the teacher's main.go: debug logs go to a file via
// tea.LogToFile (the same call the teacher makes) when --debug is set,
// otherwise log output is discarded so it never corrupts a TUI or an audio
// host's stdout.
func setupLogging() (io.Closer, error) {
	if debugLog == "" {
		log.SetOutput(io.Discard)
		return noopCloser{}, nil
	}
	f, err := tea.LogToFile(debugLog, "debug")
	if err != nil {
		return nil, err
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return f, nil
}

// setupCleanupOnExit mirrors the teacher's main.go signal handler: on
// Ctrl-C/SIGTERM/SIGQUIT, run cleanup (closing the audio device, stopping
// the runtime) before exiting.
func setupCleanupOnExit(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		cleanup()
		os.Exit(exitOK)
	}()
}
