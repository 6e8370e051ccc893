// Command phonon is the live-coding audio synthesis engine's CLI: render
// a program to a WAV file, play it live against the default audio device,
// or edit it with live reload. Grounded on the teacher's main.go for the
// debug-log-to-file and signal-driven-cleanup idioms, adapted to cobra's
// subcommand tree (a dependency the teacher's own go.mod already carried
// but never wired into its single-binary flag.Parse CLI).
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "phonon:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}
