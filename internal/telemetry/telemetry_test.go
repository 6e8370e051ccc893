package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phonon-lang/phonon/internal/graph"
	"github.com/phonon-lang/phonon/internal/runtime"
)

func newTestReporter(t *testing.T) *Reporter {
	t.Helper()
	g := graph.New(44100, 1)
	rt := runtime.New(g)
	return NewReporter(rt, "127.0.0.1", 57200)
}

func TestReportSendsWithoutErrorWhenNoListener(t *testing.T) {
	r := newTestReporter(t)
	assert.NotPanics(t, func() { r.Report() })
}

func TestReportWithLastErrorSetDoesNotPanic(t *testing.T) {
	r := newTestReporter(t)
	r.SetLastError(assertError("bad parse"))
	assert.NotPanics(t, func() { r.Report() })
}

func TestRunStopsPromptlyWhenStopIsClosed(t *testing.T) {
	r := newTestReporter(t)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		r.Run(time.Hour, stop)
		close(done)
	}()

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
