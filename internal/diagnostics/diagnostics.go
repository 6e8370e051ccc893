// Package diagnostics serializes compile errors and the observable runtime
// state (spec.md §6.4) to JSON; the telemetry reporter sends the Snapshot's
// fields as separate OSC values rather than as JSON. It uses jsoniter the same way the teacher's
// internal/storage does: a drop-in replacement for encoding/json assigned
// once to a package-level var.
package diagnostics

import (
	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/dsl"
	"github.com/phonon-lang/phonon/internal/runtime"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CompileError is the JSON-friendly shape of a compiler.Error (or a
// dsl.ParseError, which carries the same Msg/Pos shape).
type CompileError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
}

// FromError extracts a CompileError from any error with a line/col
// position; returns ok=false for an error with no position (a plain I/O
// error, for instance).
func FromError(err error) (CompileError, bool) {
	if err == nil {
		return CompileError{}, false
	}
	if ce, ok := err.(*compiler.Error); ok {
		return CompileError{Message: ce.Msg, Line: ce.Pos.Line, Col: ce.Pos.Col}, true
	}
	if pe, ok := err.(*dsl.ParseError); ok {
		return CompileError{Message: pe.Msg, Line: pe.Pos.Line, Col: pe.Pos.Col}, true
	}
	return CompileError{}, false
}

// Snapshot is the observable runtime state spec.md §6.4 names: underrun
// count, transport position, and the last compile error (if any).
type Snapshot struct {
	UnderrunCount int64         `json:"underrun_count"`
	CPS           float64       `json:"cps"`
	CyclePosition float64       `json:"cycle_position"`
	LastError     *CompileError `json:"last_error,omitempty"`
}

// SnapshotFrom builds a Snapshot from a live Runtime and the control thread's
// most recently observed compile error (nil if the last compile succeeded).
func SnapshotFrom(rt *runtime.Runtime, lastErr error) Snapshot {
	g := rt.Graph()
	snap := Snapshot{
		UnderrunCount: rt.UnderrunCount(),
		CPS:           g.CPS,
		CyclePosition: g.CyclePosition,
	}
	if ce, ok := FromError(lastErr); ok {
		snap.LastError = &ce
	}
	return snap
}

// MarshalJSON encodes v with the jsoniter codec, for callers that don't
// want to import jsoniter directly.
func MarshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
