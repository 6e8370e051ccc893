package diagnostics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/dsl"
	"github.com/phonon-lang/phonon/internal/graph"
	"github.com/phonon-lang/phonon/internal/runtime"
)

func TestFromErrorNilReturnsNotOK(t *testing.T) {
	_, ok := FromError(nil)
	assert.False(t, ok)
}

func TestFromErrorCompilerErrorCarriesPosition(t *testing.T) {
	err := &compiler.Error{Msg: "unknown bus foo", Pos: dsl.Pos{Line: 3, Col: 7}}
	ce, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, "unknown bus foo", ce.Message)
	assert.Equal(t, 3, ce.Line)
	assert.Equal(t, 7, ce.Col)
}

func TestFromErrorParseErrorCarriesPosition(t *testing.T) {
	err := &dsl.ParseError{Msg: "unexpected character", Pos: dsl.Pos{Line: 1, Col: 4}}
	ce, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, "unexpected character", ce.Message)
	assert.Equal(t, 1, ce.Line)
	assert.Equal(t, 4, ce.Col)
}

func TestFromErrorPlainErrorHasNoPosition(t *testing.T) {
	_, ok := FromError(errors.New("disk full"))
	assert.False(t, ok)
}

func TestSnapshotFromWithNoErrorOmitsLastError(t *testing.T) {
	g := graph.New(44100, 1)
	g.CPS = 0.5
	rt := runtime.New(g)

	snap := SnapshotFrom(rt, nil)
	assert.Nil(t, snap.LastError)
	assert.Equal(t, int64(0), snap.UnderrunCount)
	assert.Equal(t, 0.5, snap.CPS)
}

func TestSnapshotFromWithErrorPopulatesLastError(t *testing.T) {
	g := graph.New(44100, 1)
	rt := runtime.New(g)

	err := &compiler.Error{Msg: "bad arity", Pos: dsl.Pos{Line: 2, Col: 1}}
	snap := SnapshotFrom(rt, err)
	require.NotNil(t, snap.LastError)
	assert.Equal(t, "bad arity", snap.LastError.Message)
}

func TestMarshalJSONRoundTripsSnapshot(t *testing.T) {
	snap := Snapshot{UnderrunCount: 3, CPS: 1.5, CyclePosition: 0.25}
	data, err := MarshalJSON(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"underrun_count":3`)
	assert.Contains(t, string(data), `"cps":1.5`)
	assert.NotContains(t, string(data), "last_error")
}
