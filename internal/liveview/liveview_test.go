package liveview

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonon-lang/phonon/internal/compiler"
	"github.com/phonon-lang/phonon/internal/dsl"
	"github.com/phonon-lang/phonon/internal/graph"
	"github.com/phonon-lang/phonon/internal/runtime"
	"github.com/phonon-lang/phonon/internal/samplebank"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	g := graph.New(44100, 1)
	rt := runtime.New(g)
	return New("unused.ph", 44100, samplebank.NewDiskBank(t.TempDir()), rt)
}

func TestUpdateKeyQuitsOnCtrlCOrQ(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdateCompiledMsgSuccessIncrementsSwapsAndClearsError(t *testing.T) {
	m := newTestModel(t)
	m.lastErr = errors.New("stale error")

	next, _ := m.Update(compiledMsg{err: nil})
	nm := next.(Model)
	assert.Equal(t, 1, nm.swaps)
	assert.NoError(t, nm.lastErr)
	assert.False(t, nm.compiling)
}

func TestUpdateCompiledMsgErrorRecordsErrorWithoutIncrementingSwaps(t *testing.T) {
	m := newTestModel(t)
	want := errors.New("unexpected character")

	next, _ := m.Update(compiledMsg{err: want})
	nm := next.(Model)
	assert.Equal(t, 0, nm.swaps)
	assert.Equal(t, want, nm.lastErr)
}

func TestUpdateTickMsgTriggersRecompileOnlyWhenFileChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ph")
	require.NoError(t, os.WriteFile(path, []byte("bus out = sine 440"), 0o644))

	g := graph.New(44100, 1)
	rt := runtime.New(g)
	m := New(path, 44100, samplebank.NewDiskBank(dir), rt)

	// First tick: mtime is after the model's zero-value lastMod, so a
	// recompile should be scheduled.
	next, cmd := m.Update(tickMsg{})
	nm := next.(Model)
	assert.True(t, nm.compiling)
	require.NotNil(t, cmd)
}

func TestStatusLineShowsCompileErrorWithPosition(t *testing.T) {
	m := newTestModel(t)
	m.lastErr = &compiler.Error{Msg: "unknown bus foo", Pos: dsl.Pos{Line: 2, Col: 5}}

	line := m.statusLine()
	assert.Contains(t, line, "line 2")
	assert.Contains(t, line, "unknown bus foo")
}

func TestStatusLineShowsSwapCountWhenHealthy(t *testing.T) {
	m := newTestModel(t)
	m.swaps = 3

	line := m.statusLine()
	assert.Contains(t, line, "graph swapped (3 total)")
}

func TestUnderrunBarReportsCount(t *testing.T) {
	m := newTestModel(t)
	bar := m.underrunBar()
	assert.Contains(t, bar, "underruns: 0")
}
