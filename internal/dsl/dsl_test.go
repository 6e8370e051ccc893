package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTempoAndOut(t *testing.T) {
	prog, err := Parse("tempo: 0.5\nout: sine 440 * 0.2\n")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	tempo, ok := prog.Statements[0].(*TempoStmt)
	require.True(t, ok)
	assert.Equal(t, 0.5, tempo.Value)

	out, ok := prog.Statements[1].(*OutStmt)
	require.True(t, ok)
	bin, ok := out.Expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", bin.Op)
	call, ok := bin.Left.(*Call)
	require.True(t, ok)
	assert.Equal(t, "sine", call.Func)
	require.Len(t, call.Args, 1)
	assert.Equal(t, 440.0, call.Args[0].(*NumberLit).Value)
}

func TestParseBusAssignmentAndChain(t *testing.T) {
	prog, err := Parse(`~bass: saw 55 # lpf (~lfo * 2000 + 500) 0.8` + "\n")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	bus, ok := prog.Statements[0].(*BusStmt)
	require.True(t, ok)
	assert.Equal(t, "bass", bus.Name)

	chain, ok := bus.Expr.(*ChainExpr)
	require.True(t, ok)
	require.Len(t, chain.Hash, 1)
	assert.Equal(t, "lpf", chain.Hash[0].Func)
	require.Len(t, chain.Hash[0].Args, 2)
	assert.Equal(t, 0.8, chain.Hash[0].Args[1].(*NumberLit).Value)
}

func TestParseSampleChainWithPerEventGain(t *testing.T) {
	prog, err := Parse(`out: s "bd bd" # gain "0.2 1.0"` + "\n")
	require.NoError(t, err)
	out := prog.Statements[0].(*OutStmt)
	chain, ok := out.Expr.(*ChainExpr)
	require.True(t, ok)
	sCall, ok := chain.Base.(*Call)
	require.True(t, ok)
	assert.Equal(t, "s", sCall.Func)
	assert.Equal(t, "bd bd", sCall.Args[0].(*StringLit).Value)
	require.Len(t, chain.Hash, 1)
	assert.Equal(t, "gain", chain.Hash[0].Func)
}

func TestParseDollarTransformChain(t *testing.T) {
	prog, err := Parse(`out: s "bd*4" $ fast 2 $ rev` + "\n")
	require.NoError(t, err)
	out := prog.Statements[0].(*OutStmt)
	chain, ok := out.Expr.(*ChainExpr)
	require.True(t, ok)
	require.Len(t, chain.Dollar, 2)
	assert.Equal(t, "fast", chain.Dollar[0].Func)
	assert.Equal(t, "rev", chain.Dollar[1].Func)
}

func TestParseNumberedOutputs(t *testing.T) {
	prog, err := Parse("cps: 2.0\no1: sine 220\no2: sine 440\n")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 3)
	o1, ok := prog.Statements[1].(*NumberedOutStmt)
	require.True(t, ok)
	assert.Equal(t, 1, o1.Index)
}

func TestParseRejectsUnknownStatement(t *testing.T) {
	_, err := Parse("bogus: 1\n")
	require.Error(t, err)
}

func TestLineCommentsAreSkipped(t *testing.T) {
	prog, err := Parse("-- a pure tone\ntempo: 0.5\n")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
}
