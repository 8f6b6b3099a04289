package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/parser"
)

func parseErr(t *testing.T, src string) *cerr.ParseError {
	t.Helper()
	_, err := parser.ParseProgram(src)
	require.Error(t, err)
	pe, ok := err.(*cerr.ParseError)
	require.True(t, ok, "expected *cerr.ParseError, got %T: %v", err, err)
	return pe
}

func TestParseProgramAcceptsTrailingExpression(t *testing.T) {
	_, err := parser.ParseProgram("let x = 1\nx + 2")
	require.NoError(t, err)
}

func TestExpectedExpressionTerminalOnBareOperator(t *testing.T) {
	pe := parseErr(t, "+ 1")
	require.Equal(t, cerr.ExpectedExpressionTerminal, pe.Kind)
}

func TestUndeclaredIdentifierIsReported(t *testing.T) {
	pe := parseErr(t, "x + 1")
	require.Equal(t, cerr.UndeclaredIdentifier, pe.Kind)
	require.Equal(t, "x", pe.Name)
}

func TestLocalVariableConflictWithinSameFunctionBlock(t *testing.T) {
	pe := parseErr(t, "let f = fn() {\nlet x = 1\nlet x = 2\n}\nf()")
	require.Equal(t, cerr.LocalVariableConflict, pe.Kind)
	require.Equal(t, "x", pe.Name)
}

func TestShadowingAcrossNestedBlocksIsAllowed(t *testing.T) {
	_, err := parser.ParseProgram("let f = fn() {\nlet x = 1\nif true {\nlet x = 2\nx\n}\n}\nf()")
	require.NoError(t, err)
}

func TestBreakOutsideOfLoopIsReported(t *testing.T) {
	pe := parseErr(t, "break")
	require.Equal(t, cerr.BreakOutsideOfLoop, pe.Kind)
}

func TestContinueOutsideOfLoopIsReported(t *testing.T) {
	pe := parseErr(t, "continue")
	require.Equal(t, cerr.ContinueOutsideOfLoop, pe.Kind)
}

func TestBreakInsideLoopIsAccepted(t *testing.T) {
	// break/continue are only ever valid inside a fn body: the parser's
	// loopDepth tracking lives on funcScope, which top-level statements
	// never have (p.fs stays nil outside a function literal).
	_, err := parser.ParseProgram("let f = fn() {\nwhile true {\nbreak\n}\n}\nf()")
	require.NoError(t, err)
}

func TestInvalidAssignmentTargetIsReported(t *testing.T) {
	pe := parseErr(t, "1 = 2")
	require.Equal(t, cerr.InvalidAssignmentTarget, pe.Kind)
}

func TestStructDeclOutsideGlobalScopeIsReported(t *testing.T) {
	pe := parseErr(t, "let f = fn() {\nstruct Point(x, y)\n}\nf()")
	require.Equal(t, cerr.StructNotInGlobalScope, pe.Kind)
}

func TestParseProgramWithGlobalsPredeclaresNames(t *testing.T) {
	_, err := parser.ParseProgramWithGlobals("len(args)", []string{"args"})
	require.NoError(t, err)
}

func TestCompileSourceResolvesGlobalDeclaredEarlierInSource(t *testing.T) {
	_, err := parser.CompileSource("let x = 1\nx", nil, false)
	require.NoError(t, err)
}
