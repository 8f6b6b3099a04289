package replio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/internal/replio"
)

func TestReplEchoesLastExpression(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader("1 + 2\n"), &out, &errOut, false)
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "3\n")
}

func TestReplPersistsGlobalsAcrossEntries(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader("let x = 41\nx + 1\n"), &out, &errOut, false)
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "42\n")
}

func TestReplRequestsContinuationForUnclosedBlock(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader("let f = fn(x) ->\nx + 1\nf(1)\n"), &out, &errOut, false)
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "... ")
	require.Contains(t, out.String(), "2\n")
}

func TestReplReportsCompileErrorAndContinues(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader("+ 1\n2\n"), &out, &errOut, false)
	require.NotEmpty(t, errOut.String())
	require.Contains(t, out.String(), "2\n")
}

func TestReplReportsRuntimeErrorAndContinues(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader("1 / 0\n1 + 1\n"), &out, &errOut, false)
	require.NotEmpty(t, errOut.String())
	require.Contains(t, out.String(), "2\n")
}

func TestReplExitEndsSessionBeforeEOF(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader("exit\nprint(\"unreachable\")\n"), &out, &errOut, false)
	require.Empty(t, errOut.String())
	require.NotContains(t, out.String(), "unreachable")
}

func TestReplEOFEndsSessionCleanly(t *testing.T) {
	var out, errOut strings.Builder
	replio.Run(strings.NewReader(""), &out, &errOut, false)
	require.Empty(t, errOut.String())
}
