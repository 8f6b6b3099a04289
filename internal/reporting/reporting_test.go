package reporting_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/internal/reporting"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/token"
	"github.com/cordy-lang/cordy/lang/vm"
)

func TestFormatPlainError(t *testing.T) {
	var out bytes.Buffer
	r := reporting.New(&out)
	text := r.Format(cerr.New(cerr.ValueErrorStepCannotBeZero))
	require.Equal(t, "step cannot be zero\n", text)
}

func TestFormatRendersTraceback(t *testing.T) {
	var out bytes.Buffer
	r := reporting.New(&out)
	err := &vm.Error{
		Err: cerr.New(cerr.ValueErrorStepCannotBeZero),
		Stack: []vm.Traceback{
			{FuncName: "inner", Pos: "3:1"},
			{FuncName: "outer", Pos: "7:2"},
		},
	}
	text := r.Format(err)
	require.Equal(t, "step cannot be zero\n  at: `inner` (3:1)\n  at: `outer` (7:2)\n", text)
}

func TestFormatCollapsesRepeatedFrames(t *testing.T) {
	var out bytes.Buffer
	r := reporting.New(&out)
	site := vm.Traceback{FuncName: "recurse", Pos: "2:1"}
	err := &vm.Error{
		Err:   cerr.New(cerr.ValueErrorStepCannotBeZero),
		Stack: []vm.Traceback{site, site, site, site, {FuncName: "main", Pos: "10:1"}},
	}
	text := r.Format(err)
	require.Equal(t, "step cannot be zero\n  at: `recurse` (2:1)\n  ... above line repeated 3 more time(s) ...\n  at: `main` (10:1)\n", text)
}

func TestFormatDoesNotCollapseASingleFrame(t *testing.T) {
	var out bytes.Buffer
	r := reporting.New(&out)
	err := &vm.Error{
		Err:   cerr.New(cerr.ValueErrorStepCannotBeZero),
		Stack: []vm.Traceback{{FuncName: "once", Pos: "1:1"}},
	}
	text := r.Format(err)
	require.Equal(t, "step cannot be zero\n  at: `once` (1:1)\n", text)
}

func TestReportWritesToOut(t *testing.T) {
	var out bytes.Buffer
	r := reporting.New(&out)
	r.Report(cerr.New(cerr.ValueErrorValueMustBeNonZero))
	require.Equal(t, "value must be non-zero\n", out.String())
}

func TestIsEOFRecognizesTrailingExpectedToken(t *testing.T) {
	require.True(t, reporting.IsEOF(&cerr.ParseError{Kind: cerr.ExpectedExpressionTerminal, Got: token.EOF}))
	require.False(t, reporting.IsEOF(&cerr.ParseError{Kind: cerr.ExpectedExpressionTerminal, Got: token.PLUS}))
	require.False(t, reporting.IsEOF(&cerr.ParseError{Kind: cerr.LocalVariableConflict, Got: token.EOF}))
	require.False(t, reporting.IsEOF(cerr.New(cerr.ValueErrorValueMustBeNonZero)))
}
