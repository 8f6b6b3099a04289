package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/internal/cli"
)

func stdio(stdin string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &errOut,
	}, &out, &errOut
}

func TestHelpFlagPrintsUsageAndSucceeds(t *testing.T) {
	c := cli.Cmd{}
	io, out, errOut := stdio("")
	code := c.Main([]string{"cordy", "-h"}, io)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "usage: cordy")
	require.Empty(t, errOut.String())
}

func TestDisassemblyRequiresAFile(t *testing.T) {
	c := cli.Cmd{}
	io, _, errOut := stdio("")
	code := c.Main([]string{"cordy", "-d"}, io)
	require.Equal(t, mainer.InvalidArgs, code)
	require.NotEmpty(t, errOut.String())
}

func TestRunningMissingFileFails(t *testing.T) {
	c := cli.Cmd{}
	io, _, errOut := stdio("")
	code := c.Main([]string{"cordy", "/no/such/file.cordy"}, io)
	require.Equal(t, mainer.Failure, code)
	require.NotEmpty(t, errOut.String())
}

func TestNoArgsLaunchesRepl(t *testing.T) {
	c := cli.Cmd{}
	io, out, errOut := stdio("1 + 1\n")
	code := c.Main([]string{"cordy"}, io)
	require.Equal(t, mainer.Success, code)
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "2\n")
}
