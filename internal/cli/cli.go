// Package cli implements cordy's command-line entrypoint: flag parsing,
// dispatch to a single-shot script run, the -d disassembly mode, or the
// REPL, grounded on the teacher's own mna/mainer-based Cmd shape.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/cordy-lang/cordy/internal/reporting"
	"github.com/cordy-lang/cordy/internal/replio"
	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/parser"
	"github.com/cordy-lang/cordy/lang/value"
	"github.com/cordy-lang/cordy/lang/vm"
)

const binName = "cordy"

var (
	shortUsage = fmt.Sprintf("usage: %s [options] <file> [program arguments...]\nRun '%[1]s --help' for details.\n", binName)

	longUsage = fmt.Sprintf(`usage: %s [options] <file> [program arguments...]
       %[1]s -h|--help

Run a Cordy script, or launch the REPL if no file is given.

Valid options are:
       -h --help                 Show this help and exit.
       -d --disassembly          Print the compiled program's disassembly
                                 and exit, instead of running it.
       -o --optimize             Enable the optimizer pass before codegen.
       --no-line-numbers         Omit the instruction-index column from
                                 disassembly output.
`, binName)
)

// Cmd holds cordy's flags and positional arguments, populated by
// mainer.Parser.Parse before Main dispatches on them.
type Cmd struct {
	Help          bool `flag:"h,help"`
	Disassembly   bool `flag:"d,disassembly"`
	Optimize      bool `flag:"o,optimize"`
	NoLineNumbers bool `flag:"no-line-numbers"`

	args []string
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help {
		return nil
	}
	if c.Disassembly && len(c.args) == 0 {
		return errors.New("disassembly mode requires a file")
	}
	return nil
}

// Main parses args against c and runs the resulting command, returning the
// process exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: "CORDY_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	if c.Help {
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	}

	if len(c.args) == 0 {
		replio.Run(stdio.Stdin, stdio.Stdout, stdio.Stderr, c.Optimize)
		return mainer.Success
	}

	file := c.args[0]
	programArgs := c.args[1:]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return mainer.Failure
	}

	prog, err := parser.CompileSource(string(src), []string{"args"}, c.Optimize)
	if err != nil {
		reporting.New(stdio.Stderr).Report(err)
		return mainer.Failure
	}

	if c.Disassembly {
		fmt.Fprint(stdio.Stdout, disassembleProgram(prog, !c.NoLineNumbers))
		return mainer.Success
	}

	m := vm.Load(prog, stdio.Stdout)
	argv := make([]value.Value, len(programArgs))
	for i, a := range programArgs {
		argv[i] = value.Str(a)
	}
	m.SetGlobal("args", value.NewList(argv))

	if _, err := m.Run(); err != nil {
		reporting.New(stdio.Stderr).Report(err)
		return mainer.Failure
	}
	return mainer.Success
}

// disassembleProgram renders every function in prog, in declaration order,
// optionally stripping the leading instruction-index column that
// compiler.Disassemble always includes.
func disassembleProgram(prog *compiler.Program, lineNumbers bool) string {
	var b strings.Builder
	for i, fn := range prog.Functions {
		fmt.Fprintf(&b, "-- %s (function %d) --\n", fn.Name, i)
		text := compiler.Disassemble(prog, fn)
		if lineNumbers {
			b.WriteString(text)
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			if idx := strings.Index(line, ": "); idx >= 0 {
				line = line[idx+2:]
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
