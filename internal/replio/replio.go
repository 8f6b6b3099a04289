// Package replio drives Cordy's line-oriented REPL: read a line, append it
// to an accumulating buffer, try to compile the buffer, and either run it,
// ask for a continuation line, or report a compile error - matching
// spec.md's §6.2 REPL description.
package replio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cordy-lang/cordy/internal/reporting"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/parser"
	"github.com/cordy-lang/cordy/lang/scanner"
	"github.com/cordy-lang/cordy/lang/value"
	"github.com/cordy-lang/cordy/lang/vm"
)

// Run drives the loop over in, writing prompts and results to out and
// error reports to errOut, until `exit` is evaluated or in reaches EOF.
// optimize enables the optimizer pass on every entry, mirroring the CLI's
// -o flag.
func Run(in io.Reader, out, errOut io.Writer, optimize bool) {
	reporter := reporting.New(errOut)
	gen := compiler.NewGenerator()
	p := parser.New(nil, gen)

	sc := bufio.NewScanner(in)
	var buf strings.Builder
	var m *vm.VM
	continuation := false

	for {
		if continuation {
			fmt.Fprint(out, "... ")
		} else {
			fmt.Fprint(out, ">>> ")
		}
		if !sc.Scan() {
			fmt.Fprintln(out)
			return
		}
		buf.WriteString(sc.Text())
		buf.WriteByte('\n')

		toks, err := scanner.ScanAll(buf.String())
		if err != nil {
			reporter.Report(err)
			buf.Reset()
			continuation = false
			continue
		}

		stmts, err := p.ParseStmts(toks)
		if err != nil {
			if reporting.IsEOF(err) {
				continuation = true
				continue
			}
			reporter.Report(err)
			buf.Reset()
			continuation = false
			continue
		}
		buf.Reset()
		continuation = false

		if optimize {
			stmts = compiler.Optimize(stmts)
		}
		prog, err := gen.CompileModule(stmts, p.Globals())
		if err != nil {
			reporter.Report(err)
			continue
		}

		if m == nil {
			m = vm.Load(prog, out)
		} else {
			m.Reload()
		}

		result, err := m.Run()
		if err != nil {
			if isExit(err) {
				return
			}
			reporter.Report(err)
			continue
		}
		if result != value.Nil {
			fmt.Fprintln(out, result.Repr())
		}
	}
}

// isExit reports whether err is the control error raised by evaluating an
// `exit` expression, the REPL's other way (besides EOF) of ending a session.
func isExit(err error) bool {
	if ve, ok := err.(*vm.Error); ok {
		err = ve.Err
	}
	rt, ok := err.(*cerr.Runtime)
	return ok && rt.Kind == cerr.RuntimeExit
}
