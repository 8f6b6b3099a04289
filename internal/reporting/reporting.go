// Package reporting renders compile and runtime errors for the CLI and
// REPL, colorizing output when writing to a terminal.
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/vm"
)

// Reporter formats errors for a single output stream, deciding once at
// construction whether that stream supports color.
type Reporter struct {
	out   io.Writer
	color bool
}

// New builds a Reporter for out, enabling color only when out is a terminal.
func New(out io.Writer) *Reporter {
	r := &Reporter{out: out}
	if f, ok := out.(*os.File); ok {
		r.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return r
}

// Report writes a fully formatted error to the Reporter's stream. It
// recognizes *vm.Error specially to render the accumulated call stack;
// any other error (scan/parse error, or a bare runtime error with no
// stack attached) is printed as just its message.
func (r *Reporter) Report(err error) {
	fmt.Fprint(r.out, r.Format(err))
}

// Format renders err the same way Report would, without writing it.
func (r *Reporter) Format(err error) string {
	bold := r.sprint(color.Bold, color.FgRed)

	var b strings.Builder
	b.WriteString(bold(err.Error()))
	b.WriteByte('\n')

	if ve, ok := err.(*vm.Error); ok {
		r.writeStack(&b, ve.Stack)
	}
	return b.String()
}

// writeStack renders the traceback innermost-first, collapsing any run of
// consecutive identical frames into a single "repeated N more time(s)" line
// instead of printing the same site over and over.
func (r *Reporter) writeStack(b *strings.Builder, stack []vm.Traceback) {
	dim := r.sprint(color.Faint)

	var prev vm.Traceback
	have := false
	repeat := 0
	flush := func() {
		if repeat > 0 {
			fmt.Fprintf(b, "  %s\n", dim(fmt.Sprintf("... above line repeated %d more time(s) ...", repeat)))
			repeat = 0
		}
	}
	for _, tb := range stack {
		if have && tb == prev {
			repeat++
			continue
		}
		flush()
		fmt.Fprintf(b, "  at: `%s` (%s)\n", tb.FuncName, dim(tb.Pos))
		prev = tb
		have = true
	}
	flush()
}

// IsEOF reports whether err is a parser error expecting more input, the
// signal internal/replio uses to keep buffering a continuation line.
func IsEOF(err error) bool {
	pe, ok := err.(*cerr.ParseError)
	return ok && pe.IsEOF()
}

func (r *Reporter) sprint(attrs ...color.Attribute) func(string) string {
	c := color.New(attrs...)
	c.EnableColor()
	if !r.color {
		c.DisableColor()
	}
	fn := c.SprintFunc()
	return func(s string) string { return fn(s) }
}
