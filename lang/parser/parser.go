// Package parser is a hand-rolled recursive-descent parser, matching the
// scanner's status as an out-of-scope collaborator: it only needs to turn a
// faithful token stream into the ast/compiler pipeline's input, resolving
// identifiers to locals/globals/upvalues in the same single pass (as the
// original implementation's parser does) rather than as a separate
// resolver phase, so function bodies can be handed straight to
// compiler.Generator.CompileFunctionDecl as soon as they close.
package parser

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/scanner"
	"github.com/cordy-lang/cordy/lang/token"
)

// Parser drives the whole parse+resolve+per-function-compile pipeline for
// one source unit (a script, or one REPL entry sharing a persistent global
// scope across entries).
type Parser struct {
	toks []scanner.Tok
	pos  int

	gen     *compiler.Generator
	globals []string
	globalIdx map[string]int

	fs *funcScope // current function scope
}

// New creates a Parser over already-scanned tokens, sharing gen (and hence
// the function table and global namespace) across multiple calls - the
// REPL parses and compiles one top-level statement list per entry, all
// against the same Parser/Generator pair.
func New(toks []scanner.Tok, gen *compiler.Generator) *Parser {
	return &Parser{toks: toks, gen: gen, globalIdx: map[string]int{}}
}

// ParseProgram parses a full source unit (one or more statements until
// EOF) and returns the compiled Program.
func ParseProgram(src string) (*compiler.Program, error) {
	return ParseProgramWithGlobals(src, nil)
}

// ParseProgramWithGlobals is ParseProgram, but with predeclared names
// (e.g. "args", the CLI's program-argument binding) already resolved to
// global slots before the first statement is parsed, so the script can
// reference them without a preceding `let`.
func ParseProgramWithGlobals(src string, predeclared []string) (*compiler.Program, error) {
	return CompileSource(src, predeclared, false)
}

// CompileSource runs the full scan/parse/(optional optimize)/codegen
// pipeline over one source unit, for callers (the CLI) that need control
// over the optimizer pass; ParseProgram and ParseProgramWithGlobals are
// thin wrappers over this with optimize fixed to false.
func CompileSource(src string, predeclared []string, optimize bool) (*compiler.Program, error) {
	toks, err := scanner.ScanAll(src)
	if err != nil {
		return nil, err
	}
	gen := compiler.NewGenerator()
	p := New(toks, gen)
	p.Predeclare(predeclared...)
	stmts, err := p.parseStmts()
	if err != nil {
		return nil, err
	}
	if optimize {
		stmts = compiler.Optimize(stmts)
	}
	return gen.CompileModule(stmts, p.globals)
}

// Predeclare resolves each name to a fresh global slot before parsing
// begins, skipping any name already declared. Used by the CLI to bind
// "args" ahead of the script body.
func (p *Parser) Predeclare(names ...string) {
	for _, name := range names {
		if _, ok := p.globalIdx[name]; ok {
			continue
		}
		p.globalIdx[name] = len(p.globals)
		p.globals = append(p.globals, name)
	}
}

// Globals returns the accumulated global names declared against p so far
// (by Predeclare, `let` at top level, or a prior ParseStmts call sharing
// this Parser's Generator).
func (p *Parser) Globals() []string { return p.globals }

// ParseStmts parses one REPL-entry's worth of statements (until EOF) using
// p's persistent global scope, without compiling them - the REPL driver
// compiles the returned statements into a fresh module function each turn,
// sharing p's Generator so global indices and function bodies accumulate.
func (p *Parser) ParseStmts(toks []scanner.Tok) ([]ast.Stmt, error) {
	p.toks = toks
	p.pos = 0
	return p.parseStmts()
}

func (p *Parser) parseStmts() ([]ast.Stmt, error) {
	var out []ast.Stmt
	for !p.check(token.EOF) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Parser) peek() scanner.Tok { return p.toks[p.pos] }

func (p *Parser) peekAt(off int) scanner.Tok {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) check(k token.Token) bool { return p.peek().Kind == k }

func (p *Parser) advance() scanner.Tok {
	t := p.peek()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) match(k token.Token) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Token, expected string) (scanner.Tok, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return scanner.Tok{}, &cerr.ParseError{
		Kind: cerr.ExpectedToken, Pos: p.peek().Pos,
		Expected: expected, Got: p.peek().Kind, GotText: p.peek().Text,
	}
}

// resolveIdent turns an identifier reference into an LValueTarget,
// searching the current function's locals, then enclosing functions
// (registering an upvalue chain), then the global namespace.
func (p *Parser) resolveIdent(name string, pos token.Position) (ast.LValueTarget, error) {
	if p.fs != nil {
		if idx, ok := p.fs.resolveLocal(name); ok {
			return ast.LValueTarget{Kind: ast.LValueLocal, Index: idx, Name: name}, nil
		}
		if idx, ok := p.fs.resolveUpvalue(name); ok {
			return ast.LValueTarget{Kind: ast.LValueUpValue, Index: idx, Name: name}, nil
		}
	}
	if idx, ok := p.globalIdx[name]; ok {
		return ast.LValueTarget{Kind: ast.LValueGlobal, Index: idx, Name: name}, nil
	}
	return ast.LValueTarget{}, &cerr.ParseError{Kind: cerr.UndeclaredIdentifier, Pos: pos, Name: name}
}

// fieldID resolves a field name to its global id, shared across every
// struct type, so `x.foo` can be compiled before the parser knows which
// struct type `x` will hold at runtime.
func (p *Parser) fieldID(name string) int {
	return p.gen.InternFieldName(name)
}

// nativeNames mirrors the stdlib registry's exported function names (see
// lang/stdlib), so a bare identifier that resolves to neither a local,
// upvalue nor global binding can still be recognized as a built-in rather
// than rejected as undeclared.
var nativeNames = map[string]bool{
	"print": true, "repr": true, "str": true, "int": true, "bool": true,
	"len": true, "range": true, "enumerate": true, "zip": true, "reversed": true,
	"sorted": true, "sum": true, "min": true, "max": true, "abs": true,
	"map": true, "filter": true, "reduce": true, "all": true, "any": true,
	"list": true, "vector": true, "set": true, "dict": true, "heap": true,
	"push": true, "pop": true, "last": true, "head": true, "tail": true, "init": true,
	"concat": true, "sort": true, "unique": true, "flatten": true,
	"char": true, "ord": true, "split": true, "join": true, "replace": true,
	"search": true, "trim": true, "lower": true, "upper": true, "format": true,
	"to_hex": true, "to_bin": true, "index_of": true,
	"assert": true, "memoize": true,
	"add": true, "sub": true, "mul": true, "div": true, "mod": true, "pow": true,
	"left_shift": true, "right_shift": true, "bitwise_and": true, "bitwise_or": true,
	"bitwise_xor": true,
	"min_by": true, "max_by": true, "sort_by": true, "group_by": true,
	"permutations": true, "combinations": true, "flat_map": true,
	"pop_front": true, "push_front": true, "insert": true, "remove": true,
	"clear": true, "peek": true, "set_union": true, "set_intersect": true,
	"set_difference": true, "dict_set_default": true, "left_find": true, "right_find": true,
}

// resolveIdentOrNative resolves name against locals/upvalues/globals first,
// falling back to a NativeFunctionExpr if it names a stdlib built-in, and
// only reporting UndeclaredIdentifier if neither applies.
func (p *Parser) resolveIdentOrNative(name string, pos token.Position) (ast.Expr, error) {
	if p.fs != nil {
		if idx, ok := p.fs.resolveLocal(name); ok {
			return &ast.LValueExpr{ExprBase: ast.ExprBase{P: pos}, Kind: ast.LValueLocal, Index: idx, Name: name}, nil
		}
		if idx, ok := p.fs.resolveUpvalue(name); ok {
			return &ast.LValueExpr{ExprBase: ast.ExprBase{P: pos}, Kind: ast.LValueUpValue, Index: idx, Name: name}, nil
		}
	}
	if idx, ok := p.globalIdx[name]; ok {
		return &ast.LValueExpr{ExprBase: ast.ExprBase{P: pos}, Kind: ast.LValueGlobal, Index: idx, Name: name}, nil
	}
	if nativeNames[name] {
		return &ast.NativeFunctionExpr{ExprBase: ast.ExprBase{P: pos}, Name: name}, nil
	}
	return nil, &cerr.ParseError{Kind: cerr.UndeclaredIdentifier, Pos: pos, Name: name}
}

// declareIdent introduces a new binding for name: a function-local if
// currently inside a function body, otherwise a new global slot.
func (p *Parser) declareIdent(name string, pos token.Position) (ast.LValueTarget, error) {
	if p.fs != nil {
		idx, conflict := p.fs.declare(name)
		if conflict {
			return ast.LValueTarget{}, &cerr.ParseError{Kind: cerr.LocalVariableConflict, Pos: pos, Name: name}
		}
		return ast.LValueTarget{Kind: ast.LValueLocal, Index: idx, Name: name}, nil
	}
	if idx, ok := p.globalIdx[name]; ok {
		return ast.LValueTarget{Kind: ast.LValueGlobal, Index: idx, Name: name}, nil
	}
	idx := len(p.globals)
	p.globals = append(p.globals, name)
	p.globalIdx[name] = idx
	return ast.LValueTarget{Kind: ast.LValueGlobal, Index: idx, Name: name}, nil
}
