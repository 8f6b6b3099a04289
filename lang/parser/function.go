package parser

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/token"
)

// functionBody parses a parameter list and body - either a `{ ... }` block
// or a `-> expr` single-expression form - inside a fresh funcScope nested
// under the current one, then restores the current scope and returns a
// FunctionDecl ready for compiler.Generator.CompileFunctionDecl, plus the
// ClosedLocal opcodes the *enclosing* scope needs to emit to build this
// function's closure cells.
func (p *Parser) functionBody(name string) (*ast.FunctionDecl, []ast.ClosedLocal, error) {
	pos := p.peek().Pos
	parent := p.fs
	p.fs = newFuncScope(parent)

	params, variadic, err := p.parseParams()
	if err != nil {
		p.fs = parent
		return nil, nil, err
	}

	var body *ast.BlockStmt
	var exprBody ast.Expr
	if p.match(token.ARROW) {
		exprBody, err = p.assignment()
	} else {
		body, err = p.block()
	}
	if err != nil {
		p.fs = parent
		return nil, nil, err
	}

	fs := p.fs
	p.fs = parent

	closed := make([]ast.ClosedLocal, len(fs.upvalues))
	for i, uv := range fs.upvalues {
		closed[i] = ast.ClosedLocal{FromUpValue: uv.FromUpValue, Index: uv.Index}
	}

	fd := &ast.FunctionDecl{
		StmtBase:   ast.StmtBase{P: pos},
		Name:       name,
		Params:     params,
		Variadic:   variadic,
		Body:       body,
		ExprBody:   exprBody,
		FreeVars:   fs.upvalues,
		NumLocals:  fs.numLocals(),
		CellLocals: fs.cellLocals(),
	}
	return fd, closed, nil
}

// parseParams parses `(p1, p2 = default, ...rest)`. Parameters with a
// default must all follow every mandatory parameter; a trailing `...name`
// (variadic) must be the last parameter and may not carry a default.
func (p *Parser) parseParams() ([]ast.Param, bool, error) {
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, false, err
	}
	var params []ast.Param
	variadic := false
	sawDefault := false
	for !p.check(token.RPAREN) {
		isVarArg := p.match(token.ELLIPSIS)
		name, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, false, err
		}
		var def ast.Expr
		if p.match(token.EQ) {
			def, err = p.assignment()
			if err != nil {
				return nil, false, err
			}
			sawDefault = true
		} else if sawDefault && !isVarArg {
			return nil, false, &cerr.ParseError{Kind: cerr.NonDefaultParameterAfterDefaultParameter, Pos: name.Pos, Name: name.Text}
		}
		if _, err := p.declareIdent(name.Text, name.Pos); err != nil {
			return nil, false, err
		}
		params = append(params, ast.Param{Name: name.Text, Default: def})
		if isVarArg {
			variadic = true
			break
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, false, err
	}
	return params, variadic, nil
}

// lambdaExpr parses an anonymous `fn(...) {...}` or `fn(...) -> expr`
// expression, compiling its body immediately and leaving only a reference
// (FunctionExpr) at this call site.
func (p *Parser) lambdaExpr() (ast.Expr, error) {
	pos := p.advance().Pos // 'fn'
	fd, closed, err := p.functionBody("")
	if err != nil {
		return nil, err
	}
	idx, err := p.gen.CompileFunctionDecl(fd)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpr{ExprBase: ast.ExprBase{P: pos}, FuncIndex: idx, ClosedLocals: closed}, nil
}
