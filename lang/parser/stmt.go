package parser

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/token"
)

func (p *Parser) statement() (ast.Stmt, error) {
	switch p.peek().Kind {
	case token.LET:
		return p.letStmt()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	case token.FOR:
		return p.forStmt()
	case token.BREAK:
		pos := p.advance().Pos
		if p.fs == nil || p.fs.loopDepth == 0 {
			return nil, &cerr.ParseError{Kind: cerr.BreakOutsideOfLoop, Pos: pos}
		}
		p.match(token.SEMI)
		return &ast.BreakStmt{StmtBase: ast.StmtBase{P: pos}}, nil
	case token.CONTINUE:
		pos := p.advance().Pos
		if p.fs == nil || p.fs.loopDepth == 0 {
			return nil, &cerr.ParseError{Kind: cerr.ContinueOutsideOfLoop, Pos: pos}
		}
		p.match(token.SEMI)
		return &ast.ContinueStmt{StmtBase: ast.StmtBase{P: pos}}, nil
	case token.RETURN:
		return p.returnStmt()
	case token.STRUCT:
		return p.structDecl()
	case token.FN:
		if p.peekAt(1).Kind == token.IDENT {
			return p.namedFunctionDecl()
		}
	case token.LBRACE:
		return p.block()
	}
	pos := p.peek().Pos
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.match(token.SEMI)
	return &ast.ExprStmt{StmtBase: ast.StmtBase{P: pos}, Expr: e}, nil
}

func (p *Parser) letStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'let'
	name, err := p.expect(token.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(token.EQ) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	target, err := p.declareIdent(name.Text, name.Pos)
	if err != nil {
		return nil, err
	}
	p.match(token.SEMI)
	return &ast.LetStmt{StmtBase: ast.StmtBase{P: pos}, Target: target, Init: init}, nil
}

func (p *Parser) block() (*ast.BlockStmt, error) {
	open, err := p.expect(token.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	if p.fs != nil {
		p.fs.beginBlock()
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if p.fs != nil {
		p.fs.endBlock()
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.BlockStmt{StmtBase: ast.StmtBase{P: open.Pos}, Stmts: stmts}, nil
}

// ifStmt parses `if cond { ... }`, optionally followed by `elif cond {...}`
// chains and a final `else {...}`. An `elif` is handled as a nested IfStmt
// sitting in the Else slot, so the tree shape is identical to `if ... else
// if ... else ...` without the parser needing to special-case the chain.
func (p *Parser) ifStmt() (ast.Stmt, error) {
	return p.ifOrElifStmt(false)
}

func (p *Parser) ifOrElifStmt(asElif bool) (ast.Stmt, error) {
	var pos token.Position
	if asElif {
		pos = p.advance().Pos // 'elif'
	} else {
		pos = p.advance().Pos // 'if'
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	switch {
	case p.check(token.ELIF):
		elseStmt, err = p.ifOrElifStmt(true)
		if err != nil {
			return nil, err
		}
	case p.match(token.ELSE):
		elseStmt, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{StmtBase: ast.StmtBase{P: pos}, Cond: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'while'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.fs != nil {
		p.fs.loopDepth++
	}
	body, err := p.block()
	if p.fs != nil {
		p.fs.loopDepth--
	}
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{StmtBase: ast.StmtBase{P: pos}, Cond: cond, Body: body}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'for'
	name, err := p.expect(token.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	// The loop variable is scoped to the loop body; declare it inside the
	// body's block so it doesn't leak into the enclosing scope.
	if p.fs != nil {
		p.fs.beginBlock()
	}
	target, err := p.declareIdent(name.Text, name.Pos)
	if err != nil {
		return nil, err
	}
	if p.fs != nil {
		p.fs.loopDepth++
	}
	body, err := p.blockNoScope()
	if p.fs != nil {
		p.fs.loopDepth--
		p.fs.endBlock()
	}
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{StmtBase: ast.StmtBase{P: pos}, Target: target, Iterable: iter, Body: body}, nil
}

// blockNoScope parses a `{ ... }` block without opening its own nested
// scope, for constructs (like `for`) whose header already opened the scope
// the body's declarations belong to.
func (p *Parser) blockNoScope() (*ast.BlockStmt, error) {
	open, err := p.expect(token.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.BlockStmt{StmtBase: ast.StmtBase{P: open.Pos}, Stmts: stmts}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	pos := p.advance().Pos // 'return'
	if p.check(token.SEMI) || p.check(token.RBRACE) || p.check(token.EOF) {
		p.match(token.SEMI)
		return &ast.ReturnStmt{StmtBase: ast.StmtBase{P: pos}}, nil
	}
	v, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.match(token.SEMI)
	return &ast.ReturnStmt{StmtBase: ast.StmtBase{P: pos}, Value: v}, nil
}

func (p *Parser) structDecl() (ast.Stmt, error) {
	pos := p.advance().Pos // 'struct'
	if p.fs != nil {
		return nil, &cerr.ParseError{Kind: cerr.StructNotInGlobalScope, Pos: pos}
	}
	name, err := p.expect(token.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var fields []string
	seen := map[string]bool{}
	for !p.check(token.RPAREN) {
		f, err := p.expect(token.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		if seen[f.Text] {
			return nil, &cerr.ParseError{Kind: cerr.DuplicateFieldName, Pos: f.Pos, Name: f.Text}
		}
		seen[f.Text] = true
		fields = append(fields, f.Text)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	p.match(token.SEMI)
	return &ast.StructDecl{StmtBase: ast.StmtBase{P: pos}, Name: name.Text, Fields: fields}, nil
}

// namedFunctionDecl parses `fn name(params) { body }`, declaring `name` in
// the enclosing scope before parsing the body so the function can recurse.
func (p *Parser) namedFunctionDecl() (ast.Stmt, error) {
	pos := p.advance().Pos // 'fn'
	name, err := p.expect(token.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	target, err := p.declareIdent(name.Text, name.Pos)
	if err != nil {
		return nil, err
	}
	fn, closed, err := p.functionBody(name.Text)
	if err != nil {
		return nil, err
	}
	idx, err := p.gen.CompileFunctionDecl(fn)
	if err != nil {
		return nil, err
	}
	fnExpr := &ast.FunctionExpr{ExprBase: ast.ExprBase{P: pos}, FuncIndex: idx, ClosedLocals: closed}
	return &ast.ExprStmt{StmtBase: ast.StmtBase{P: pos}, Expr: &ast.AssignmentExpr{ExprBase: ast.ExprBase{P: pos}, Target: target, Rhs: fnExpr}}, nil
}
