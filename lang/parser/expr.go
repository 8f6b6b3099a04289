package parser

import (
	"strconv"

	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/scanner"
	"github.com/cordy-lang/cordy/lang/token"
)

// expression is the entry point for parsing one expression, first trying
// the pattern-assignment shape (`a, b, ...rest = rhs`) since it cannot be
// disambiguated from a plain expression without a comma lookahead, then
// falling back to ordinary precedence-climbing.
func (p *Parser) expression() (ast.Expr, error) {
	start := p.pos
	if e, ok, err := p.tryPatternAssignment(); err != nil {
		return nil, err
	} else if ok {
		return e, nil
	}
	p.pos = start
	return p.assignment()
}

type patternTerm struct {
	name     scanner.Tok
	isVarArg bool
}

func (p *Parser) tryPatternAssignment() (ast.Expr, bool, error) {
	start := p.pos
	var terms []patternTerm
	sawVarArg := false
	for {
		isVarArg := p.match(token.ELLIPSIS)
		if !p.check(token.IDENT) {
			p.pos = start
			return nil, false, nil
		}
		nameTok := p.advance()
		if isVarArg {
			if sawVarArg {
				return nil, false, &cerr.ParseError{Kind: cerr.MultipleVariadicTermsInPattern, Pos: nameTok.Pos}
			}
			sawVarArg = true
		}
		terms = append(terms, patternTerm{name: nameTok, isVarArg: isVarArg})
		if p.match(token.COMMA) {
			continue
		}
		break
	}
	if len(terms) < 2 || !p.check(token.EQ) {
		p.pos = start
		return nil, false, nil
	}
	pos := p.advance().Pos // '='
	rhs, err := p.assignment()
	if err != nil {
		return nil, false, err
	}
	elements := make([]ast.PatternElement, len(terms))
	for i, t := range terms {
		target, err := p.resolveIdent(t.name.Text, t.name.Pos)
		if err != nil {
			return nil, false, err
		}
		elements[i] = ast.PatternElement{Target: ast.LValueTarget(target), IsVarArg: t.isVarArg}
	}
	p.match(token.SEMI)
	return &ast.PatternAssignmentExpr{ExprBase: ast.ExprBase{P: pos}, Elements: elements, Rhs: rhs}, true, nil
}

var assignOps = map[token.Token]ast.BinOp{
	token.PLUS_EQ:    ast.OpAdd,
	token.MINUS_EQ:   ast.OpSub,
	token.STAR_EQ:    ast.OpMul,
	token.SLASH_EQ:   ast.OpDiv,
	token.CARET_EQ:   ast.OpPow,
	token.PERCENT_EQ: ast.OpMod,
	token.AMP_EQ:     ast.OpBitwiseAnd,
	token.PIPE_EQ:    ast.OpBitwiseOr,
	token.LTLT_EQ:    ast.OpLeftShift,
	token.GTGT_EQ:    ast.OpRightShift,
}

func (p *Parser) assignment() (ast.Expr, error) {
	lhs, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if p.check(token.EQ) {
		pos := p.advance().Pos
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return p.buildAssignment(lhs, rhs, pos)
	}
	if op, ok := assignOps[p.peek().Kind]; ok {
		pos := p.advance().Pos
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return p.buildOpAssignment(lhs, op, false, rhs, pos)
	}
	if p.check(token.DOT_EQ) {
		pos := p.advance().Pos
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return p.buildOpAssignment(lhs, ast.OpComposeAssign, true, rhs, pos)
	}
	return lhs, nil
}

func (p *Parser) buildAssignment(lhs, rhs ast.Expr, pos token.Position) (ast.Expr, error) {
	switch l := lhs.(type) {
	case *ast.LValueExpr:
		return &ast.AssignmentExpr{ExprBase: ast.ExprBase{P: pos}, Target: lvalueTarget(l), Rhs: rhs}, nil
	case *ast.IndexExpr:
		return &ast.ArrayAssignmentExpr{ExprBase: ast.ExprBase{P: pos}, Array: l.Target, Index: l.Index, Rhs: rhs}, nil
	case *ast.GetFieldExpr:
		return &ast.SetFieldExpr{ExprBase: ast.ExprBase{P: pos}, Lhs: l.Lhs, FieldID: l.FieldID, FieldName: l.FieldName, Rhs: rhs}, nil
	}
	return nil, &cerr.ParseError{Kind: cerr.InvalidAssignmentTarget, Pos: pos}
}

// buildOpAssignment handles both `x += rhs` (isCompose false, op a real
// BinOp) and `x .= f` (isCompose true, op is ast.OpComposeAssign).
func (p *Parser) buildOpAssignment(lhs ast.Expr, op ast.BinOp, isCompose bool, rhs ast.Expr, pos token.Position) (ast.Expr, error) {
	switch l := lhs.(type) {
	case *ast.LValueExpr:
		target := lvalueTarget(l)
		var newValue ast.Expr
		if isCompose {
			newValue = &ast.ComposeExpr{ExprBase: ast.ExprBase{P: pos}, Arg: l, Fn: rhs}
		} else {
			newValue = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: op, Lhs: l, Rhs: rhs}
		}
		return &ast.AssignmentExpr{ExprBase: ast.ExprBase{P: pos}, Target: target, Rhs: newValue}, nil
	case *ast.IndexExpr:
		return &ast.ArrayOpAssignmentExpr{ExprBase: ast.ExprBase{P: pos}, Array: l.Target, Index: l.Index, Op: op, Rhs: rhs}, nil
	case *ast.GetFieldExpr:
		return &ast.SwapFieldExpr{ExprBase: ast.ExprBase{P: pos}, Lhs: l.Lhs, FieldID: l.FieldID, FieldName: l.FieldName, Op: op, Rhs: rhs}, nil
	}
	return nil, &cerr.ParseError{Kind: cerr.InvalidAssignmentTarget, Pos: pos}
}

func lvalueTarget(e *ast.LValueExpr) ast.LValueTarget {
	return ast.LValueTarget{Kind: e.Kind, Index: e.Index, Name: e.Name}
}

// ternary handles the `if cond then a else b` expression form, distinct from
// the statement-level `if cond { } else { }` (which statement() intercepts
// before ever reaching here).
func (p *Parser) ternary() (ast.Expr, error) {
	if p.check(token.IF) {
		pos := p.advance().Pos
		cond, err := p.logicalOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN, "'then'"); err != nil {
			return nil, err
		}
		ifTrue, err := p.ternary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ELSE, "'else'"); err != nil {
			return nil, err
		}
		ifFalse, err := p.ternary()
		if err != nil {
			return nil, err
		}
		return &ast.IfThenElseExpr{ExprBase: ast.ExprBase{P: pos}, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}, nil
	}
	return p.logicalOr()
}

func (p *Parser) logicalOr() (ast.Expr, error) {
	lhs, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.OR) {
		pos := p.advance().Pos
		rhs, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.LogicalOrExpr{ExprBase: ast.ExprBase{P: pos}, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) logicalAnd() (ast.Expr, error) {
	lhs, err := p.logicalNot()
	if err != nil {
		return nil, err
	}
	for p.check(token.AND) {
		pos := p.advance().Pos
		rhs, err := p.logicalNot()
		if err != nil {
			return nil, err
		}
		lhs = &ast.LogicalAndExpr{ExprBase: ast.ExprBase{P: pos}, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) logicalNot() (ast.Expr, error) {
	if p.check(token.NOT) {
		pos := p.advance().Pos
		arg, err := p.logicalNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.UnaryNot, Arg: arg}, nil
	}
	return p.comparison()
}

var compareOps = map[token.Token]ast.BinOp{
	token.LT:   ast.OpLessThan,
	token.LE:   ast.OpLessThanEqual,
	token.GT:   ast.OpGreaterThan,
	token.GE:   ast.OpGreaterThanEqual,
	token.EQEQ: ast.OpEqual,
	token.NEQ:  ast.OpNotEqual,
}

func (p *Parser) comparison() (ast.Expr, error) {
	lhs, err := p.isIn()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := compareOps[p.peek().Kind]
		if !ok {
			return lhs, nil
		}
		pos := p.advance().Pos
		rhs, err := p.isIn()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: op, Lhs: lhs, Rhs: rhs}
	}
}

func (p *Parser) isIn() (ast.Expr, error) {
	lhs, err := p.bitwiseOr()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.IS):
			pos := p.advance().Pos
			negate := p.match(token.NOT)
			rhs, err := p.bitwiseOr()
			if err != nil {
				return nil, err
			}
			e := ast.Expr(&ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.OpIs, Lhs: lhs, Rhs: rhs})
			if negate {
				e = &ast.UnaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.UnaryNot, Arg: e}
			}
			lhs = e
		case p.check(token.IN):
			pos := p.advance().Pos
			rhs, err := p.bitwiseOr()
			if err != nil {
				return nil, err
			}
			lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.OpIn, Lhs: lhs, Rhs: rhs}
		case p.check(token.NOT) && p.peekAt(1).Kind == token.IN:
			p.advance()
			pos := p.advance().Pos
			rhs, err := p.bitwiseOr()
			if err != nil {
				return nil, err
			}
			e := ast.Expr(&ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.OpIn, Lhs: lhs, Rhs: rhs})
			lhs = &ast.UnaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.UnaryNot, Arg: e}
		default:
			return lhs, nil
		}
	}
}

func (p *Parser) bitwiseOr() (ast.Expr, error) {
	lhs, err := p.bitwiseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.PIPE) {
		pos := p.advance().Pos
		rhs, err := p.bitwiseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.OpBitwiseOr, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) bitwiseAnd() (ast.Expr, error) {
	lhs, err := p.shift()
	if err != nil {
		return nil, err
	}
	for p.check(token.AMP) {
		pos := p.advance().Pos
		rhs, err := p.shift()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.OpBitwiseAnd, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) shift() (ast.Expr, error) {
	lhs, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.check(token.LTLT) || p.check(token.GTGT) {
		op := ast.OpLeftShift
		if p.check(token.GTGT) {
			op = ast.OpRightShift
		}
		pos := p.advance().Pos
		rhs, err := p.additive()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) additive() (ast.Expr, error) {
	lhs, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := ast.OpAdd
		if p.check(token.MINUS) {
			op = ast.OpSub
		}
		pos := p.advance().Pos
		rhs, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	lhs, err := p.power()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		var op ast.BinOp
		switch p.peek().Kind {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		pos := p.advance().Pos
		rhs, err := p.power()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

// power is right-associative: `2 ** 3 ** 2 == 2 ** (3 ** 2)`.
func (p *Parser) power() (ast.Expr, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	if p.check(token.CARET) {
		pos := p.advance().Pos
		rhs, err := p.power()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.OpPow, Lhs: lhs, Rhs: rhs}, nil
	}
	return lhs, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	switch p.peek().Kind {
	case token.MINUS:
		pos := p.advance().Pos
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.UnarySub, Arg: arg}, nil
	case token.TILDE:
		pos := p.advance().Pos
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{P: pos}, Op: ast.UnaryBitwiseNot, Arg: arg}, nil
	}
	return p.compose()
}

// compose handles the `arg . f` pipe operator, left-associative:
// `a . f . g == g(f(a))`. It is parsed between unary and postfix, so it
// binds tighter than every unary and binary operator.
func (p *Parser) compose() (ast.Expr, error) {
	lhs, err := p.postfix()
	if err != nil {
		return nil, err
	}
	for p.check(token.DOT) {
		pos := p.advance().Pos
		fn, err := p.postfix()
		if err != nil {
			return nil, err
		}
		lhs = &ast.ComposeExpr{ExprBase: ast.ExprBase{P: pos}, Arg: lhs, Fn: fn}
	}
	return lhs, nil
}

// postfix handles calls, indexing/slicing and field access chained directly
// onto a primary expression, e.g. `f(1)(2)[0]->field`.
func (p *Parser) postfix() (ast.Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case token.LPAREN:
			e, err = p.finishCall(e)
		case token.LBRACK:
			e, err = p.finishIndexOrSlice(e)
		case token.ARROW:
			e, err = p.finishFieldAccess(e)
		default:
			return e, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) finishCall(fn ast.Expr) (ast.Expr, error) {
	pos := p.advance().Pos // '('
	var args []ast.Expr
	anyUnroll := false
	for !p.check(token.RPAREN) {
		if p.check(token.ELLIPSIS) {
			upos := p.advance().Pos
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.UnrollExpr{ExprBase: ast.ExprBase{P: upos}, Arg: arg, First: len(args) == 0})
			anyUnroll = true
		} else {
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return &ast.EvalExpr{ExprBase: ast.ExprBase{P: pos}, Fn: fn, Args: args, AnyUnroll: anyUnroll}, nil
}

func (p *Parser) finishIndexOrSlice(target ast.Expr) (ast.Expr, error) {
	pos := p.advance().Pos // '['
	var low, high, step ast.Expr
	var err error
	hasLow, hasHigh, hasStep := false, false, false
	if !p.check(token.COLON) {
		low, err = p.assignment()
		if err != nil {
			return nil, err
		}
		hasLow = true
	}
	if !p.match(token.COLON) {
		if _, err := p.expect(token.RBRACK, "']'"); err != nil {
			return nil, err
		}
		if !hasLow {
			return nil, &cerr.ParseError{Kind: cerr.ExpectedExpressionTerminal, Pos: pos}
		}
		return &ast.IndexExpr{ExprBase: ast.ExprBase{P: pos}, Target: target, Index: low}, nil
	}
	if !p.check(token.COLON) && !p.check(token.RBRACK) {
		high, err = p.assignment()
		if err != nil {
			return nil, err
		}
		hasHigh = true
	}
	if p.match(token.COLON) {
		if !p.check(token.RBRACK) {
			step, err = p.assignment()
			if err != nil {
				return nil, err
			}
			hasStep = true
		}
	}
	if _, err := p.expect(token.RBRACK, "']'"); err != nil {
		return nil, err
	}
	if !hasLow {
		low = nilAt(pos)
	}
	if !hasHigh {
		high = nilAt(pos)
	}
	if hasStep {
		return &ast.SliceWithStepExpr{ExprBase: ast.ExprBase{P: pos}, Target: target, Low: low, High: high, Step: step}, nil
	}
	return &ast.SliceExpr{ExprBase: ast.ExprBase{P: pos}, Target: target, Low: low, High: high}, nil
}

func nilAt(pos token.Position) ast.Expr {
	return &ast.NilExpr{ExprBase: ast.ExprBase{P: pos}}
}

func (p *Parser) finishFieldAccess(lhs ast.Expr) (ast.Expr, error) {
	pos := p.advance().Pos // '->'
	name, err := p.expect(token.IDENT, "field name")
	if err != nil {
		return nil, &cerr.ParseError{Kind: cerr.ExpectedFieldNameAfterArrow, Pos: pos}
	}
	fieldID := p.fieldID(name.Text)
	return &ast.GetFieldExpr{ExprBase: ast.ExprBase{P: pos}, Lhs: lhs, FieldID: fieldID, FieldName: name.Text}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case token.NIL:
		p.advance()
		return &ast.NilExpr{ExprBase: ast.ExprBase{P: t.Pos}}, nil
	case token.EXIT:
		p.advance()
		return &ast.ExitExpr{ExprBase: ast.ExprBase{P: t.Pos}}, nil
	case token.TRUE:
		p.advance()
		return &ast.BoolExpr{ExprBase: ast.ExprBase{P: t.Pos}, Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.BoolExpr{ExprBase: ast.ExprBase{P: t.Pos}, Value: false}, nil
	case token.INT:
		p.advance()
		return p.parseIntLiteral(t)
	case token.COMPLEX:
		p.advance()
		return p.parseComplexLiteral(t)
	case token.STRING:
		p.advance()
		return &ast.StrExpr{ExprBase: ast.ExprBase{P: t.Pos}, Value: t.Text}, nil
	case token.IDENT:
		p.advance()
		return p.resolveIdentOrNative(t.Text, t.Pos)
	case token.LPAREN:
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case token.LBRACK:
		return p.listOrVectorLiteral()
	case token.LBRACE:
		return p.setOrDictLiteral()
	case token.FN:
		return p.lambdaExpr()
	case token.ARROW:
		// A bare `->field` is a first-class field accessor, e.g. `xs.map(->name)`.
		pos := p.advance().Pos
		name, err := p.expect(token.IDENT, "field name")
		if err != nil {
			return nil, &cerr.ParseError{Kind: cerr.ExpectedFieldNameAfterArrow, Pos: pos}
		}
		return &ast.GetFieldFunctionExpr{ExprBase: ast.ExprBase{P: pos}, FieldID: p.fieldID(name.Text), FieldName: name.Text}, nil
	}
	return nil, &cerr.ParseError{Kind: cerr.ExpectedExpressionTerminal, Pos: t.Pos, Got: t.Kind, GotText: t.Text}
}

func (p *Parser) parseIntLiteral(t scanner.Tok) (ast.Expr, error) {
	var v int64
	var err error
	switch {
	case len(t.Text) > 2 && (t.Text[1] == 'x' || t.Text[1] == 'X'):
		v, err = parseBase(t.Text[2:], 16)
	case len(t.Text) > 2 && (t.Text[1] == 'b' || t.Text[1] == 'B'):
		v, err = parseBase(t.Text[2:], 2)
	default:
		v, err = parseBase(t.Text, 10)
	}
	if err != nil {
		return nil, &cerr.ParseError{Kind: cerr.ExpectedExpressionTerminal, Pos: t.Pos, GotText: t.Text}
	}
	return &ast.IntExpr{ExprBase: ast.ExprBase{P: t.Pos}, Value: v}, nil
}

func parseBase(text string, base int) (int64, error) {
	return strconv.ParseInt(text, base, 64)
}

func (p *Parser) parseComplexLiteral(t scanner.Tok) (ast.Expr, error) {
	v, err := strconv.ParseInt(t.Text, 10, 64)
	if err != nil {
		return nil, &cerr.ParseError{Kind: cerr.ExpectedExpressionTerminal, Pos: t.Pos, GotText: t.Text}
	}
	return &ast.ComplexExpr{ExprBase: ast.ExprBase{P: t.Pos}, Real: 0, Imag: v}, nil
}

// listOrVectorLiteral parses `[a, b, c]` (List) or `(a, b, c)`-style vector
// literal spelled `[a, b, c;]` - Cordy distinguishes a Vector literal from a
// List literal with a trailing `;` before the closing bracket.
func (p *Parser) listOrVectorLiteral() (ast.Expr, error) {
	pos := p.advance().Pos // '['
	var args []ast.Expr
	kind := ast.LiteralList
	for !p.check(token.RBRACK) {
		if p.check(token.SEMI) {
			p.advance()
			kind = ast.LiteralVector
			continue
		}
		if p.check(token.ELLIPSIS) {
			upos := p.advance().Pos
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.UnrollExpr{ExprBase: ast.ExprBase{P: upos}, Arg: arg, First: len(args) == 0})
		} else {
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACK, "']'"); err != nil {
		return nil, err
	}
	return &ast.LiteralExpr{ExprBase: ast.ExprBase{P: pos}, Kind: kind, Args: args}, nil
}

// setOrDictLiteral parses `{a, b, c}` (Set) or `{k: v, k2: v2}` (Dict),
// disambiguated by whether the first element is followed by `:`.
func (p *Parser) setOrDictLiteral() (ast.Expr, error) {
	pos := p.advance().Pos // '{'
	if p.check(token.RBRACE) {
		p.advance()
		return &ast.LiteralExpr{ExprBase: ast.ExprBase{P: pos}, Kind: ast.LiteralSet, Args: nil}, nil
	}
	var args []ast.Expr
	kind := ast.LiteralSet
	first := true
	for !p.check(token.RBRACE) {
		if p.check(token.ELLIPSIS) {
			upos := p.advance().Pos
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.UnrollExpr{ExprBase: ast.ExprBase{P: upos}, Arg: arg, First: len(args) == 0})
		} else {
			e, err := p.assignment()
			if err != nil {
				return nil, err
			}
			if first && p.check(token.COLON) {
				kind = ast.LiteralDict
			}
			args = append(args, e)
			if kind == ast.LiteralDict {
				if _, err := p.expect(token.COLON, "':'"); err != nil {
					return nil, err
				}
				v, err := p.assignment()
				if err != nil {
					return nil, err
				}
				args = append(args, v)
			}
		}
		first = false
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.LiteralExpr{ExprBase: ast.ExprBase{P: pos}, Kind: kind, Args: args}, nil
}
