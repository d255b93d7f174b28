package parser

import (
	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/token"
)

// parseExpr parses a full expression at the lowest precedence.
func (p *parser) parseExpr() ast.Expr {
	return p.parseBinary(token.LowestPrec + 1)
}

// parseNoStructExpr parses an expression in a context where a trailing
// `Name { ... }` must not be interpreted as a struct literal — the
// condition of `if`/`while`/`for` and the scrutinee of `match`, matching
// Rust's own disambiguation rule (spec §4.2).
func (p *parser) parseNoStructExpr() ast.Expr {
	save := p.noStructLit
	p.noStructLit = true
	x := p.parseExpr()
	p.noStructLit = save
	return x
}

func (p *parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseCast()
	for {
		prec := token.BinaryPrecedence(p.tok)
		if prec == token.LowestPrec || prec < minPrec {
			break
		}
		opTok := p.tok
		opPos := p.val.Pos
		p.advance()
		right := p.parseBinary(prec + 1)
		if opTok == token.DOTDOT || opTok == token.DOTDOTEQ {
			left = &ast.RangeExpr{Low: left, Op: opPos, Inclusive: opTok == token.DOTDOTEQ, High: right}
		} else {
			left = &ast.BinaryExpr{Left: left, Type: opTok, Op: opPos, Right: right}
		}
	}
	return left
}

func (p *parser) parseCast() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.AS {
		asPos := p.expect(token.AS)
		typ := p.parseType()
		x = &ast.CastExpr{X: x, As: asPos, Type: typ}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.MINUS, token.BANG:
		opTok := p.tok
		opPos := p.val.Pos
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Type: opTok, Op: opPos, X: x}
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parseAtom()
	for {
		switch p.tok {
		case token.DOT:
			dot := p.expect(token.DOT)
			if p.tok == token.INT {
				idxPos := p.val.Pos
				idx := int(p.val.Int.Int64())
				p.expect(token.INT)
				x = &ast.TupleIndexExpr{X: x, Dot: dot, Index: idx, End_: idxPos}
				continue
			}
			name := p.parseIdent()
			if p.tok == token.LPAREN {
				lparen := p.expect(token.LPAREN)
				args := p.parseArgs()
				rparen := p.expect(token.RPAREN)
				x = &ast.MethodCallExpr{Recv: x, Dot: dot, Method: name, Lparen: lparen, Args: args, Rparen: rparen}
				continue
			}
			x = &ast.FieldExpr{X: x, Dot: dot, Field: name}

		case token.LPAREN:
			lparen := p.expect(token.LPAREN)
			args := p.parseArgs()
			rparen := p.expect(token.RPAREN)
			x = &ast.CallExpr{Fn: x, Lparen: lparen, Args: args, Rparen: rparen}

		case token.BANG:
			bang := p.expect(token.BANG)
			lparen := p.expect(token.LPAREN)
			args := p.parseArgs()
			rparen := p.expect(token.RPAREN)
			x = &ast.CallExpr{Fn: x, Bang: bang, Lparen: lparen, Args: args, Rparen: rparen}

		case token.LBRACK:
			lbrack := p.expect(token.LBRACK)
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			x = &ast.IndexExpr{X: x, Lbrack: lbrack, Index: idx, Rbrack: rbrack}

		default:
			return x
		}
	}
}

func (p *parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	for p.tok != token.RPAREN {
		args = append(args, p.parseExpr())
		if !p.accept(token.COMMA) {
			break
		}
	}
	return args
}

func (p *parser) parseAtom() ast.Expr {
	switch p.tok {
	case token.INT:
		return p.parseIntLiteral()

	case token.TRUE, token.FALSE:
		return p.parseBoolLiteral()

	case token.STRING:
		pos := p.val.Pos
		raw, val := p.val.Raw, p.val.Str
		p.expect(token.STRING)
		return &ast.StringLiteralExpr{Start: pos, Raw: raw, Value: val}

	case token.IDENT:
		path := p.parsePath()
		if !p.noStructLit && p.tok == token.LBRACE {
			return p.parseStructLit(path)
		}
		if len(path.Segments) == 1 {
			return path.Segments[0]
		}
		return path

	case token.LPAREN:
		lparen := p.expect(token.LPAREN)
		if p.tok == token.RPAREN {
			rparen := p.expect(token.RPAREN)
			return &ast.UnitExpr{Lparen: lparen, Rparen: rparen}
		}
		first := p.parseExpr()
		if p.tok == token.COMMA {
			elems := []ast.Expr{first}
			for p.accept(token.COMMA) {
				if p.tok == token.RPAREN {
					break
				}
				elems = append(elems, p.parseExpr())
			}
			rparen := p.expect(token.RPAREN)
			return &ast.TupleExpr{Lparen: lparen, Elems: elems, Rparen: rparen}
		}
		rparen := p.expect(token.RPAREN)
		return &ast.ParenExpr{Lparen: lparen, X: first, Rparen: rparen}

	case token.LBRACK:
		lbrack := p.expect(token.LBRACK)
		first := p.parseExpr()
		if p.tok == token.SEMI {
			p.expect(token.SEMI)
			size := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			return &ast.ArrayRepeatExpr{Lbrack: lbrack, Value: first, Size: size, Rbrack: rbrack}
		}
		elems := []ast.Expr{first}
		for p.accept(token.COMMA) {
			if p.tok == token.RBRACK {
				break
			}
			elems = append(elems, p.parseExpr())
		}
		rbrack := p.expect(token.RBRACK)
		return &ast.ArrayExpr{Lbrack: lbrack, Elems: elems, Rbrack: rbrack}

	case token.LBRACE:
		return &ast.BlockExpr{Block: p.parseBlock()}

	case token.IF:
		return p.parseIf()

	case token.MATCH:
		return p.parseMatch()

	default:
		p.errorExpected(p.val.Pos, []token.Token{token.IDENT, token.INT, token.STRING, token.TRUE, token.FALSE, token.LPAREN, token.LBRACK, token.LBRACE, token.IF, token.MATCH})
		panic(errPanicMode)
	}
}

func (p *parser) parseIntLiteral() *ast.IntLiteralExpr {
	pos, raw, val := p.val.Pos, p.val.Raw, p.val.Int
	p.expect(token.INT)
	return &ast.IntLiteralExpr{Start: pos, Raw: raw, Value: val}
}

func (p *parser) parseBoolLiteral() *ast.BoolLiteralExpr {
	pos := p.val.Pos
	val := p.tok == token.TRUE
	p.expect(p.tok)
	return &ast.BoolLiteralExpr{Start: pos, Value: val}
}

func (p *parser) parseStructLit(name *ast.PathExpr) *ast.StructLitExpr {
	lbrace := p.expect(token.LBRACE)
	var fields []*ast.StructFieldInit
	for p.tok != token.RBRACE {
		fname := p.parseIdent()
		colon := p.expect(token.COLON)
		val := p.parseExpr()
		fields = append(fields, &ast.StructFieldInit{Name: fname, Colon: colon, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.StructLitExpr{Name: name, Lbrace: lbrace, Fields: fields, Rbrace: rbrace}
}

func (p *parser) parseIf() *ast.IfExpr {
	ifPos := p.expect(token.IF)
	cond := p.parseNoStructExpr()
	then := p.parseBlock()

	var elsePos token.Pos
	var elseExpr ast.Expr
	if p.tok == token.ELSE {
		elsePos = p.expect(token.ELSE)
		if p.tok == token.IF {
			elseExpr = p.parseIf()
		} else {
			elseExpr = &ast.BlockExpr{Block: p.parseBlock()}
		}
	}
	return &ast.IfExpr{If: ifPos, Cond: cond, Then: then, Else: elsePos, ElseExpr: elseExpr}
}

func (p *parser) parseMatch() *ast.MatchExpr {
	matchPos := p.expect(token.MATCH)
	scrutinee := p.parseNoStructExpr()
	lbrace := p.expect(token.LBRACE)

	var arms []*ast.MatchArm
	for p.tok != token.RBRACE {
		pat := p.parsePattern()
		var ifPos token.Pos
		var guard ast.Expr
		if p.tok == token.IF {
			ifPos = p.expect(token.IF)
			guard = p.parseExpr()
		}
		arrow := p.expect(token.FATARROW)
		body := p.parseExpr()
		var comma token.Pos
		if p.tok == token.COMMA {
			comma = p.expect(token.COMMA)
		}
		arms = append(arms, &ast.MatchArm{Pat: pat, If: ifPos, Guard: guard, Arrow: arrow, Body: body, Comma: comma})
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.MatchExpr{Match: matchPos, Scrutinee: scrutinee, Lbrace: lbrace, Arms: arms, Rbrace: rbrace}
}
