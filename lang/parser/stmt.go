package parser

import (
	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/token"
)

func (p *parser) parseBlock() *ast.Block {
	lbrace := p.expect(token.LBRACE)
	block := &ast.Block{Lbrace: lbrace}

	for p.tok != token.RBRACE {
		if p.isExprStart() {
			// Could be a tail expression, or an expression statement followed by
			// more statements; the presence of a trailing ';' disambiguates.
			x := p.parseExpr()
			if p.tok == token.SEMI {
				semi := p.expect(token.SEMI)
				block.Stmts = append(block.Stmts, &ast.ExprStmt{X: x, Semi: semi})
				continue
			}
			if assignOp, ok := compoundAssignOp(p.tok); ok || p.tok == token.EQ {
				opPos := p.val.Pos
				p.advance()
				rhs := p.parseExpr()
				semi := p.expect(token.SEMI)
				tok := token.EQ
				if ok {
					tok = assignOp
				}
				block.Stmts = append(block.Stmts, &ast.AssignStmt{Left: x, Type: tok, Op: opPos, Right: rhs, Semi: semi})
				continue
			}
			// No trailing ';': x is this block's tail expression.
			block.Tail = x
			break
		}
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	block.Rbrace = p.expect(token.RBRACE)
	return block
}

// compoundAssignOp reports whether tok is a compound-assignment operator
// token (e.g. PLUS for `+=`) as scanned; zircon has no dedicated
// PLUS_EQ-style tokens, compound assignment is recognized by the parser
// seeing `<binop> '='` never emitted by the scanner as one token, so this
// always returns false today and is reserved for the grammar's future
// compound-assignment forms named in spec §4.2's operator table.
func compoundAssignOp(tok token.Token) (token.Token, bool) {
	return token.ILLEGAL, false
}

func (p *parser) isExprStart() bool {
	switch p.tok {
	case token.IDENT, token.INT, token.STRING, token.TRUE, token.FALSE,
		token.LPAREN, token.LBRACK, token.MINUS, token.BANG, token.IF, token.MATCH, token.LBRACE:
		return true
	default:
		return false
	}
}

func (p *parser) parseStmt() (st ast.Stmt) {
	defer p.recoverStmt(&st)

	switch p.tok {
	case token.LET:
		return p.parseLet()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	default:
		x := p.parseExpr()
		if ast.IsAssignable(x) && (p.tok == token.EQ) {
			opPos := p.expect(token.EQ)
			rhs := p.parseExpr()
			semi := p.expect(token.SEMI)
			return &ast.AssignStmt{Left: x, Type: token.EQ, Op: opPos, Right: rhs, Semi: semi}
		}
		semi := p.expect(token.SEMI)
		return &ast.ExprStmt{X: x, Semi: semi}
	}
}

func (p *parser) recoverStmt(st *ast.Stmt) {
	if r := recover(); r != nil {
		if r != errPanicMode {
			panic(r)
		}
		p.syncToStmt()
		*st = &ast.ExprStmt{X: &ast.UnitExpr{}}
	}
}

func (p *parser) syncToStmt() {
	for p.tok != token.EOF && p.tok != token.RBRACE {
		if p.tok == token.SEMI {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) parseLet() *ast.LetStmt {
	letPos := p.expect(token.LET)
	var mutPos token.Pos
	if p.tok == token.MUT {
		mutPos = p.expect(token.MUT)
	}
	pat := p.parsePattern()

	var colon token.Pos
	var typ ast.TypeExpr
	if p.tok == token.COLON {
		colon = p.expect(token.COLON)
		typ = p.parseType()
	}
	eq := p.expect(token.EQ)
	val := p.parseExpr()
	semi := p.expect(token.SEMI)
	return &ast.LetStmt{Let: letPos, Mut: mutPos, Pat: pat, Colon: colon, Type: typ, Eq: eq, Value: val, Semi: semi}
}

func (p *parser) parseWhile() *ast.WhileStmt {
	whilePos := p.expect(token.WHILE)
	cond := p.parseNoStructExpr()
	body := p.parseBlock()
	return &ast.WhileStmt{While: whilePos, Cond: cond, Body: body}
}

func (p *parser) parseFor() *ast.ForStmt {
	forPos := p.expect(token.FOR)
	pat := p.parsePattern()
	inPos := p.expect(token.IN)
	rng := p.parseNoStructExpr()

	var whilePos token.Pos
	var cond ast.Expr
	if p.tok == token.WHILE {
		whilePos = p.expect(token.WHILE)
		cond = p.parseNoStructExpr()
	}
	body := p.parseBlock()
	return &ast.ForStmt{For: forPos, Pat: pat, In: inPos, Range: rng, While: whilePos, Cond: cond, Body: body}
}

// parsePattern parses a `let`/`for`/match-arm pattern: identifier,
// wildcard, tuple destructuring, literal, path (enum variant), or range.
func (p *parser) parsePattern() ast.Pattern {
	switch p.tok {
	case token.UNDERSCORE:
		pos := p.expect(token.UNDERSCORE)
		return &ast.WildcardPattern{Start: pos}

	case token.LPAREN:
		lparen := p.expect(token.LPAREN)
		var elems []ast.Pattern
		for p.tok != token.RPAREN {
			elems = append(elems, p.parsePattern())
			if !p.accept(token.COMMA) {
				break
			}
		}
		rparen := p.expect(token.RPAREN)
		return &ast.TuplePattern{Lparen: lparen, Elems: elems, Rparen: rparen}

	case token.IDENT:
		return p.parsePath()

	case token.TRUE, token.FALSE:
		return p.parseBoolLiteral()

	case token.INT:
		low := p.parseIntLiteral()
		if p.tok == token.DOTDOT || p.tok == token.DOTDOTEQ {
			inclusive := p.tok == token.DOTDOTEQ
			opPos := p.val.Pos
			p.advance()
			high := p.parseIntLiteral()
			return &ast.RangeExpr{Low: low, Op: opPos, Inclusive: inclusive, High: high}
		}
		return low

	default:
		p.errorExpected(p.val.Pos, []token.Token{token.IDENT, token.UNDERSCORE, token.LPAREN, token.INT, token.TRUE, token.FALSE})
		panic(errPanicMode)
	}
}
