package parser

import (
	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/token"
)

func (p *parser) parseItem() (it ast.Item) {
	defer p.recoverItem(&it)

	switch p.tok {
	case token.FN:
		return p.parseFn()
	case token.CONST:
		return p.parseConst()
	case token.STATIC:
		return p.parseStatic()
	case token.TYPE:
		return p.parseTypeAlias()
	case token.STRUCT:
		return p.parseStruct()
	case token.ENUM:
		return p.parseEnum()
	case token.IMPL:
		return p.parseImpl()
	case token.MOD:
		return p.parseMod()
	case token.USE:
		return p.parseUse()
	default:
		p.errorExpected(p.val.Pos, []token.Token{token.FN, token.CONST, token.STATIC, token.TYPE, token.STRUCT, token.ENUM, token.IMPL, token.MOD, token.USE})
		panic(errPanicMode)
	}
}

func (p *parser) recoverItem(it *ast.Item) {
	if r := recover(); r != nil {
		if r != errPanicMode {
			panic(r)
		}
		p.syncToItem()
		*it = &ast.ConstItem{} // placeholder so the chunk still has a non-nil node
	}
}

func (p *parser) parseIdent() *ast.IdentExpr {
	pos := p.val.Pos
	lit := p.val.Raw
	p.expect(token.IDENT)
	return &ast.IdentExpr{Start: pos, End_: pos, Lit: lit}
}

func (p *parser) parseFn() *ast.FnItem {
	fnPos := p.expect(token.FN)
	name := p.parseIdent()
	lparen := p.expect(token.LPAREN)

	var params []*ast.Field
	for p.tok != token.RPAREN {
		params = append(params, p.parseField())
		if !p.accept(token.COMMA) {
			break
		}
	}
	rparen := p.expect(token.RPAREN)

	var arrow token.Pos
	var ret ast.TypeExpr
	if p.tok == token.ARROW {
		arrow = p.expect(token.ARROW)
		ret = p.parseType()
	}

	body := p.parseBlock()
	return &ast.FnItem{Fn: fnPos, Name: name, Lparen: lparen, Params: params, Rparen: rparen, Arrow: arrow, Ret: ret, Body: body}
}

func (p *parser) parseField() *ast.Field {
	name := p.parseIdent()
	colon := p.expect(token.COLON)
	typ := p.parseType()
	return &ast.Field{Name: name, Colon: colon, Type: typ}
}

func (p *parser) parseConst() *ast.ConstItem {
	constPos := p.expect(token.CONST)
	name := p.parseIdent()
	colon := p.expect(token.COLON)
	typ := p.parseType()
	eq := p.expect(token.EQ)
	val := p.parseExpr()
	semi := p.expect(token.SEMI)
	return &ast.ConstItem{Const: constPos, Name: name, Colon: colon, Type: typ, Eq: eq, Value: val, Semi: semi}
}

func (p *parser) parseStatic() *ast.StaticItem {
	staticPos := p.expect(token.STATIC)
	p.accept(token.MUT)
	name := p.parseIdent()
	colon := p.expect(token.COLON)
	typ := p.parseType()
	eq := p.expect(token.EQ)
	val := p.parseExpr()
	semi := p.expect(token.SEMI)
	return &ast.StaticItem{Static: staticPos, Name: name, Colon: colon, Type: typ, Eq: eq, Value: val, Semi: semi}
}

func (p *parser) parseTypeAlias() *ast.TypeItem {
	typePos := p.expect(token.TYPE)
	name := p.parseIdent()
	eq := p.expect(token.EQ)
	val := p.parseType()
	semi := p.expect(token.SEMI)
	return &ast.TypeItem{Type: typePos, Name: name, Eq: eq, Value: val, Semi: semi}
}

func (p *parser) parseStruct() *ast.StructItem {
	structPos := p.expect(token.STRUCT)
	name := p.parseIdent()
	lbrace := p.expect(token.LBRACE)

	var fields []*ast.Field
	for p.tok != token.RBRACE {
		fields = append(fields, p.parseField())
		if !p.accept(token.COMMA) {
			break
		}
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.StructItem{Struct: structPos, Name: name, Lbrace: lbrace, Fields: fields, Rbrace: rbrace}
}

func (p *parser) parseEnum() *ast.EnumItem {
	enumPos := p.expect(token.ENUM)
	name := p.parseIdent()
	lbrace := p.expect(token.LBRACE)

	var variants []*ast.EnumVariant
	for p.tok != token.RBRACE {
		vname := p.parseIdent()
		var eq token.Pos
		var val ast.Expr
		if p.tok == token.EQ {
			eq = p.expect(token.EQ)
			val = p.parseExpr()
		}
		variants = append(variants, &ast.EnumVariant{Name: vname, Eq: eq, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.EnumItem{Enum: enumPos, Name: name, Lbrace: lbrace, Variants: variants, Rbrace: rbrace}
}

func (p *parser) parseImpl() *ast.ImplItem {
	implPos := p.expect(token.IMPL)
	name := p.parseIdent()
	p.expect(token.LBRACE)

	var fns []*ast.FnItem
	for p.tok != token.RBRACE {
		fns = append(fns, p.parseFn())
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.ImplItem{Impl: implPos, Name: name, Block: fns, Rbrace: rbrace}
}

func (p *parser) parseMod() *ast.ModItem {
	modPos := p.expect(token.MOD)
	name := p.parseIdent()
	lbrace := p.expect(token.LBRACE)

	var items []ast.Item
	for p.tok != token.RBRACE {
		items = append(items, p.parseItem())
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.ModItem{Mod: modPos, Name: name, Lbrace: lbrace, Items: items, Rbrace: rbrace}
}

func (p *parser) parseUse() *ast.UseItem {
	usePos := p.expect(token.USE)
	path := p.parsePath()
	semi := p.expect(token.SEMI)
	return &ast.UseItem{Use: usePos, Path: path, Semi: semi}
}

func (p *parser) parsePath() *ast.PathExpr {
	segs := []*ast.IdentExpr{p.parseIdent()}
	var colons []token.Pos
	for p.tok == token.COLONCOLON {
		colons = append(colons, p.expect(token.COLONCOLON))
		segs = append(segs, p.parseIdent())
	}
	return &ast.PathExpr{Segments: segs, Colons: colons}
}

// parseType parses a syntactic type annotation: a named type, a qualified
// path type, a tuple type, an array type, or unit.
func (p *parser) parseType() ast.TypeExpr {
	switch p.tok {
	case token.LPAREN:
		lparen := p.expect(token.LPAREN)
		if p.tok == token.RPAREN {
			rparen := p.expect(token.RPAREN)
			return &ast.UnitType{Lparen: lparen, Rparen: rparen}
		}
		var elems []ast.TypeExpr
		for {
			elems = append(elems, p.parseType())
			if !p.accept(token.COMMA) {
				break
			}
		}
		rparen := p.expect(token.RPAREN)
		return &ast.TupleType{Lparen: lparen, Elems: elems, Rparen: rparen}

	case token.LBRACK:
		lbrack := p.expect(token.LBRACK)
		elem := p.parseType()
		p.expect(token.SEMI)
		size := p.parseExpr()
		rbrack := p.expect(token.RBRACK)
		return &ast.ArrayType{Lbrack: lbrack, Elem: elem, Size: size, Rbrack: rbrack}

	case token.IDENT:
		path := p.parsePath()
		if len(path.Segments) == 1 {
			return &ast.NamedType{Name: path.Segments[0]}
		}
		return &ast.PathType{Path: path}

	default:
		p.errorExpected(p.val.Pos, []token.Token{token.IDENT, token.LPAREN, token.LBRACK})
		panic(errPanicMode)
	}
}
