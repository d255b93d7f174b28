package ast

import (
	"fmt"

	"github.com/mna/zircon/lang/token"
)

type (
	// Field is a single "name: Type" pair, used by struct items and function
	// parameter lists.
	Field struct {
		Name  *IdentExpr
		Colon token.Pos
		Type  TypeExpr
	}

	// FnItem represents a function declaration: `fn name(params) -> ret {
	// body }`.
	FnItem struct {
		Fn     token.Pos
		Name   *IdentExpr
		Lparen token.Pos
		Params []*Field
		Rparen token.Pos
		Arrow  token.Pos // 0 if no explicit return type (implies Unit)
		Ret    TypeExpr  // nil if no explicit return type
		Body   *Block
	}

	// ConstItem represents a module-level `const NAME: Type = expr;`.
	ConstItem struct {
		Const token.Pos
		Name  *IdentExpr
		Colon token.Pos
		Type  TypeExpr
		Eq    token.Pos
		Value Expr
		Semi  token.Pos
	}

	// StaticItem represents a module-level `static NAME: Type = expr;`.
	StaticItem struct {
		Static token.Pos
		Name   *IdentExpr
		Colon  token.Pos
		Type   TypeExpr
		Eq     token.Pos
		Value  Expr
		Semi   token.Pos
	}

	// TypeItem represents a type alias: `type Name = Type;`.
	TypeItem struct {
		Type  token.Pos
		Name  *IdentExpr
		Eq    token.Pos
		Value TypeExpr
		Semi  token.Pos
	}

	// StructItem represents `struct Name { field: Type, ... }`.
	StructItem struct {
		Struct token.Pos
		Name   *IdentExpr
		Lbrace token.Pos
		Fields []*Field
		Rbrace token.Pos
	}

	// EnumVariant is a single `Name` or `Name = expr` enum member.
	EnumVariant struct {
		Name  *IdentExpr
		Eq    token.Pos // 0 if no explicit discriminant
		Value Expr      // nil if no explicit discriminant
	}

	// EnumItem represents `enum Name { Variant, Variant = N, ... }`.
	EnumItem struct {
		Enum     token.Pos
		Name     *IdentExpr
		Lbrace   token.Pos
		Variants []*EnumVariant
		Rbrace   token.Pos
	}

	// ImplItem represents `impl Name { fn ... }`, associating a set of
	// functions with a struct or enum type.
	ImplItem struct {
		Impl  token.Pos
		Name  *IdentExpr
		Block []*FnItem
		Rbrace token.Pos
	}

	// ModItem represents `mod name { items... }`.
	ModItem struct {
		Mod    token.Pos
		Name   *IdentExpr
		Lbrace token.Pos
		Items  []Item
		Rbrace token.Pos
	}

	// UseItem represents `use a::b::c;`.
	UseItem struct {
		Use  token.Pos
		Path *PathExpr
		Semi token.Pos
	}
)

func (n *Field) Format(f fmt.State, verb rune) { format(f, verb, n, "field "+n.Name.Lit, nil) }
func (n *Field) Span() (start, end token.Pos) {
	start, _ = n.Name.Span()
	_, end = n.Type.Span()
	return start, end
}
func (n *Field) Walk(v Visitor) { Walk(v, n.Name); Walk(v, n.Type) }

func (n *FnItem) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn "+n.Name.Lit, map[string]int{"params": len(n.Params)})
}
func (n *FnItem) Span() (start, end token.Pos) {
	start = n.Fn
	_, end = n.Body.Span()
	return start, end
}
func (n *FnItem) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Ret != nil {
		Walk(v, n.Ret)
	}
	Walk(v, n.Body)
}
func (n *FnItem) item() {}

func (n *ConstItem) Format(f fmt.State, verb rune) { format(f, verb, n, "const "+n.Name.Lit, nil) }
func (n *ConstItem) Span() (start, end token.Pos)  { return n.Const, n.Semi }
func (n *ConstItem) Walk(v Visitor) {
	Walk(v, n.Name)
	Walk(v, n.Type)
	Walk(v, n.Value)
}
func (n *ConstItem) item() {}

func (n *StaticItem) Format(f fmt.State, verb rune) { format(f, verb, n, "static "+n.Name.Lit, nil) }
func (n *StaticItem) Span() (start, end token.Pos)  { return n.Static, n.Semi }
func (n *StaticItem) Walk(v Visitor) {
	Walk(v, n.Name)
	Walk(v, n.Type)
	Walk(v, n.Value)
}
func (n *StaticItem) item() {}

func (n *TypeItem) Format(f fmt.State, verb rune) { format(f, verb, n, "type "+n.Name.Lit, nil) }
func (n *TypeItem) Span() (start, end token.Pos)  { return n.Type, n.Semi }
func (n *TypeItem) Walk(v Visitor)                { Walk(v, n.Name); Walk(v, n.Value) }
func (n *TypeItem) item()                         {}

func (n *StructItem) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct "+n.Name.Lit, map[string]int{"fields": len(n.Fields)})
}
func (n *StructItem) Span() (start, end token.Pos) { return n.Struct, n.Rbrace }
func (n *StructItem) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, fld := range n.Fields {
		Walk(v, fld)
	}
}
func (n *StructItem) item() {}

func (n *EnumVariant) Format(f fmt.State, verb rune) { format(f, verb, n, "variant "+n.Name.Lit, nil) }
func (n *EnumVariant) Span() (start, end token.Pos) {
	start, end = n.Name.Span()
	if n.Value != nil {
		_, end = n.Value.Span()
	}
	return start, end
}
func (n *EnumVariant) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

func (n *EnumItem) Format(f fmt.State, verb rune) {
	format(f, verb, n, "enum "+n.Name.Lit, map[string]int{"variants": len(n.Variants)})
}
func (n *EnumItem) Span() (start, end token.Pos) { return n.Enum, n.Rbrace }
func (n *EnumItem) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, vr := range n.Variants {
		Walk(v, vr)
	}
}
func (n *EnumItem) item() {}

func (n *ImplItem) Format(f fmt.State, verb rune) {
	format(f, verb, n, "impl "+n.Name.Lit, map[string]int{"methods": len(n.Block)})
}
func (n *ImplItem) Span() (start, end token.Pos) { return n.Impl, n.Rbrace }
func (n *ImplItem) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, fn := range n.Block {
		Walk(v, fn)
	}
}
func (n *ImplItem) item() {}

func (n *ModItem) Format(f fmt.State, verb rune) {
	format(f, verb, n, "mod "+n.Name.Lit, map[string]int{"items": len(n.Items)})
}
func (n *ModItem) Span() (start, end token.Pos) { return n.Mod, n.Rbrace }
func (n *ModItem) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, it := range n.Items {
		Walk(v, it)
	}
}
func (n *ModItem) item() {}

func (n *UseItem) Format(f fmt.State, verb rune) { format(f, verb, n, "use", nil) }
func (n *UseItem) Span() (start, end token.Pos)  { return n.Use, n.Semi }
func (n *UseItem) Walk(v Visitor)                { Walk(v, n.Path) }
func (n *UseItem) item()                         {}
