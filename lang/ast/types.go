package ast

import (
	"fmt"

	"github.com/mna/zircon/lang/token"
)

type (
	// NamedType represents a named type reference: a built-in name
	// (`u8`..`u248`, `i8`..`i248`, `field`, `bool`) or a user-defined
	// struct/enum/alias name.
	NamedType struct {
		Name *IdentExpr
	}

	// PathType represents a qualified type name, e.g. `std::crypto::schnorr::Signature`.
	PathType struct {
		Path *PathExpr
	}

	// TupleType represents a tuple type `(T1, T2, ...)`.
	TupleType struct {
		Lparen token.Pos
		Elems  []TypeExpr
		Rparen token.Pos
	}

	// ArrayType represents a fixed-size array type `[T; N]`, where N must be
	// a compile-time constant.
	ArrayType struct {
		Lbrack token.Pos
		Elem   TypeExpr
		Semi   token.Pos
		Size   Expr
		Rbrack token.Pos
	}

	// UnitType represents the unit type `()`.
	UnitType struct {
		Lparen token.Pos
		Rparen token.Pos
	}
)

func (n *NamedType) Format(f fmt.State, verb rune) { format(f, verb, n, "type "+n.Name.Lit, nil) }
func (n *NamedType) Span() (start, end token.Pos)  { return n.Name.Span() }
func (n *NamedType) Walk(v Visitor)                { Walk(v, n.Name) }
func (n *NamedType) typeExpr()                     {}

func (n *PathType) Format(f fmt.State, verb rune) { format(f, verb, n, "type path", nil) }
func (n *PathType) Span() (start, end token.Pos)  { return n.Path.Span() }
func (n *PathType) Walk(v Visitor)                { Walk(v, n.Path) }
func (n *PathType) typeExpr()                     {}

func (n *TupleType) Format(f fmt.State, verb rune) {
	format(f, verb, n, "type tuple", map[string]int{"elems": len(n.Elems)})
}
func (n *TupleType) Span() (start, end token.Pos) { return n.Lparen, n.Rparen }
func (n *TupleType) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *TupleType) typeExpr() {}

func (n *ArrayType) Format(f fmt.State, verb rune) { format(f, verb, n, "type array", nil) }
func (n *ArrayType) Span() (start, end token.Pos)  { return n.Lbrack, n.Rbrack }
func (n *ArrayType) Walk(v Visitor)                { Walk(v, n.Elem); Walk(v, n.Size) }
func (n *ArrayType) typeExpr()                     {}

func (n *UnitType) Format(f fmt.State, verb rune) { format(f, verb, n, "type ()", nil) }
func (n *UnitType) Span() (start, end token.Pos)  { return n.Lparen, n.Rparen }
func (n *UnitType) Walk(v Visitor)                {}
func (n *UnitType) typeExpr()                     {}
