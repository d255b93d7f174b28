package ast

import (
	"fmt"
	"math/big"

	"github.com/mna/zircon/lang/token"
)

// Unwrap recursively strips ParenExpr wrappers from e.
func Unwrap(e Expr) Expr {
	for {
		pe, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = pe.X
	}
}

// IsAssignable reports whether e is a valid assignment target: an
// identifier, a field access, a tuple index, or an index expression, with
// the same requirement recursively on its prefix.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *FieldExpr:
		return IsAssignable(Unwrap(e.X))
	case *TupleIndexExpr:
		return IsAssignable(Unwrap(e.X))
	case *IndexExpr:
		return IsAssignable(Unwrap(e.X))
	default:
		return false
	}
}

type (
	// IdentExpr represents an identifier used as an expression.
	IdentExpr struct {
		Start token.Pos
		End_  token.Pos
		Lit   string
	}

	// PathExpr represents `a::b::c`, used for module paths, enum variant
	// selection (`Color::Red`), and associated function calls
	// (`std::crypto::schnorr::Signature::verify`).
	PathExpr struct {
		Segments []*IdentExpr
		Colons   []token.Pos // len(Segments)-1
	}

	// IntLiteralExpr represents an integer literal, decimal or hex.
	IntLiteralExpr struct {
		Start token.Pos
		Raw   string
		Value *big.Int
	}

	// BoolLiteralExpr represents `true` or `false`.
	BoolLiteralExpr struct {
		Start token.Pos
		Value bool
	}

	// StringLiteralExpr represents a string literal, valid only as a built-in
	// call argument (spec §7).
	StringLiteralExpr struct {
		Start token.Pos
		Raw   string
		Value string
	}

	// UnitExpr represents the unit literal `()`.
	UnitExpr struct {
		Lparen token.Pos
		Rparen token.Pos
	}

	// ParenExpr represents a parenthesized expression `(x)`.
	ParenExpr struct {
		Lparen token.Pos
		X      Expr
		Rparen token.Pos
	}

	// TupleExpr represents a tuple literal `(a, b, c)`. A parenthesized
	// single expression without a comma is a ParenExpr; `(a,)` is a
	// 1-element TupleExpr.
	TupleExpr struct {
		Lparen token.Pos
		Elems  []Expr
		Rparen token.Pos
	}

	// ArrayExpr represents an explicit array literal `[a, b, c]`.
	ArrayExpr struct {
		Lbrack token.Pos
		Elems  []Expr
		Rbrack token.Pos
	}

	// ArrayRepeatExpr represents a repeat-initialized array `[value; size]`,
	// where size must be a compile-time constant (spec §4.2).
	ArrayRepeatExpr struct {
		Lbrack token.Pos
		Value  Expr
		Semi   token.Pos
		Size   Expr
		Rbrack token.Pos
	}

	// StructFieldInit is a single `name: expr` pair in a struct literal.
	StructFieldInit struct {
		Name  *IdentExpr
		Colon token.Pos
		Value Expr
	}

	// StructLitExpr represents a struct literal `Name { field: expr, ... }`.
	StructLitExpr struct {
		Name   *PathExpr
		Lbrace token.Pos
		Fields []*StructFieldInit
		Rbrace token.Pos
	}

	// CallExpr represents a function or built-in macro call: `f(args)` or,
	// when Bang is set, `f!(args)` (built-in calls such as `assert!`,
	// `dbg!`, `require!` — spec §7).
	CallExpr struct {
		Fn     Expr
		Bang   token.Pos // 0 if not a macro-style call
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// MethodCallExpr represents `recv.method(args)`, lowered by the semantic
	// analyzer to an ordinary Call with recv as the first argument.
	MethodCallExpr struct {
		Recv   Expr
		Dot    token.Pos
		Method *IdentExpr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// FieldExpr represents field access `expr.name`.
	FieldExpr struct {
		X     Expr
		Dot   token.Pos
		Field *IdentExpr
	}

	// TupleIndexExpr represents tuple element access `expr.0`.
	TupleIndexExpr struct {
		X     Expr
		Dot   token.Pos
		Index int
		End_  token.Pos
	}

	// IndexExpr represents array indexing `expr[index]`.
	IndexExpr struct {
		X      Expr
		Lbrack token.Pos
		Index  Expr
		Rbrack token.Pos
	}

	// RangeExpr represents `a..b` or `a..=b` (Inclusive == true).
	RangeExpr struct {
		Low       Expr
		Op        token.Pos
		Inclusive bool
		High      Expr
	}

	// CastExpr represents `expr as Type`.
	CastExpr struct {
		X    Expr
		As   token.Pos
		Type TypeExpr
	}

	// UnaryExpr represents a unary operator expression (`-x`, `!x`).
	UnaryExpr struct {
		Type token.Token // MINUS or BANG
		Op   token.Pos
		X    Expr
	}

	// BinaryExpr represents a binary operator expression.
	BinaryExpr struct {
		Left  Expr
		Type  token.Token
		Op    token.Pos
		Right Expr
	}

	// BlockExpr wraps a Block so it can be used in expression position (e.g.
	// as the scrutinee-free branch in a `match` arm, or standalone).
	BlockExpr struct {
		Block *Block
	}

	// IfExpr represents `if cond { then } [else { else } | else if ...]`.
	// It is an expression: both branches, when present, must agree in type.
	IfExpr struct {
		If   token.Pos
		Cond Expr
		Then *Block
		Else token.Pos // 0 if no else branch
		// ElseExpr is either a *BlockExpr (else { ... }) or another *IfExpr
		// (else if ...), or nil if there is no else branch.
		ElseExpr Expr
	}

	// MatchArm is a single `pattern [if guard] => expr` arm of a match
	// expression.
	MatchArm struct {
		Pat   Pattern
		If    token.Pos // 0 if no guard
		Guard Expr      // nil if no guard
		Arrow token.Pos
		Body  Expr
		Comma token.Pos // 0 if last arm with no trailing comma
	}

	// MatchExpr represents `match scrutinee { arm, ... }`. Arms must be
	// exhaustive or terminated by a wildcard pattern (spec §4.4).
	MatchExpr struct {
		Match     token.Pos
		Scrutinee Expr
		Lbrace    token.Pos
		Arms      []*MatchArm
		Rbrace    token.Pos
	}
)

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Lit, nil) }
func (n *IdentExpr) Span() (start, end token.Pos)  { return n.Start, n.End_ }
func (n *IdentExpr) Walk(v Visitor)                {}
func (n *IdentExpr) expr()                         {}
func (n *IdentExpr) pattern()                      {}

func (n *PathExpr) Format(f fmt.State, verb rune) {
	lbl := "path"
	for i, s := range n.Segments {
		if i > 0 {
			lbl += "::"
		}
		lbl += s.Lit
	}
	format(f, verb, n, lbl, nil)
}
func (n *PathExpr) Span() (start, end token.Pos) {
	start, _ = n.Segments[0].Span()
	_, end = n.Segments[len(n.Segments)-1].Span()
	return start, end
}
func (n *PathExpr) Walk(v Visitor) {
	for _, s := range n.Segments {
		Walk(v, s)
	}
}
func (n *PathExpr) expr()    {}
func (n *PathExpr) pattern() {}

func (n *IntLiteralExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "int "+n.Raw, nil) }
func (n *IntLiteralExpr) Span() (start, end token.Pos) {
	return n.Start, n.Start // zero-width; exact end recoverable via Raw length if needed
}
func (n *IntLiteralExpr) Walk(v Visitor) {}
func (n *IntLiteralExpr) expr()          {}
func (n *IntLiteralExpr) pattern()       {}

func (n *BoolLiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, fmt.Sprintf("bool %t", n.Value), nil)
}
func (n *BoolLiteralExpr) Span() (start, end token.Pos) { return n.Start, n.Start }
func (n *BoolLiteralExpr) Walk(v Visitor)               {}
func (n *BoolLiteralExpr) expr()                        {}
func (n *BoolLiteralExpr) pattern()                     {}

func (n *StringLiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "string "+n.Raw, nil)
}
func (n *StringLiteralExpr) Span() (start, end token.Pos) { return n.Start, n.Start }
func (n *StringLiteralExpr) Walk(v Visitor)               {}
func (n *StringLiteralExpr) expr()                        {}

func (n *UnitExpr) Format(f fmt.State, verb rune)     { format(f, verb, n, "()", nil) }
func (n *UnitExpr) Span() (start, end token.Pos)      { return n.Lparen, n.Rparen }
func (n *UnitExpr) Walk(v Visitor)                    {}
func (n *UnitExpr) expr()                              {}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *ParenExpr) Span() (start, end token.Pos)  { return n.Lparen, n.Rparen }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ParenExpr) expr()                         {}

func (n *TupleExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "tuple", map[string]int{"elems": len(n.Elems)})
}
func (n *TupleExpr) Span() (start, end token.Pos) { return n.Lparen, n.Rparen }
func (n *TupleExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *TupleExpr) expr() {}

func (n *ArrayExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array", map[string]int{"elems": len(n.Elems)})
}
func (n *ArrayExpr) Span() (start, end token.Pos) { return n.Lbrack, n.Rbrack }
func (n *ArrayExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *ArrayExpr) expr() {}

func (n *ArrayRepeatExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "array [v; n]", nil) }
func (n *ArrayRepeatExpr) Span() (start, end token.Pos)  { return n.Lbrack, n.Rbrack }
func (n *ArrayRepeatExpr) Walk(v Visitor)                { Walk(v, n.Value); Walk(v, n.Size) }
func (n *ArrayRepeatExpr) expr()                         {}

func (n *StructFieldInit) Format(f fmt.State, verb rune) {
	format(f, verb, n, "field "+n.Name.Lit, nil)
}
func (n *StructFieldInit) Span() (start, end token.Pos) {
	start, _ = n.Name.Span()
	_, end = n.Value.Span()
	return start, end
}
func (n *StructFieldInit) Walk(v Visitor) { Walk(v, n.Name); Walk(v, n.Value) }

func (n *StructLitExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "struct literal", map[string]int{"fields": len(n.Fields)})
}
func (n *StructLitExpr) Span() (start, end token.Pos) {
	start, _ = n.Name.Span()
	return start, n.Rbrace
}
func (n *StructLitExpr) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, fi := range n.Fields {
		Walk(v, fi)
	}
}
func (n *StructLitExpr) expr() {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	lbl := "call"
	if n.Bang.IsValid() {
		lbl = "macro call"
	}
	format(f, verb, n, lbl, map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) expr() {}

func (n *MethodCallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "method call "+n.Method.Lit, map[string]int{"args": len(n.Args)})
}
func (n *MethodCallExpr) Span() (start, end token.Pos) {
	start, _ = n.Recv.Span()
	return start, n.Rparen
}
func (n *MethodCallExpr) Walk(v Visitor) {
	Walk(v, n.Recv)
	Walk(v, n.Method)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *MethodCallExpr) expr() {}

func (n *FieldExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr."+n.Field.Lit, nil) }
func (n *FieldExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Field.Span()
	return start, end
}
func (n *FieldExpr) Walk(v Visitor) { Walk(v, n.X); Walk(v, n.Field) }
func (n *FieldExpr) expr()          {}

func (n *TupleIndexExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, fmt.Sprintf("expr.%d", n.Index), nil)
}
func (n *TupleIndexExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.End_
}
func (n *TupleIndexExpr) Walk(v Visitor) { Walk(v, n.X) }
func (n *TupleIndexExpr) expr()          {}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Rbrack
}
func (n *IndexExpr) Walk(v Visitor) { Walk(v, n.X); Walk(v, n.Index) }
func (n *IndexExpr) expr()          {}

func (n *RangeExpr) Format(f fmt.State, verb rune) {
	lbl := ".."
	if n.Inclusive {
		lbl = "..="
	}
	format(f, verb, n, "range "+lbl, nil)
}
func (n *RangeExpr) Span() (start, end token.Pos) {
	if n.Low != nil {
		start, _ = n.Low.Span()
	} else {
		start = n.Op
	}
	if n.High != nil {
		_, end = n.High.Span()
	} else {
		end = n.Op
	}
	return start, end
}
func (n *RangeExpr) Walk(v Visitor) {
	if n.Low != nil {
		Walk(v, n.Low)
	}
	if n.High != nil {
		Walk(v, n.High)
	}
}
func (n *RangeExpr) expr()    {}
func (n *RangeExpr) pattern() {}

func (n *CastExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "cast as", nil) }
func (n *CastExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Type.Span()
	return start, end
}
func (n *CastExpr) Walk(v Visitor) { Walk(v, n.X); Walk(v, n.Type) }
func (n *CastExpr) expr()          {}

func (n *UnaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Type.GoString(), nil)
}
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.Op, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.X) }
func (n *UnaryExpr) expr()          {}

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Type.GoString(), nil)
}
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) { Walk(v, n.Left); Walk(v, n.Right) }
func (n *BinaryExpr) expr()          {}

func (n *BlockExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "block expr", nil) }
func (n *BlockExpr) Span() (start, end token.Pos)  { return n.Block.Span() }
func (n *BlockExpr) Walk(v Visitor)                { Walk(v, n.Block) }
func (n *BlockExpr) expr()                         {}

func (n *IfExpr) Format(f fmt.State, verb rune) {
	lbl := "if"
	if n.ElseExpr != nil {
		lbl += "/else"
	}
	format(f, verb, n, lbl, nil)
}
func (n *IfExpr) Span() (start, end token.Pos) {
	if n.ElseExpr != nil {
		_, end = n.ElseExpr.Span()
	} else {
		_, end = n.Then.Span()
	}
	return n.If, end
}
func (n *IfExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.ElseExpr != nil {
		Walk(v, n.ElseExpr)
	}
}
func (n *IfExpr) expr() {}

func (n *MatchArm) Format(f fmt.State, verb rune) { format(f, verb, n, "arm", nil) }
func (n *MatchArm) Span() (start, end token.Pos) {
	start, _ = n.Pat.Span()
	_, end = n.Body.Span()
	return start, end
}
func (n *MatchArm) Walk(v Visitor) {
	Walk(v, n.Pat)
	if n.Guard != nil {
		Walk(v, n.Guard)
	}
	Walk(v, n.Body)
}

func (n *MatchExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "match", map[string]int{"arms": len(n.Arms)})
}
func (n *MatchExpr) Span() (start, end token.Pos) { return n.Match, n.Rbrace }
func (n *MatchExpr) Walk(v Visitor) {
	Walk(v, n.Scrutinee)
	for _, a := range n.Arms {
		Walk(v, a)
	}
}
func (n *MatchExpr) expr() {}
