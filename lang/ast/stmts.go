package ast

import (
	"fmt"

	"github.com/mna/zircon/lang/token"
)

type (
	// LetStmt represents `let [mut] pat [: Type] = expr;`.
	LetStmt struct {
		Let   token.Pos
		Mut   token.Pos // 0 if not mutable
		Pat   Pattern
		Colon token.Pos // 0 if no explicit type
		Type  TypeExpr  // nil if no explicit type
		Eq    token.Pos
		Value Expr
		Semi  token.Pos
	}

	// ExprStmt represents an expression used as a statement, e.g. a call or
	// an `if`/`match`/block expression whose value is discarded.
	ExprStmt struct {
		X    Expr
		Semi token.Pos // 0 if absent (tail expressions are not wrapped in ExprStmt)
	}

	// AssignStmt represents `place = expr;` or a compound assignment such as
	// `place += expr;`.
	AssignStmt struct {
		Left  Expr
		Type  token.Token // EQ, or PLUS/MINUS/STAR/SLASH/PERCENT/AMP/PIPE/CARET for compound forms
		Op    token.Pos
		Right Expr
		Semi  token.Pos
	}

	// WhileStmt represents `while cond { body }`.
	WhileStmt struct {
		While token.Pos
		Cond  Expr
		Body  *Block
	}

	// ForStmt represents `for pat in range [while cond] { body }`. The range
	// bound must be compile-time constant (spec §4.2/§4.4); While is the
	// optional early-exit guard, gated through the same condition-stack
	// protocol as an ordinary `while`.
	ForStmt struct {
		For   token.Pos
		Pat   Pattern
		In    token.Pos
		Range Expr
		While token.Pos // 0 if no guard
		Cond  Expr      // nil if no guard
		Body  *Block
	}
)

func (n *LetStmt) Format(f fmt.State, verb rune) {
	lbl := "let"
	if n.Mut.IsValid() {
		lbl += " mut"
	}
	format(f, verb, n, lbl, nil)
}
func (n *LetStmt) Span() (start, end token.Pos) { return n.Let, n.Semi }
func (n *LetStmt) Walk(v Visitor) {
	Walk(v, n.Pat)
	if n.Type != nil {
		Walk(v, n.Type)
	}
	Walk(v, n.Value)
}
func (n *LetStmt) stmt() {}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos) {
	start, end = n.X.Span()
	if n.Semi.IsValid() {
		end = n.Semi
	}
	return start, end
}
func (n *ExprStmt) Walk(v Visitor) { Walk(v, n.X) }
func (n *ExprStmt) stmt()          {}

func (n *AssignStmt) Format(f fmt.State, verb rune) {
	lbl := "assign ="
	if n.Type != token.EQ {
		lbl = "assign " + n.Type.String() + "="
	}
	format(f, verb, n, lbl, nil)
}
func (n *AssignStmt) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	return start, n.Semi
}
func (n *AssignStmt) Walk(v Visitor) { Walk(v, n.Left); Walk(v, n.Right) }
func (n *AssignStmt) stmt()          {}

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.While, end
}
func (n *WhileStmt) Walk(v Visitor) { Walk(v, n.Cond); Walk(v, n.Body) }
func (n *WhileStmt) stmt()          {}

func (n *ForStmt) Format(f fmt.State, verb rune) {
	lbl := "for"
	if n.Cond != nil {
		lbl += " while"
	}
	format(f, verb, n, lbl, nil)
}
func (n *ForStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.For, end
}
func (n *ForStmt) Walk(v Visitor) {
	Walk(v, n.Pat)
	Walk(v, n.Range)
	if n.Cond != nil {
		Walk(v, n.Cond)
	}
	Walk(v, n.Body)
}
func (n *ForStmt) stmt() {}
