package ast

import (
	"fmt"

	"github.com/mna/zircon/lang/token"
)

type (
	// WildcardPattern represents the `_` pattern, which matches anything
	// without binding it.
	WildcardPattern struct {
		Start token.Pos
	}

	// TuplePattern represents a tuple destructuring pattern `(a, b, c)`.
	TuplePattern struct {
		Lparen token.Pos
		Elems  []Pattern
		Rparen token.Pos
	}
)

func (n *WildcardPattern) Format(f fmt.State, verb rune) { format(f, verb, n, "_", nil) }
func (n *WildcardPattern) Span() (start, end token.Pos)  { return n.Start, n.Start }
func (n *WildcardPattern) Walk(v Visitor)                {}
func (n *WildcardPattern) pattern()                      {}

func (n *TuplePattern) Format(f fmt.State, verb rune) {
	format(f, verb, n, "tuple pattern", map[string]int{"elems": len(n.Elems)})
}
func (n *TuplePattern) Span() (start, end token.Pos) { return n.Lparen, n.Rparen }
func (n *TuplePattern) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *TuplePattern) pattern() {}
