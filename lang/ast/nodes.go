package ast

import (
	"fmt"
	"os"
	"strings"

	"github.com/mna/zircon/lang/token"
)

// Node is the interface implemented by every node of the AST.
type Node interface {
	fmt.Formatter
	// Span returns the start and end positions of the node.
	Span() (start, end token.Pos)
	// Walk visits the node's direct children with v.
	Walk(v Visitor)
}

// Expr is the interface implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is the interface implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// Item is the interface implemented by every top-level or module-level
// declaration node.
type Item interface {
	Node
	item()
}

// Pattern is the interface implemented by every pattern node (used in
// `let` bindings, `for` loops and `match` arms).
type Pattern interface {
	Node
	pattern()
}

// TypeExpr is the interface implemented by every syntactic type annotation
// node, as written in source (distinct from lang/types.Type, which is the
// resolved, semantic representation).
type TypeExpr interface {
	Node
	typeExpr()
}

type (
	// Chunk is the root node of a parsed source file.
	Chunk struct {
		Name  string // filename, may be empty
		Items []Item
		EOF   token.Pos
	}

	// Block represents a brace-delimited sequence of statements, optionally
	// ending in a tail expression that gives the block its value (spec §4.2).
	Block struct {
		Lbrace token.Pos
		Stmts  []Stmt
		Tail   Expr // nil if the block has no tail expression
		Rbrace token.Pos
	}
)

func (n *Chunk) Format(f fmt.State, verb rune) {
	lbl := "chunk"
	if n.Name != "" {
		lbl += " " + strings.ReplaceAll(n.Name, string(os.PathSeparator), "/")
	}
	format(f, verb, n, lbl, map[string]int{"items": len(n.Items)})
}
func (n *Chunk) Span() (start, end token.Pos) {
	if len(n.Items) > 0 {
		start, _ = n.Items[0].Span()
		_, end = n.Items[len(n.Items)-1].Span()
		return start, end
	}
	return n.EOF, n.EOF
}
func (n *Chunk) Walk(v Visitor) {
	for _, it := range n.Items {
		Walk(v, it)
	}
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
	if n.Tail != nil {
		Walk(v, n.Tail)
	}
}
