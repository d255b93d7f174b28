package semantic

import (
	"github.com/dolthub/swiss"
	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/types"
)

// Binding ties an identifier to the semantic information the analyzer
// and the bytecode emitter need about it: its type, whether it may be
// assigned to, and (for function-local variables) its data-stack address.
// Grounded on the teacher's lang/resolver.Binding, simplified: zircon has
// no first-class functions and no nested closures (spec §3 — a Function
// type exists only for call-site checking), so there is no Cell/Free
// scope kind and no freevar-capture pass, unlike the Starlark-derived
// resolver this replaces.
type Binding struct {
	Name    string
	Type    types.Type
	Mutable bool

	// Address is the data-stack cell this binding occupies, valid only once
	// a function body is being emitted (set by the statement analyzer via
	// bytecode.Builder.DeclareVariable).
	Address int

	// Decl is the declaring node, used for "already declared" diagnostics.
	Decl ast.Node
}

// block is one lexical scope: a function body, an if/while/for body, or a
// match arm. Chained via parent the way the teacher's resolver chains its
// own *block, but without the fn/loops/defers/catches bookkeeping zircon
// has no use for.
type block struct {
	parent   *block
	bindings *swiss.Map[string, *Binding]
}

func newBlock(parent *block) *block {
	return &block{parent: parent, bindings: swiss.NewMap[string, *Binding](uint32(8))}
}

// scope is the mutable environment threaded through analysis of a single
// function body.
type scope struct {
	cur *block
}

func newScope() *scope { return &scope{} }

func (s *scope) push() { s.cur = newBlock(s.cur) }
func (s *scope) pop()  { s.cur = s.cur.parent }

// declare binds name in the current block, returning false if name is
// already declared in that same block (shadowing an outer block is fine;
// redeclaring within the same block is not, matching the teacher's rule).
func (s *scope) declare(b *Binding) bool {
	if _, ok := s.cur.bindings.Get(b.Name); ok {
		return false
	}
	s.cur.bindings.Put(b.Name, b)
	return true
}

// lookup searches the current block and its ancestors for name.
func (s *scope) lookup(name string) (*Binding, bool) {
	for blk := s.cur; blk != nil; blk = blk.parent {
		if b, ok := blk.bindings.Get(name); ok {
			return b, true
		}
	}
	return nil, false
}
