package semantic

import (
	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// GlobalVar is a hoisted `static` item: unlike a `const`, it gets a real
// address in the program's global address space and is initialized once,
// at the very start of the program, by bytecode the analyzer emits ahead
// of every function body (see Analyzer.emitGlobalInit). Grounded on the
// spec's worked static/const example (§9): `static` reads lower to
// LoadGlobal, `const` reads lower to nothing at all (the value is inlined).
type GlobalVar struct {
	Name    string
	Type    types.Type
	Address int

	// Init is the folded compile-time value of the initializer. Non-const
	// initializers are rejected at hoist time (spec gives statics no
	// broader an initializer grammar than consts).
	Init Element
	Pos  token.Pos
	file *token.File

	decl *ast.StaticItem
}
