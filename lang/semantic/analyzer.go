// Package semantic implements zircon's semantic analyzer: hoisting of
// module-level declarations, scope/symbol resolution, type checking,
// compile-time constant folding, and bytecode emission into a
// lang/bytecode.Builder (spec §4.4, §6.4). Grounded on the scope-tree
// design of the teacher's lang/resolver package, simplified to the
// subset zircon's closed, non-closure expression grammar needs: no
// Cell/Free capture, no labels, no classes, no defer/catch.
package semantic

import (
	"math/big"

	"github.com/dolthub/swiss"
	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/scanner"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

func newBigZero() *big.Int { return new(big.Int) }
func addOne(v *big.Int) *big.Int { return new(big.Int).Add(v, big.NewInt(1)) }

// coerceConstTo re-checks a folded constant against an explicitly declared
// type, the point at which an Untyped literal's provisional type is
// pinned down for good (spec §8 property 1).
func (a *Analyzer) coerceConstTo(el Element, target types.Type, pos token.Pos) Element {
	native := el.NativeType
	if native == nil {
		native = el.Type
	}
	if el.IsConstBool {
		if target.Kind() != types.KindBoolean {
			a.errorf(pos, "expected %s, found bool", target)
		}
		el.Type = target
		el.NativeType = native
		return el
	}
	if el.ConstInt == nil {
		return el
	}
	if target.Kind() == types.KindField {
		el.Type = target
		el.NativeType = native
		el.Untyped = false
		return el
	}
	signed, bits := integerShape(target)
	if !types.FitsInRange(el.ConstInt, signed, bits) {
		a.errorf(pos, diagOverflowCasting, target)
		return el
	}
	el.Type = target
	el.NativeType = native
	el.Untyped = false
	return el
}

// funcSig is a hoisted function's signature, recorded before any function
// body is analyzed so forward calls (including recursion) resolve.
type funcSig struct {
	uniqueID   uint64
	name       string
	paramNames []string
	sig        *types.Function
	decl       *ast.FnItem
	file       *token.File
}

// Analyzer holds the state threaded through analysis of a set of chunks
// that together form one compilation unit (spec §6: a single entry-point
// `main` plus its callees, in one or more files joined by `mod`/`use`).
type Analyzer struct {
	fset  *token.FileSet
	file  *token.File
	errors scanner.ErrorList

	// limits holds the compilation's configured bounds (spec §7's
	// implementation-defined constants), read once by the CLI driver and
	// threaded in here rather than read from a package-level global.
	limits config.Limits

	builder *bytecode.Builder

	namedTypes *swiss.Map[string, types.Type]
	constants  *swiss.Map[string, Element]
	funcs      *swiss.Map[string, *funcSig]
	globals    *swiss.Map[string, *GlobalVar]

	// funcsOrder/globalsOrder preserve declaration order for deterministic
	// bytecode emission: swiss.Map's iteration order is not stable, but the
	// global-init prologue's instruction order (and, for reproducible wire
	// output, the order functions are compiled in) should not depend on map
	// iteration.
	funcsOrder   []*funcSig
	globalsOrder []*GlobalVar

	scope   *scope
	curFunc *funcSig

	// loopDepth counts the for/while bodies currently being analyzed (the
	// language has no break-like construct - loops always run their full
	// trip count / condition); analyzeWhile and analyzeFor increment and
	// decrement it around each loop.
	loopDepth int
}

// NewAnalyzer returns an Analyzer ready to hoist and analyze the chunks of
// fset, bound by limits.
func NewAnalyzer(fset *token.FileSet, limits config.Limits) *Analyzer {
	a := &Analyzer{
		fset:       fset,
		limits:     limits,
		builder:    bytecode.NewBuilder(),
		namedTypes: swiss.NewMap[string, types.Type](uint32(8)),
		constants:  swiss.NewMap[string, Element](uint32(8)),
		funcs:      swiss.NewMap[string, *funcSig](uint32(8)),
		globals:    swiss.NewMap[string, *GlobalVar](uint32(8)),
		scope:      newScope(),
	}
	a.registerBuiltinPrelude()
	return a
}

// Analyze hoists every item of chunks and then emits bytecode for every
// function body, returning the finished Program. Errors accumulated along
// the way are returned as a scanner.ErrorList, matching lang/parser's
// convention so a CLI driver can print both the same way.
func Analyze(fset *token.FileSet, chunks []*ast.Chunk, limits config.Limits) (*bytecode.Program, error) {
	a := NewAnalyzer(fset, limits)
	a.hoist(chunks)
	a.analyzeBodies()
	a.errors.Sort()
	if err := a.errors.Err(); err != nil {
		return nil, err
	}
	return a.builder.Build(), nil
}

// hoist runs the two-pass item-collection the teacher's resolver package
// doc comment calls out: struct/enum declarations (and, transitively,
// struct field types referencing other structs) are resolved to a
// fixpoint first, then const/static items and function signatures are
// resolved against the now-complete type table.
func (a *Analyzer) hoist(chunks []*ast.Chunk) {
	var enums []*ast.EnumItem
	var structs []*ast.StructItem
	var structsAsAlias []*ast.TypeItem
	var consts []*ast.ConstItem
	var statics []*ast.StaticItem
	var fns []*ast.FnItem
	var methodRecv []string // parallel to fns, "" for a plain (non-method) function

	var walk func(items []ast.Item)
	walk = func(items []ast.Item) {
		for _, it := range items {
			switch it := it.(type) {
			case *ast.EnumItem:
				enums = append(enums, it)
			case *ast.StructItem:
				structs = append(structs, it)
			case *ast.ConstItem:
				consts = append(consts, it)
			case *ast.StaticItem:
				statics = append(statics, it)
			case *ast.FnItem:
				fns = append(fns, it)
				methodRecv = append(methodRecv, "")
			case *ast.TypeItem:
				// resolved inline below, order-independent of structs/enums only
				// if its aliasee is itself already hoisted; handled in the fixpoint
				// loop alongside structs for the same reason.
				structsAsAlias = append(structsAsAlias, it)
			case *ast.ModItem:
				walk(it.Items)
			case *ast.ImplItem:
				for _, fn := range it.Block {
					fns = append(fns, fn)
					methodRecv = append(methodRecv, it.Name.Lit)
				}
			case *ast.UseItem:
				// no module value to bind (see element.go doc comment); names it
				// brings into scope are resolved lazily by path lookup instead.
			}
		}
	}
	for _, c := range chunks {
		a.file = a.fset.File(c.Name)
		walk(c.Items)
	}

	for _, en := range enums {
		a.hoistEnum(en)
	}

	remaining := structs
	remainingAlias := structsAsAlias
	for progress := true; progress && (len(remaining) > 0 || len(remainingAlias) > 0); {
		progress = false
		var next []*ast.StructItem
		for _, st := range remaining {
			if a.tryHoistStruct(st) {
				progress = true
			} else {
				next = append(next, st)
			}
		}
		remaining = next

		var nextAlias []*ast.TypeItem
		for _, ty := range remainingAlias {
			if t, ok := a.resolveTypeExpr(ty.Value); ok {
				a.namedTypes.Put(ty.Name.Lit, t)
				progress = true
			} else {
				nextAlias = append(nextAlias, ty)
			}
		}
		remainingAlias = nextAlias
	}
	for _, st := range remaining {
		a.errorf(st.Struct, "struct %s: unresolved or cyclic field type", st.Name.Lit)
	}
	for _, ty := range remainingAlias {
		a.errorf(ty.Type, "type alias %s: unresolved or cyclic target type", ty.Name.Lit)
	}

	for _, c := range consts {
		a.hoistConst(c)
	}
	for _, s := range statics {
		a.hoistStatic(s)
	}
	for i, fn := range fns {
		a.hoistFunc(fn, methodRecv[i])
	}
}

func (a *Analyzer) hoistEnum(en *ast.EnumItem) {
	variants := make([]types.EnumVariant, len(en.Variants))
	next := newBigZero()
	for i, v := range en.Variants {
		val := next
		if v.Value != nil {
			el, ok := a.foldConstExpr(v.Value)
			if !ok || el.ConstInt == nil {
				a.errorf(en.Enum, "enum %s variant %s: discriminant is not a compile-time integer constant", en.Name.Lit, v.Name.Lit)
			} else if el.ConstInt.Sign() < 0 {
				a.errorf(en.Enum, "enum %s variant %s: discriminant must be non-negative", en.Name.Lit, v.Name.Lit)
			} else {
				val = el.ConstInt
			}
		}
		variants[i] = types.EnumVariant{Name: v.Name.Lit, Value: val}
		next = addOne(val)
	}
	a.namedTypes.Put(en.Name.Lit, types.NewEnumeration(types.NextUniqueID(), en.Name.Lit, variants))
}

func (a *Analyzer) tryHoistStruct(st *ast.StructItem) bool {
	fields := make([]types.StructField, len(st.Fields))
	for i, f := range st.Fields {
		t, ok := a.resolveTypeExpr(f.Type)
		if !ok {
			return false
		}
		fields[i] = types.StructField{Name: f.Name.Lit, Type: t}
	}
	a.namedTypes.Put(st.Name.Lit, types.NewStructure(types.NextUniqueID(), st.Name.Lit, fields))
	return true
}

func (a *Analyzer) hoistConst(c *ast.ConstItem) {
	el, ok := a.foldConstExpr(c.Value)
	if !ok {
		a.errorf(c.Const, "const %s: initializer is not a compile-time constant", c.Name.Lit)
		return
	}
	if c.Type != nil {
		declType := a.resolveTypeExprReporting(c.Type)
		el = a.coerceConstTo(el, declType, c.Eq)
	}
	a.constants.Put(c.Name.Lit, el)
}

// hoistStatic registers a module-level `static` item as a GlobalVar with a
// real address in the program's global address space, reserved now via
// bytecode.Builder.DeclareGlobal. Unlike a const, its value is not folded
// into every use site: reading it emits LoadGlobal, and its initializer is
// emitted once, in declaration order, by the global-init prologue
// Analyzer.emitGlobalInit writes ahead of every function body - this is
// the one place `static` and `const` genuinely differ (spec §9's worked
// example: the const's value is inlined as a bare PushConst and never
// loaded, while the static gets StoreGlobal at startup and LoadGlobal at
// every read).
func (a *Analyzer) hoistStatic(s *ast.StaticItem) {
	el, ok := a.foldConstExpr(s.Value)
	if !ok {
		a.errorf(s.Static, "static %s: initializer is not a compile-time constant", s.Name.Lit)
		return
	}
	declType := el.Type
	if s.Type != nil {
		declType = a.resolveTypeExprReporting(s.Type)
		el = a.coerceConstTo(el, declType, s.Eq)
	}
	addr := a.builder.DeclareGlobal(s.Name.Lit, declType)
	gv := &GlobalVar{Name: s.Name.Lit, Type: declType, Address: addr, Init: el, Pos: s.Eq, file: a.file, decl: s}
	a.globals.Put(s.Name.Lit, gv)
	a.globalsOrder = append(a.globalsOrder, gv)
}

// hoistFunc registers fn's signature under its plain name, or, if recv is
// non-empty (fn came from an `impl recv { ... }` block), under the
// qualified key "recv::method" analyzeMethodCall looks up - keeping
// methods of different types with the same name from colliding, since
// zircon has no vtable/dynamic dispatch to disambiguate them at the call
// site (spec §6.2).
func (a *Analyzer) hoistFunc(fn *ast.FnItem, recv string) {
	params := make([]types.Type, len(fn.Params))
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = a.resolveTypeExprReporting(p.Type)
		names[i] = p.Name.Lit
	}
	ret := types.Type(types.Unit{})
	if fn.Ret != nil {
		ret = a.resolveTypeExprReporting(fn.Ret)
	}
	name := fn.Name.Lit
	if recv != "" {
		name = recv + "::" + name
	}
	fs := &funcSig{
		uniqueID:   types.NextUniqueID(),
		name:       name,
		paramNames: names,
		sig:        &types.Function{Params: params, Ret: ret},
		decl:       fn,
		file:       a.file,
	}
	a.funcs.Put(name, fs)
	a.funcsOrder = append(a.funcsOrder, fs)
}
