package semantic

import (
	"math/big"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/types"
)

// ElementKind discriminates what an analyzed expression denotes: a runtime
// value already emitted onto the data stack, a value known at compile time,
// a type name, or an assignable location. Grounded on the "element" model
// zinc-compiler's semantic analyzer uses throughout
// original_source/zinc-compiler/src/semantic/element/mod.rs, simplified to
// the four kinds zircon's closed expression grammar actually produces (no
// module/namespace element: `use` only ever brings plain names into scope,
// it never needs a first-class module value).
type ElementKind int

const (
	// ElementValue is a runtime value: bytecode to compute it has already
	// been pushed by the Builder, and Type names its static type.
	ElementValue ElementKind = iota

	// ElementConstant is a value known at compile time (an integer, field,
	// or boolean literal, or the result of folding one). No bytecode is
	// emitted for a constant until it is used somewhere that needs a
	// runtime value (e.g. as a CallExpr argument), at which point the
	// analyzer lowers it to a PushConst.
	ElementConstant

	// ElementType names a resolved type, produced by a PathExpr/NamedType
	// used in type position or as the left side of `Enum::Variant`.
	ElementType

	// ElementPlace is an assignable location: a local variable, or a field/
	// tuple-index/array-index projection of one. Only produced while
	// analyzing the left side of a LetStmt pattern or an AssignStmt.
	ElementPlace
)

// Element is the result of analyzing one expression.
type Element struct {
	Kind ElementKind
	Type types.Type

	// ConstInt holds the folded value for an ElementConstant of integer or
	// field type. ConstBool holds it for KindBoolean; IsConstBool
	// disambiguates a constant `false` (ConstInt == nil) from "not a bool".
	ConstInt    *big.Int
	ConstBool   bool
	IsConstBool bool

	// Binding is set for ElementPlace (and, for convenience, also echoed
	// onto ElementValue results that came directly from reading a named
	// variable) so assignment and address-of-local codegen do not need to
	// re-resolve the name.
	Binding *Binding

	// Global is set instead of Binding when the place denotes a module-level
	// `static` item: it lives in the global address space (LoadGlobal/
	// StoreGlobal), not a function's local data stack (Load/Store).
	Global *GlobalVar

	// Addr is the effective cell address of an ElementPlace: Binding's or
	// Global's own address for a plain name, or that address plus a
	// constant-folded field/tuple-index/array-index offset for a projection
	// (resolvePlace computes the offset once, up front, so repeated use of a
	// projected place never re-walks its base expression).
	Addr int

	// DynIndex is set instead of a folded offset when an ElementPlace is an
	// array index whose index expression is not a compile-time constant: Addr
	// names the array's own base address (not a precomputed element address)
	// and ElemSize its element's cell size; codegen pushes the index
	// expression's value and emits LoadByIndex/StoreByIndex, which add
	// index*ElemSize to Addr at runtime. A dynamic index is only supported as
	// the outermost projection (no indexing into the result of another
	// dynamic index) - spec arrays are never that deeply dynamic in practice
	// (array sizes, like indices used at the type level, must themselves be
	// constant).
	DynIndex ast.Expr
	ElemSize int

	// ConstStr holds the raw value of a string-literal argument. Strings are
	// never a runtime value (spec §7): they exist only to be read back by
	// the analyzer itself, e.g. a built-in call's format-string argument.
	ConstStr   string
	IsConstStr bool

	// Untyped marks an ElementConstant integer whose Type is only a
	// provisional minimal-bitlength guess (spec §8 property 1): a bare
	// integer literal or the fold of one, not yet pinned to a declared
	// type. Coercing it to a concrete type re-checks FitsInRange instead of
	// trusting the provisional Type.
	Untyped bool

	// NativeType is the type the constant was folded to BEFORE any later
	// coercion to an explicitly declared type (coerceConstTo only updates
	// Type, never NativeType). A constant is always pushed onto the stack
	// using its NativeType's encoding, with an explicit Cast emitted
	// afterward if Type differs - reproducing the spec's own worked example
	// (§9), where `static A: field = 5;` emits `PushConst(5, u8)` (5's
	// natural minimal type) followed by `Cast(field)`, not a PushConst
	// claiming to be a field element directly.
	NativeType types.Type
}

func valueElement(t types.Type) Element { return Element{Kind: ElementValue, Type: t} }

func constIntElement(t types.Type, v *big.Int) Element {
	return Element{Kind: ElementConstant, Type: t, NativeType: t, ConstInt: v}
}

// untypedIntElement folds an integer literal/expression to its provisional
// minimal-bitlength type, awaiting a concrete target type to coerce to.
func untypedIntElement(v *big.Int) Element {
	var t types.Type
	if v.Sign() < 0 {
		t = types.IntegerSigned{Bits: types.MinimalBitlength(v, true)}
	} else {
		t = types.IntegerUnsigned{Bits: types.MinimalBitlength(v, false)}
	}
	return Element{Kind: ElementConstant, Type: t, NativeType: t, ConstInt: v, Untyped: true}
}

func constBoolElement(v bool) Element {
	return Element{Kind: ElementConstant, Type: types.Boolean{}, NativeType: types.Boolean{}, ConstBool: v, IsConstBool: true}
}

func typeElement(t types.Type) Element { return Element{Kind: ElementType, Type: t} }

func placeElement(t types.Type, b *Binding) Element {
	return Element{Kind: ElementPlace, Type: t, Binding: b, Addr: b.Address}
}

func globalElement(gv *GlobalVar) Element {
	return Element{Kind: ElementPlace, Type: gv.Type, Global: gv, Addr: gv.Address}
}

// isGlobalPlace reports whether an ElementPlace lives in the global address
// space rather than the current function's local data stack.
func (e Element) isGlobalPlace() bool { return e.Global != nil }

func constStrElement(s string) Element {
	return Element{Kind: ElementConstant, Type: types.Unit{}, ConstStr: s, IsConstStr: true}
}

// isConstant reports whether e denotes a compile-time-known value.
func (e Element) isConstant() bool { return e.Kind == ElementConstant }
