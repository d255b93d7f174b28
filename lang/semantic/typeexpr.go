package semantic

import (
	"strconv"
	"strings"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/types"
)

// namedScalarType maps the built-in leaf type names a NamedType may spell
// out literally to their resolved types.Type. u8..u248 and i8..i248 are
// recognized by prefix/suffix rather than enumerated, mirroring the lexical
// rule spec §4.1 gives for integer type keywords.
func namedScalarType(name string) (types.Type, bool) {
	switch name {
	case "bool":
		return types.Boolean{}, true
	case "field":
		return types.Field{}, true
	}
	if len(name) >= 2 && (name[0] == 'u' || name[0] == 'i') {
		if bits, err := strconv.Atoi(name[1:]); err == nil && bits > 0 && bits%8 == 0 && bits <= 248 {
			if name[0] == 'u' {
				return types.IntegerUnsigned{Bits: bits}, true
			}
			return types.IntegerSigned{Bits: bits}, true
		}
	}
	return nil, false
}

// resolveTypeExpr resolves a syntactic type annotation to its semantic
// type. For a NamedType/PathType naming a user-defined struct/enum/alias
// not yet registered, ok is false without recording an error: callers
// doing forward-reference hoisting use this to detect "not resolved yet"
// versus a genuine unknown-name error, which is reported once by
// resolveTypeExprReporting after hoisting's fixpoint loop gives up.
func (a *Analyzer) resolveTypeExpr(te ast.TypeExpr) (types.Type, bool) {
	switch te := te.(type) {
	case *ast.UnitType:
		return types.Unit{}, true
	case *ast.NamedType:
		if t, ok := namedScalarType(te.Name.Lit); ok {
			return t, true
		}
		return a.namedTypes.Get(te.Name.Lit)
	case *ast.PathType:
		name := pathString(te.Path)
		return a.namedTypes.Get(name)
	case *ast.TupleType:
		elems := make([]types.Type, len(te.Elems))
		for i, e := range te.Elems {
			t, ok := a.resolveTypeExpr(e)
			if !ok {
				return nil, false
			}
			elems[i] = t
		}
		return types.NewTuple(elems), true
	case *ast.ArrayType:
		elem, ok := a.resolveTypeExpr(te.Elem)
		if !ok {
			return nil, false
		}
		n, ok := a.evalConstIndex(te.Size)
		if !ok {
			return nil, false
		}
		return types.NewArray(elem, n), true
	default:
		return nil, false
	}
}

// resolveTypeExprReporting is resolveTypeExpr but emits a diagnostic on
// failure, for use once hoisting is complete and every name should be
// resolvable.
func (a *Analyzer) resolveTypeExprReporting(te ast.TypeExpr) types.Type {
	t, ok := a.resolveTypeExpr(te)
	if !ok {
		start, _ := te.Span()
		a.errorf(start, "undefined type %s", typeExprText(te))
		return types.Unit{}
	}
	return t
}

func pathString(p *ast.PathExpr) string {
	var b strings.Builder
	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(seg.Lit)
	}
	return b.String()
}

func typeExprText(te ast.TypeExpr) string {
	switch te := te.(type) {
	case *ast.NamedType:
		return te.Name.Lit
	case *ast.PathType:
		return pathString(te.Path)
	default:
		return "<type>"
	}
}

// evalConstIndex evaluates e as a compile-time array-size/index constant,
// which must be a non-negative integer (spec §4.2). It reuses the general
// constant folder (const.go) but narrows the result to an int, reporting
// an error (and returning ok=false) for anything else.
func (a *Analyzer) evalConstIndex(e ast.Expr) (int, bool) {
	el, ok := a.foldConstExpr(e)
	if !ok || el.ConstInt == nil || !el.ConstInt.IsInt64() || el.ConstInt.Sign() < 0 {
		start, _ := e.Span()
		a.errorf(start, "array size must be a non-negative compile-time constant")
		return 0, false
	}
	return int(el.ConstInt.Int64()), true
}
