package semantic

import (
	"math/big"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// foldConstExpr attempts to evaluate e entirely at compile time, per the
// constant subset spec §4.2/§4.4 requires for array sizes, range bounds,
// and enum discriminants. ok is false if e is not (currently) foldable —
// e.g. it reads a runtime function parameter — without that alone being
// an error: callers like resolveTypeExpr's hoisting loop rely on a quiet
// false to mean "try again once more names are known", and array/range
// contexts that truly require a constant report their own diagnostic.
// Overflow/zero-division diagnostics (spec §8 property 1) are grounded on
// original_source/zinc-compiler/src/semantic/element/constant/integer/
// tests.rs, which exercises exactly this family of failures.
func (a *Analyzer) foldConstExpr(e ast.Expr) (Element, bool) {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return a.foldConstExpr(e.X)
	case *ast.IntLiteralExpr:
		return untypedIntElement(new(big.Int).Set(e.Value)), true
	case *ast.BoolLiteralExpr:
		return constBoolElement(e.Value), true
	case *ast.PathExpr:
		return a.foldPathConst(e)
	case *ast.IdentExpr:
		return a.foldPathConst(&ast.PathExpr{Segments: []*ast.IdentExpr{e}})
	case *ast.UnaryExpr:
		return a.foldUnaryConst(e)
	case *ast.BinaryExpr:
		return a.foldBinaryConst(e)
	case *ast.CastExpr:
		return a.foldCastConst(e)
	default:
		return Element{}, false
	}
}

func (a *Analyzer) foldPathConst(p *ast.PathExpr) (Element, bool) {
	if len(p.Segments) == 1 {
		if el, ok := a.constants.Get(p.Segments[0].Lit); ok {
			return el, true
		}
		return Element{}, false
	}
	if len(p.Segments) == 2 {
		enumName, variant := p.Segments[0].Lit, p.Segments[1].Lit
		if t, ok := a.namedTypes.Get(enumName); ok {
			if en, ok := t.(*types.Enumeration); ok {
				if idx := en.VariantIndex(variant); idx >= 0 {
					return constIntElement(en, new(big.Int).Set(en.Variants[idx].Value)), true
				}
			}
		}
	}
	return Element{}, false
}

func (a *Analyzer) foldUnaryConst(u *ast.UnaryExpr) (Element, bool) {
	x, ok := a.foldConstExpr(u.X)
	if !ok || !x.isConstant() {
		return Element{}, false
	}
	switch u.Type {
	case token.BANG:
		if !x.IsConstBool {
			return Element{}, false
		}
		return constBoolElement(!x.ConstBool), true
	case token.MINUS:
		if x.ConstInt == nil {
			return Element{}, false
		}
		neg := new(big.Int).Neg(x.ConstInt)
		if !x.Untyped && types.IsInteger(x.Type) {
			signed, bits := integerShape(x.Type)
			if !signed {
				a.errorf(u.Op, diagOverflowNegation, x.Type)
				return Element{}, false
			}
			if !types.FitsInRange(neg, signed, bits) {
				a.errorf(u.Op, diagOverflowNegation, x.Type)
				return Element{}, false
			}
			return constIntElement(x.Type, neg), true
		}
		return untypedIntElement(neg), true
	default:
		return Element{}, false
	}
}

// integerShape reports the signedness/bitlength of an integer types.Type.
func integerShape(t types.Type) (signed bool, bits int) {
	switch t := t.(type) {
	case types.IntegerUnsigned:
		return false, t.Bits
	case types.IntegerSigned:
		return true, t.Bits
	default:
		return false, 0
	}
}

func (a *Analyzer) foldBinaryConst(b *ast.BinaryExpr) (Element, bool) {
	left, ok := a.foldConstExpr(b.Left)
	if !ok || !left.isConstant() {
		return Element{}, false
	}
	right, ok := a.foldConstExpr(b.Right)
	if !ok || !right.isConstant() {
		return Element{}, false
	}

	if left.IsConstBool || right.IsConstBool {
		if !left.IsConstBool || !right.IsConstBool {
			return Element{}, false
		}
		return foldBoolOp(b.Type, left.ConstBool, right.ConstBool)
	}

	if left.ConstInt == nil || right.ConstInt == nil {
		return Element{}, false
	}

	// Pin the result's reported type to whichever side is already typed, so
	// a typed constant combined with a bare literal reports overflow
	// against the typed side's range (e.g. `some_u8_const + 300`).
	resultType := left.Type
	untyped := left.Untyped && right.Untyped
	if left.Untyped && !right.Untyped {
		resultType = right.Type
	}

	pos := b.Op
	lv, rv := left.ConstInt, right.ConstInt
	var res *big.Int
	switch b.Type {
	case token.PLUS:
		res = new(big.Int).Add(lv, rv)
	case token.MINUS:
		res = new(big.Int).Sub(lv, rv)
	case token.STAR:
		res = new(big.Int).Mul(lv, rv)
	case token.SLASH:
		if rv.Sign() == 0 {
			a.errorf(pos, diagZeroDivision)
			return Element{}, false
		}
		res = new(big.Int).Quo(lv, rv)
	case token.PERCENT:
		if rv.Sign() == 0 {
			a.errorf(pos, diagZeroRemainder)
			return Element{}, false
		}
		res = new(big.Int).Rem(lv, rv)
	case token.EQEQ:
		return constBoolElement(lv.Cmp(rv) == 0), true
	case token.NEQ:
		return constBoolElement(lv.Cmp(rv) != 0), true
	case token.LT:
		return constBoolElement(lv.Cmp(rv) < 0), true
	case token.LE:
		return constBoolElement(lv.Cmp(rv) <= 0), true
	case token.GT:
		return constBoolElement(lv.Cmp(rv) > 0), true
	case token.GE:
		return constBoolElement(lv.Cmp(rv) >= 0), true
	default:
		return Element{}, false
	}

	if untyped {
		return untypedIntElement(res), true
	}
	signed, bits := integerShape(resultType)
	if resultType.Kind() != types.KindField && !types.FitsInRange(res, signed, bits) {
		a.errorf(pos, overflowDiagFor(b.Type), resultType)
		return Element{}, false
	}
	return constIntElement(resultType, res), true
}

func overflowDiagFor(op token.Token) string {
	switch op {
	case token.PLUS:
		return diagOverflowAddition
	case token.MINUS:
		return diagOverflowSubtraction
	case token.STAR:
		return diagOverflowMultiplication
	case token.SLASH, token.PERCENT:
		return diagOverflowDivision
	default:
		return diagOverflowAddition
	}
}

func foldBoolOp(op token.Token, l, r bool) (Element, bool) {
	switch op {
	case token.AMPAMP:
		return constBoolElement(l && r), true
	case token.PIPEPIPE:
		return constBoolElement(l || r), true
	case token.EQEQ:
		return constBoolElement(l == r), true
	case token.NEQ:
		return constBoolElement(l != r), true
	default:
		return Element{}, false
	}
}

func (a *Analyzer) foldCastConst(c *ast.CastExpr) (Element, bool) {
	x, ok := a.foldConstExpr(c.X)
	if !ok || x.ConstInt == nil {
		return Element{}, false
	}
	target, ok := a.resolveTypeExpr(c.Type)
	if !ok {
		return Element{}, false
	}
	signed, bits := integerShape(target)
	if target.Kind() != types.KindField && !types.FitsInRange(x.ConstInt, signed, bits) {
		a.errorf(c.As, diagOverflowCasting, target)
		return Element{}, false
	}
	return constIntElement(target, new(big.Int).Set(x.ConstInt)), true
}
