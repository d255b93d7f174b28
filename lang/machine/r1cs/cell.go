package r1cs

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// comparisonBits bounds the bit-decomposition range-check gadget used by
// the ordering comparisons (Le/Lt/Ge/Gt) and DivRem's remainder check.
// zircon's largest non-field integer type is 248 bits (spec §5); unlike
// Cast, the Le/Lt/.../DivRem instructions carry no per-comparison operand
// bitlength (bytecode.Instruction's Bits field is meaningful only for
// PushConst/Cast), so the gadget conservatively decomposes against the
// widest declared integer type rather than the true operand width - a
// deliberate simplification recorded in DESIGN.md rather than a larger
// redesign threading per-comparison width through the instruction stream.
const comparisonBits = 248

// cell is one R1CS VM stack/frame slot: either a plain Go-side constant
// with no allocated Variable (none of its dependencies are witness
// dependent), or an allocated circuit Variable carrying a witness value
// whenever the owning ConstraintSystem is proving. Grounded on
// original_source/zrust-vm/src/element/constrained_element.rs's
// ConstrainedElement dualism (spec §7 supplement): arithmetic between two
// constant cells folds in Go and never touches the constraint system.
type cell struct {
	isConstant bool
	constant   fr.Element // meaningful iff isConstant
	v          Variable   // meaningful iff !isConstant
	value      fr.Element // witness value, meaningful whenever proving
}

func constCell(v fr.Element) cell {
	return cell{isConstant: true, constant: v, value: v}
}

func varCell(v Variable, value fr.Element) cell {
	return cell{v: v, value: value}
}

func boolElement(b bool) fr.Element {
	var z fr.Element
	if b {
		z.SetOne()
	}
	return z
}

// fieldValue returns c's witness value, whether constant or allocated.
func (c cell) fieldValue() fr.Element { return c.value }

// lc returns c's linear combination: a scaled one-wire for a constant, or
// a unit-coefficient reference to its allocated Variable.
func (c cell) lc() LinearCombination {
	if c.isConstant {
		return lcConst(c.constant)
	}
	return lcVar(c.v)
}

// alloc forces c to have an allocated Variable, allocating one against cs
// if c is still a bare constant. Needed whenever a cell must be
// referenced by a constraint as something other than a scaled one-wire,
// e.g. a Store target or a ConditionalSelect operand.
func (c cell) alloc(cs *ConstraintSystem) cell {
	if !c.isConstant {
		return c
	}
	return varCell(cs.Alloc(c.constant), c.constant)
}

func bigFromField(e fr.Element) *big.Int {
	var b big.Int
	e.BigInt(&b)
	return &b
}

// add implements the spec §4.7 row "(l + r)*1 = sum".
func add(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		var z fr.Element
		z.Add(&l.constant, &r.constant)
		return constCell(z), nil
	}
	var sum fr.Element
	sum.Add(&l.value, &r.value)
	out := varCell(cs.Alloc(sum), sum)
	err := cs.Enforce(addLC(l.lc(), r.lc()), oneLC(), out.lc(), cs.Namespace("add"))
	return out, err
}

// sub implements "(l - r)*1 = diff".
func sub(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		var z fr.Element
		z.Sub(&l.constant, &r.constant)
		return constCell(z), nil
	}
	var diff fr.Element
	diff.Sub(&l.value, &r.value)
	out := varCell(cs.Alloc(diff), diff)
	err := cs.Enforce(subLC(l.lc(), r.lc()), oneLC(), out.lc(), cs.Namespace("sub"))
	return out, err
}

// mul implements "l * r = prod".
func mul(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		var z fr.Element
		z.Mul(&l.constant, &r.constant)
		return constCell(z), nil
	}
	var prod fr.Element
	prod.Mul(&l.value, &r.value)
	out := varCell(cs.Alloc(prod), prod)
	err := cs.Enforce(l.lc(), r.lc(), out.lc(), cs.Namespace("mul"))
	return out, err
}

// neg implements "l*1 = -neg".
func neg(cs *ConstraintSystem, l cell) (cell, error) {
	if l.isConstant {
		var z fr.Element
		z.Neg(&l.constant)
		return constCell(z), nil
	}
	var negv fr.Element
	negv.Neg(&l.value)
	out := varCell(cs.Alloc(negv), negv)
	var negOne fr.Element
	negOne.SetOne()
	negOne.Neg(&negOne)
	err := cs.Enforce(l.lc(), oneLC(), scaleLC(out.lc(), negOne), cs.Namespace("neg"))
	return out, err
}

// not implements "1 - l", boolean domain assumed.
func not(cs *ConstraintSystem, l cell) (cell, error) {
	if l.isConstant {
		var one, z fr.Element
		one.SetOne()
		z.Sub(&one, &l.constant)
		return constCell(z), nil
	}
	var one, notv fr.Element
	one.SetOne()
	notv.Sub(&one, &l.value)
	out := varCell(cs.Alloc(notv), notv)
	err := cs.Enforce(oneLC(), subLC(oneLC(), l.lc()), out.lc(), cs.Namespace("not"))
	return out, err
}

// and implements "l*r = c" over the boolean domain.
func and(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		var z fr.Element
		z.Mul(&l.constant, &r.constant)
		return constCell(z), nil
	}
	var c fr.Element
	c.Mul(&l.value, &r.value)
	out := varCell(cs.Alloc(c), c)
	err := cs.Enforce(l.lc(), r.lc(), out.lc(), cs.Namespace("and"))
	return out, err
}

// or implements "(1-l)(1-r) = 1-c".
func or(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		var z fr.Element
		var one fr.Element
		one.SetOne()
		var nl, nr fr.Element
		nl.Sub(&one, &l.constant)
		nr.Sub(&one, &r.constant)
		var prod fr.Element
		prod.Mul(&nl, &nr)
		z.Sub(&one, &prod)
		return constCell(z), nil
	}
	var one, nlv, nrv, c fr.Element
	one.SetOne()
	nlv.Sub(&one, &l.value)
	nrv.Sub(&one, &r.value)
	var prod fr.Element
	prod.Mul(&nlv, &nrv)
	c.Sub(&one, &prod)
	out := varCell(cs.Alloc(c), c)
	notL := subLC(oneLC(), l.lc())
	notR := subLC(oneLC(), r.lc())
	err := cs.Enforce(notL, notR, subLC(oneLC(), out.lc()), cs.Namespace("or"))
	return out, err
}

// xor implements "(2l)(r) = l + r - c".
func xor(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		var xb, yb, rb big.Int
		xb = *bigFromField(l.constant)
		yb = *bigFromField(r.constant)
		rb.Xor(&xb, &yb)
		var z fr.Element
		z.SetBigInt(&rb)
		return constCell(z), nil
	}
	var xb, yb, rb big.Int
	xb = *bigFromField(l.value)
	yb = *bigFromField(r.value)
	rb.Xor(&xb, &yb)
	var c fr.Element
	c.SetBigInt(&rb)
	out := varCell(cs.Alloc(c), c)
	var two fr.Element
	two.SetUint64(2)
	lhs := scaleLC(l.lc(), two)
	rhs := subLC(addLC(l.lc(), r.lc()), out.lc())
	err := cs.Enforce(lhs, r.lc(), rhs, cs.Namespace("xor"))
	return out, err
}

// assertBoolean enforces b*(1-b) = 0, forcing b into the {0,1} domain.
func assertBoolean(cs *ConstraintSystem, b cell, label string) error {
	return cs.Enforce(b.lc(), subLC(oneLC(), b.lc()), LinearCombination{}, label)
}

// decomposeBits decomposes x into bits boolean-constrained wires whose
// little-endian weighted sum is tied back to x by a linear equality
// constraint ("decompose to N-bit, repack, assert equality" - spec
// §4.7's Le row). If x's witness value does not fit in bits, the
// repack-equality constraint is unsatisfiable, the same way an
// out-of-range witness fails any other constraint at VM time (spec §7).
func decomposeBits(cs *ConstraintSystem, x cell, bits int, label string) ([]cell, error) {
	xb := bigFromField(x.value)
	out := make([]cell, bits)
	var weighted LinearCombination
	weight := big.NewInt(1)
	for i := 0; i < bits; i++ {
		bit := new(big.Int).And(new(big.Int).Rsh(xb, uint(i)), big.NewInt(1))
		var bv fr.Element
		bv.SetBigInt(bit)
		bc := varCell(cs.Alloc(bv), bv)
		if err := assertBoolean(cs, bc, cs.Namespace(label+".bit")); err != nil {
			return nil, err
		}
		var coeff fr.Element
		coeff.SetBigInt(weight)
		weighted = append(weighted, Term{Coeff: coeff, Var: bc.v})
		out[i] = bc
		weight.Lsh(weight, 1)
	}
	if err := cs.Enforce(oneLC(), weighted, x.lc(), cs.Namespace(label+".repack")); err != nil {
		return nil, err
	}
	return out, nil
}

// le implements the spec's comparison gadget: a single allocated boolean
// result tied to l, r by one multiplicative constraint, where the
// "other side" of the branch (delta = r-l when le holds, l-r otherwise)
// is bit-decomposed to bound it to comparisonBits - see the Lt/Eq/Ge/Gt
// helpers below for how the rest of the table's row is built from this.
//
//	delta * (2*result - 1) = r - l
//
// When result=1: delta = r-l (so delta >= 0 once range-checked).
// When result=0: delta = l-r (so delta >= 0, i.e. l > r).
func le(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		leq := bigFromField(l.constant).Cmp(bigFromField(r.constant)) <= 0
		return constCell(boolElement(leq)), nil
	}
	leq := bigFromField(l.value).Cmp(bigFromField(r.value)) <= 0
	var deltaVal fr.Element
	if leq {
		deltaVal.Sub(&r.value, &l.value)
	} else {
		deltaVal.Sub(&l.value, &r.value)
	}
	delta := varCell(cs.Alloc(deltaVal), deltaVal)
	if _, err := decomposeBits(cs, delta, comparisonBits, cs.Namespace("le.range")); err != nil {
		return cell{}, err
	}
	result := varCell(cs.Alloc(boolElement(leq)), boolElement(leq))
	if err := assertBoolean(cs, result, cs.Namespace("le.bool")); err != nil {
		return cell{}, err
	}
	var two fr.Element
	two.SetUint64(2)
	twoResMinus1 := subLC(scaleLC(result.lc(), two), oneLC())
	err := cs.Enforce(delta.lc(), twoResMinus1, subLC(r.lc(), l.lc()), cs.Namespace("le"))
	return result, err
}

// lt implements "Lt | le(l, r-1)".
func lt(cs *ConstraintSystem, l, r cell) (cell, error) {
	rMinus1, err := sub(cs, r, constCell(boolElement(true)))
	if err != nil {
		return cell{}, err
	}
	return le(cs, l, rMinus1)
}

// eq implements the standard is-zero gadget over l-r: an allocated
// inverse wire ties diff*inv = 1-eq and diff*eq = 0, so eq is forced to 1
// iff diff is zero (spec §4.7: "gadget over AllocatedNum::equals").
func eq(cs *ConstraintSystem, l, r cell) (cell, error) {
	if l.isConstant && r.isConstant {
		return constCell(boolElement(l.constant.Equal(&r.constant))), nil
	}
	var diff fr.Element
	diff.Sub(&l.value, &r.value)
	isZero := diff.IsZero()
	var inv fr.Element
	if !isZero {
		inv.Inverse(&diff)
	}
	invCell := varCell(cs.Alloc(inv), inv)
	eqCell := varCell(cs.Alloc(boolElement(isZero)), boolElement(isZero))
	diffLC := subLC(l.lc(), r.lc())
	if err := cs.Enforce(diffLC, invCell.lc(), subLC(oneLC(), eqCell.lc()), cs.Namespace("eq.inv")); err != nil {
		return cell{}, err
	}
	if err := cs.Enforce(diffLC, eqCell.lc(), LinearCombination{}, cs.Namespace("eq.zero")); err != nil {
		return cell{}, err
	}
	return eqCell, nil
}

// ne, ge, gt are logical complements of eq, lt, le (spec §4.7).
func ne(cs *ConstraintSystem, l, r cell) (cell, error) {
	e, err := eq(cs, l, r)
	if err != nil {
		return cell{}, err
	}
	return not(cs, e)
}

func ge(cs *ConstraintSystem, l, r cell) (cell, error) {
	lessThan, err := lt(cs, l, r)
	if err != nil {
		return cell{}, err
	}
	return not(cs, lessThan)
}

func gt(cs *ConstraintSystem, l, r cell) (cell, error) {
	lessEq, err := le(cs, l, r)
	if err != nil {
		return cell{}, err
	}
	return not(cs, lessEq)
}

// conditionalSelect implements "(t-f)*c = s-f": s is t when c is 1 and f
// when c is 0, without branching on the witness - the gadget behind the
// R1CS VM's conditional Store gating (spec §4.7 "Conditional execution").
func conditionalSelect(cs *ConstraintSystem, cond, t, f cell) (cell, error) {
	if cond.isConstant {
		if !cond.constant.IsZero() {
			return t, nil
		}
		return f, nil
	}
	var sv fr.Element
	if !cond.value.IsZero() {
		sv = t.value
	} else {
		sv = f.value
	}
	out := varCell(cs.Alloc(sv), sv)
	err := cs.Enforce(subLC(t.lc(), f.lc()), cond.lc(), subLC(out.lc(), f.lc()), cs.Namespace("select"))
	return out, err
}

// divRem implements "q*d = n-r; also 0 <= r < d via range-bit
// decomposition" (spec §4.7).
func divRem(cs *ConstraintSystem, n, d cell) (q, r cell, err error) {
	if n.isConstant && d.isConstant {
		nb, db := bigFromField(n.constant), bigFromField(d.constant)
		if db.Sign() == 0 {
			return cell{}, cell{}, fmt.Errorf("r1cs: division by zero")
		}
		qb, rb := new(big.Int), new(big.Int)
		qb.QuoRem(nb, db, rb)
		var qf, rf fr.Element
		qf.SetBigInt(qb)
		rf.SetBigInt(rb)
		return constCell(qf), constCell(rf), nil
	}
	nb, db := bigFromField(n.value), bigFromField(d.value)
	if db.Sign() == 0 {
		return cell{}, cell{}, fmt.Errorf("r1cs: division by zero")
	}
	qb, rb := new(big.Int), new(big.Int)
	qb.QuoRem(nb, db, rb)
	var qf, rf fr.Element
	qf.SetBigInt(qb)
	rf.SetBigInt(rb)
	qCell := varCell(cs.Alloc(qf), qf)
	rCell := varCell(cs.Alloc(rf), rf)
	if err := cs.Enforce(qCell.lc(), d.lc(), subLC(n.lc(), rCell.lc()), cs.Namespace("divrem")); err != nil {
		return cell{}, cell{}, err
	}
	if _, err := decomposeBits(cs, rCell, comparisonBits, cs.Namespace("divrem.range")); err != nil {
		return cell{}, cell{}, err
	}
	rLtD, err := lt(cs, rCell, d)
	if err != nil {
		return cell{}, cell{}, err
	}
	if err := cs.Enforce(oneLC(), rLtD.lc(), oneLC(), cs.Namespace("divrem.bound")); err != nil {
		return cell{}, cell{}, err
	}
	return qCell, rCell, nil
}

// castFold truncates x's canonical representative to bits, reducing the
// signed case into the field's own r-k negative encoding, mirroring
// lang/machine/scalar's castTo exactly (the R1CS VM's witness values must
// agree with the scalar VM's for the same instruction - spec §8 property
// 3). Cast is not itself in the spec §4.7 constraint table, so the
// allocated case only range-checks the output against bits rather than
// algebraically tying it back to the (already trusted-and-range-checked,
// per spec §4.3) input value.
func castFold(x fr.Element, signed bool, bits int) fr.Element {
	b := bigFromField(x)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	mask.Sub(mask, big.NewInt(1))
	b.And(b, mask)
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		if b.Cmp(half) >= 0 {
			full := new(big.Int).Lsh(big.NewInt(1), uint(bits))
			b.Sub(b, full)
		}
	}
	var z fr.Element
	z.SetBigInt(b)
	return z
}

// cast range-checks the result against bits by decomposing its unsigned
// magnitude (x masked to bits, before any sign adjustment - decomposing
// the already r-k-encoded negative representative directly would require
// a field-width decomposition instead of a bits-width one) and, for the
// signed case, ties the final two's-complement-style value to that
// magnitude via its top bit.
func cast(cs *ConstraintSystem, x cell, signed bool, bits int) (cell, error) {
	folded := castFold(x.value, signed, bits)
	if x.isConstant {
		return constCell(folded), nil
	}

	mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	mask.Sub(mask, big.NewInt(1))
	unsignedBig := new(big.Int).And(bigFromField(x.value), mask)
	var unsignedVal fr.Element
	unsignedVal.SetBigInt(unsignedBig)
	unsignedCell := varCell(cs.Alloc(unsignedVal), unsignedVal)

	magBits, err := decomposeBits(cs, unsignedCell, bits, cs.Namespace("cast.range"))
	if err != nil {
		return cell{}, err
	}

	out := varCell(cs.Alloc(folded), folded)
	if !signed {
		if err := cs.Enforce(oneLC(), unsignedCell.lc(), out.lc(), cs.Namespace("cast.unsigned")); err != nil {
			return cell{}, err
		}
		return out, nil
	}

	top := magBits[bits-1]
	var pow fr.Element
	pow.SetBigInt(new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	adjustment := scaleLC(top.lc(), pow)
	if err := cs.Enforce(oneLC(), subLC(unsignedCell.lc(), adjustment), out.lc(), cs.Namespace("cast.signed")); err != nil {
		return cell{}, err
	}
	return out, nil
}
