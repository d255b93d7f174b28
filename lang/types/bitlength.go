package types

import "math/big"

// BitlengthField is the distilled spec's implementation-defined bitlength
// of the prime field the VM operates over (spec §3): BN254's scalar field
// is just under 2^254. The analyzer itself uses the configurable
// lang/config.Limits.BitlengthField (defaulting to this same value)
// instead of this constant; it is kept here as the type system's
// documented default for code that has no Limits to thread through.
const BitlengthField = 254

// MinimalBitlength returns the smallest multiple of 8 such that v fits in
// [0, 2^b) when signed is false, or [-2^(b-1), 2^(b-1)) when signed is true
// (spec §8 property 1). Used to pick the type of an integer literal whose
// inference is still open.
func MinimalBitlength(v *big.Int, signed bool) int {
	if !signed {
		bits := v.BitLen()
		if bits < 1 {
			bits = 1
		}
		return ceilToByte(bits)
	}

	// a negative v fits b bits when |v|-1 < 2^(b-1), so -128 still fits 8.
	abs := new(big.Int).Abs(v)
	if v.Sign() < 0 {
		abs.Sub(abs, big.NewInt(1))
	}
	return ceilToByte(abs.BitLen() + 1)
}

func ceilToByte(bits int) int {
	b := ((bits + 7) / 8) * 8
	if b < 8 {
		b = 8
	}
	return b
}

// FitsInRange reports whether v is representable by an integer type with the
// given signedness and bitlength.
func FitsInRange(v *big.Int, signed bool, bits int) bool {
	if !signed {
		if v.Sign() < 0 {
			return false
		}
		max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		return v.Cmp(max) < 0
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(half)
	max := new(big.Int).Sub(half, big.NewInt(1))
	return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
}

// CanCast reports whether a value of type from may be cast (`as`) to type to
// for a runtime (non-constant) operand, per spec §4.3's casting table. For
// constant operands the semantic analyzer additionally allows narrowing/
// resigning casts whose value fits the target range; see FitsInRange.
func CanCast(from, to Type) bool {
	switch {
	case IsInteger(from) && IsInteger(to):
		return true // narrowing/resigning allowed for runtime; VM enforces range
	case IsInteger(from) && to.Kind() == KindField:
		return true // widening, always allowed
	case from.Kind() == KindField && IsInteger(to):
		return false // forbidden
	case from.Kind() == KindEnumeration:
		to, ok := to.(IntegerUnsigned)
		return ok && to.Bits == from.(*Enumeration).Underlying.Bits
	case to.Kind() == KindEnumeration:
		from, ok := from.(IntegerUnsigned)
		return ok && from.Bits == to.(*Enumeration).Underlying.Bits
	default:
		return false
	}
}
