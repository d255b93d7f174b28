package types

import (
	"math/big"
	"strings"
)

// EnumVariant is one (name, numeric value) entry of an Enumeration, in
// declaration order.
type EnumVariant struct {
	Name  string
	Value *big.Int
}

// Enumeration is a named, ordered set of integer-valued variants. It
// compares by UniqueID, not structurally. Its underlying integer type is
// inferred from the largest variant value (Open Question (b): the source
// material disagrees on whether variant values may be negative; zircon
// treats them as non-negative only, so Underlying is always unsigned).
type Enumeration struct {
	UniqueID   uint64
	Name       string
	Variants   []EnumVariant
	Underlying IntegerUnsigned
}

// NewEnumeration returns the Enumeration type for the given name and ordered
// variants, inferring Underlying from the largest variant's minimal
// bitlength.
func NewEnumeration(id uint64, name string, variants []EnumVariant) *Enumeration {
	bits := 8
	for _, v := range variants {
		if b := MinimalBitlength(v.Value, false); b > bits {
			bits = b
		}
	}
	return &Enumeration{UniqueID: id, Name: name, Variants: variants, Underlying: IntegerUnsigned{Bits: bits}}
}

func (e *Enumeration) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString(" { ")
	for i, v := range e.Variants {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.Name)
		b.WriteString(" = ")
		b.WriteString(v.Value.String())
	}
	b.WriteString(" }")
	return b.String()
}

func (*Enumeration) Kind() Kind { return KindEnumeration }
func (*Enumeration) Size() int  { return 1 }
func (*Enumeration) isType()    {}

// VariantIndex returns the position of name among e.Variants, or -1 if
// absent.
func (e *Enumeration) VariantIndex(name string) int {
	for i, v := range e.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}
