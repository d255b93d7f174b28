package types

import (
	"math/big"
	"testing"
)

func TestMinimalBitlength(t *testing.T) {
	cases := []struct {
		v      int64
		signed bool
		want   int
	}{
		{0, false, 8},
		{1, false, 8},
		{255, false, 8},
		{256, false, 16},
		{65535, false, 16},
		{65536, false, 24},
		{0, true, 8},
		{127, true, 8},
		{128, true, 16},
		{-128, true, 8},
		{-129, true, 16},
	}
	for _, c := range cases {
		got := MinimalBitlength(big.NewInt(c.v), c.signed)
		if got != c.want {
			t.Errorf("MinimalBitlength(%d, %v) = %d, want %d", c.v, c.signed, got, c.want)
		}
	}
}

func TestFitsInRange(t *testing.T) {
	if !FitsInRange(big.NewInt(255), false, 8) {
		t.Error("255 should fit in u8")
	}
	if FitsInRange(big.NewInt(256), false, 8) {
		t.Error("256 should not fit in u8")
	}
	if FitsInRange(big.NewInt(-1), false, 8) {
		t.Error("-1 should not fit in u8")
	}
	if !FitsInRange(big.NewInt(-128), true, 8) {
		t.Error("-128 should fit in i8")
	}
	if FitsInRange(big.NewInt(-129), true, 8) {
		t.Error("-129 should not fit in i8")
	}
}

func TestEqualStructuresByUniqueID(t *testing.T) {
	f := []StructField{{Name: "x", Type: IntegerUnsigned{Bits: 8}}}
	s1 := NewStructure(NextUniqueID(), "Point", f)
	s2 := NewStructure(NextUniqueID(), "Point", f)
	if Equal(s1, s2) {
		t.Error("structurally identical structs with different unique ids must not be equal")
	}
	if !Equal(s1, s1) {
		t.Error("a structure must equal itself")
	}
}

func TestArrayAndTupleSize(t *testing.T) {
	arr := NewArray(IntegerUnsigned{Bits: 8}, 4)
	if arr.Size() != 4 {
		t.Errorf("want size 4, got %d", arr.Size())
	}
	tup := NewTuple([]Type{IntegerUnsigned{Bits: 8}, Boolean{}, NewArray(Field{}, 3)})
	if tup.Size() != 1+1+3 {
		t.Errorf("want size 5, got %d", tup.Size())
	}
}

func TestCanCast(t *testing.T) {
	u8, u16, i8, f := IntegerUnsigned{Bits: 8}, IntegerUnsigned{Bits: 16}, IntegerSigned{Bits: 8}, Field{}
	if !CanCast(u8, u16) {
		t.Error("u8 -> u16 should be allowed")
	}
	if !CanCast(u8, i8) {
		t.Error("u8 -> i8 should be allowed for the parser/analyzer to gate by value at constant-fold time")
	}
	if !CanCast(u8, f) {
		t.Error("u8 -> field should always be allowed")
	}
	if CanCast(f, u8) {
		t.Error("field -> u8 must be forbidden")
	}
}

func TestEnumerationUnderlyingBitlength(t *testing.T) {
	variants := []EnumVariant{
		{Name: "Red", Value: big.NewInt(0)},
		{Name: "Green", Value: big.NewInt(1)},
		{Name: "Blue", Value: big.NewInt(300)},
	}
	e := NewEnumeration(NextUniqueID(), "Color", variants)
	if e.Underlying.Bits != 16 {
		t.Errorf("want u16 underlying (300 needs 16 bits), got u%d", e.Underlying.Bits)
	}
}
