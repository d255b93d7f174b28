// Package types represents the closed sum of static types of the zircon
// language, their field-cell sizes, and the casting rules between them
// (spec §4.3).
package types

import "fmt"

// Kind discriminates the members of the closed type sum.
type Kind int8

const (
	KindUnit Kind = iota
	KindBoolean
	KindIntegerUnsigned
	KindIntegerSigned
	KindField
	KindArray
	KindTuple
	KindStructure
	KindEnumeration
	KindRange
	KindFunction
)

// Type is implemented by every member of the closed type sum. Types compare
// structurally, except Structure and Enumeration which compare by UniqueID;
// see Equal.
type Type interface {
	fmt.Stringer

	// Kind reports which member of the closed sum this type is.
	Kind() Kind

	// Size returns the number of field cells a value of this type occupies:
	// 1 for scalars, the sum of component sizes for composites. Computed at
	// construction and stable for the type's lifetime.
	Size() int

	// isType is unexported so Type cannot be implemented outside this
	// package, keeping the sum closed.
	isType()
}

// Equal reports whether a and b denote the same type. Structure and
// Enumeration compare by UniqueID rather than structurally, since two
// distinct declarations may otherwise have identical shape.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Unit, Boolean, Field:
		return true
	case IntegerUnsigned:
		return x.Bits == b.(IntegerUnsigned).Bits
	case IntegerSigned:
		return x.Bits == b.(IntegerSigned).Bits
	case *Array:
		y := b.(*Array)
		return x.Size_ == y.Size_ && Equal(x.Elem, y.Elem)
	case *Tuple:
		y := b.(*Tuple)
		if len(x.Elems) != len(y.Elems) {
			return false
		}
		for i, e := range x.Elems {
			if !Equal(e, y.Elems[i]) {
				return false
			}
		}
		return true
	case *Structure:
		return x.UniqueID == b.(*Structure).UniqueID
	case *Enumeration:
		return x.UniqueID == b.(*Enumeration).UniqueID
	case *Range:
		y := b.(*Range)
		return x.Inclusive == y.Inclusive && Equal(x.Bound, y.Bound)
	case *Function:
		y := b.(*Function)
		return Equal(x.Ret, y.Ret) && sameTypes(x.Params, y.Params)
	default:
		return false
	}
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsInteger reports whether t is IntegerUnsigned or IntegerSigned.
func IsInteger(t Type) bool {
	k := t.Kind()
	return k == KindIntegerUnsigned || k == KindIntegerSigned
}
