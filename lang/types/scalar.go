package types

import "fmt"

// Unit is the type of the `()` value; it occupies no field cells.
type Unit struct{}

func (Unit) String() string { return "()" }
func (Unit) Kind() Kind     { return KindUnit }
func (Unit) Size() int      { return 0 }
func (Unit) isType()        {}

// Boolean is the type of `true`/`false`.
type Boolean struct{}

func (Boolean) String() string { return "bool" }
func (Boolean) Kind() Kind     { return KindBoolean }
func (Boolean) Size() int      { return 1 }
func (Boolean) isType()        {}

// IntegerUnsigned is an unsigned integer type of the given bitlength, one of
// {8, 16, ..., 248}.
type IntegerUnsigned struct {
	Bits int
}

func (t IntegerUnsigned) String() string { return fmt.Sprintf("u%d", t.Bits) }
func (IntegerUnsigned) Kind() Kind       { return KindIntegerUnsigned }
func (IntegerUnsigned) Size() int        { return 1 }
func (IntegerUnsigned) isType()          {}

// IntegerSigned is a signed integer type of the given bitlength, one of
// {8, 16, ..., 248}.
type IntegerSigned struct {
	Bits int
}

func (t IntegerSigned) String() string { return fmt.Sprintf("i%d", t.Bits) }
func (IntegerSigned) Kind() Kind       { return KindIntegerSigned }
func (IntegerSigned) Size() int        { return 1 }
func (IntegerSigned) isType()          {}

// Field is the type of an element of the prime field the VM operates over
// (bitlength ~= BitlengthField).
type Field struct{}

func (Field) String() string { return "field" }
func (Field) Kind() Kind     { return KindField }
func (Field) Size() int      { return 1 }
func (Field) isType()        {}
