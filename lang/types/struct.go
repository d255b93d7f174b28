package types

import "strings"

// uniqueIDSeq backs NextUniqueID, which hands out globally unique
// identifiers, so that two textually identical declarations in different
// scopes remain distinct types.
var uniqueIDSeq uint64

// NextUniqueID returns a fresh, never-repeated identifier. The semantic
// analyzer calls it for every struct, enum and function declaration it
// hoists and for main's input structure; wire decoding and the
// pseudo-assembler call it for each structure or enumeration they rebuild.
func NextUniqueID() uint64 {
	uniqueIDSeq++
	return uniqueIDSeq
}

// StructField is one (name, type) entry of a Structure, in declaration order.
type StructField struct {
	Name string
	Type Type
}

// Structure is a named, ordered record type. It compares by UniqueID, not
// structurally: two struct declarations with identical fields are distinct
// types.
type Structure struct {
	UniqueID uint64
	Name     string
	Fields   []StructField
	size     int
}

// NewStructure returns the Structure type for the given name and ordered
// fields, computing and caching its cell size.
func NewStructure(id uint64, name string, fields []StructField) *Structure {
	size := 0
	for _, f := range fields {
		size += f.Type.Size()
	}
	return &Structure{UniqueID: id, Name: name, Fields: fields, size: size}
}

func (s *Structure) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(" { ")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.String())
	}
	b.WriteString(" }")
	return b.String()
}

func (*Structure) Kind() Kind  { return KindStructure }
func (s *Structure) Size() int { return s.size }
func (*Structure) isType()     {}

// FieldIndex returns the position of name among s.Fields, or -1 if absent.
func (s *Structure) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// FieldOffset returns the field-cell offset of the field at index i, the sum
// of the sizes of the fields preceding it.
func (s *Structure) FieldOffset(i int) int {
	off := 0
	for _, f := range s.Fields[:i] {
		off += f.Type.Size()
	}
	return off
}
