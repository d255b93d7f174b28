package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/mna/zircon/lang/types"
)

// This file implements the wire format named by the spec: a length-prefixed
// header of (input_type, output_type) serialized as tagged sums, followed
// by a length-prefixed instruction sequence in which every instruction
// begins with a one-byte opcode and is followed by its operands in fixed
// little-endian encoding, BigInt constants as a signedness byte, a
// bitlength byte and a length-prefixed big-endian magnitude. Grounded on
// zrust-bytecode's per-instruction `encode`/`decode` pair (one leading
// InstructionCode byte, e.g. instructions/neg.rs, instructions/sub.rs) and
// on the fixed-width little-endian convention already used by the teacher's
// own bytecode encoder (lang/compiler/compiler.go's encodeInsn).

// DecodingError reports a malformed wire-format instruction or type tag.
type DecodingError struct {
	Offset int
	Reason string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error at offset %d: %s", e.Offset, e.Reason)
}

type typeTag byte

const (
	tagUnit typeTag = iota
	tagBoolean
	tagIntegerUnsigned
	tagIntegerSigned
	tagField
	tagArray
	tagTuple
	tagStructure
	tagEnumeration
	tagRange
	tagFunction
)

// EncodeProgram serializes prog to the bytecode wire format.
func EncodeProgram(prog *Program) ([]byte, error) {
	var buf bytes.Buffer

	var inType types.Type = types.Unit{}
	if prog.InputType != nil {
		inType = prog.InputType
	}
	if err := encodeType(&buf, inType); err != nil {
		return nil, err
	}
	outType := prog.OutputType
	if outType == nil {
		outType = types.Unit{}
	}
	if err := encodeType(&buf, outType); err != nil {
		return nil, err
	}

	var instrBuf bytes.Buffer
	for _, instr := range prog.Instructions {
		encodeInstruction(&instrBuf, instr)
	}
	writeUvarint(&buf, uint64(instrBuf.Len()))
	buf.Write(instrBuf.Bytes())

	return buf.Bytes(), nil
}

// DecodeProgram deserializes a Program from the bytecode wire format.
func DecodeProgram(b []byte) (*Program, int, error) {
	r := &byteReader{b: b}

	inType, err := decodeType(r)
	if err != nil {
		return nil, r.off, err
	}
	outType, err := decodeType(r)
	if err != nil {
		return nil, r.off, err
	}

	n, err := r.uvarint()
	if err != nil {
		return nil, r.off, err
	}
	end := r.off + int(n)
	if end > len(r.b) {
		return nil, r.off, &DecodingError{Offset: r.off, Reason: "instruction section length exceeds buffer"}
	}

	var instrs []Instruction
	for r.off < end {
		instr, err := decodeInstruction(r)
		if err != nil {
			return nil, r.off, err
		}
		instrs = append(instrs, instr)
	}

	var inputType *types.Structure
	if s, ok := inType.(*types.Structure); ok {
		inputType = s
	}
	return &Program{InputType: inputType, OutputType: outType, Instructions: instrs}, r.off, nil
}

func encodeType(buf *bytes.Buffer, t types.Type) error {
	switch t := t.(type) {
	case types.Unit:
		buf.WriteByte(byte(tagUnit))
	case types.Boolean:
		buf.WriteByte(byte(tagBoolean))
	case types.IntegerUnsigned:
		buf.WriteByte(byte(tagIntegerUnsigned))
		buf.WriteByte(byte(t.Bits))
	case types.IntegerSigned:
		buf.WriteByte(byte(tagIntegerSigned))
		buf.WriteByte(byte(t.Bits))
	case types.Field:
		buf.WriteByte(byte(tagField))
	case *types.Array:
		buf.WriteByte(byte(tagArray))
		if err := encodeType(buf, t.Elem); err != nil {
			return err
		}
		writeUint32(buf, uint32(t.Size_))
	case *types.Tuple:
		buf.WriteByte(byte(tagTuple))
		writeUint32(buf, uint32(len(t.Elems)))
		for _, e := range t.Elems {
			if err := encodeType(buf, e); err != nil {
				return err
			}
		}
	case *types.Structure:
		buf.WriteByte(byte(tagStructure))
		writeString(buf, t.Name)
		writeUint32(buf, uint32(len(t.Fields)))
		for _, f := range t.Fields {
			writeString(buf, f.Name)
			if err := encodeType(buf, f.Type); err != nil {
				return err
			}
		}
	case *types.Enumeration:
		buf.WriteByte(byte(tagEnumeration))
		writeString(buf, t.Name)
		buf.WriteByte(byte(t.Underlying.Bits))
		writeUint32(buf, uint32(len(t.Variants)))
		for _, v := range t.Variants {
			writeString(buf, v.Name)
			writeBigIntMagnitude(buf, v.Value)
		}
	case *types.Range:
		buf.WriteByte(byte(tagRange))
		if t.Inclusive {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		if err := encodeType(buf, t.Bound); err != nil {
			return err
		}
	case *types.Function:
		buf.WriteByte(byte(tagFunction))
		writeUint32(buf, uint32(len(t.Params)))
		for _, p := range t.Params {
			if err := encodeType(buf, p); err != nil {
				return err
			}
		}
		if err := encodeType(buf, t.Ret); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported type for wire encoding: %T", t)
	}
	return nil
}

func decodeType(r *byteReader) (types.Type, error) {
	tagByte, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch typeTag(tagByte) {
	case tagUnit:
		return types.Unit{}, nil
	case tagBoolean:
		return types.Boolean{}, nil
	case tagIntegerUnsigned:
		b, err := r.byte()
		if err != nil {
			return nil, err
		}
		return types.IntegerUnsigned{Bits: int(b)}, nil
	case tagIntegerSigned:
		b, err := r.byte()
		if err != nil {
			return nil, err
		}
		return types.IntegerSigned{Bits: int(b)}, nil
	case tagField:
		return types.Field{}, nil
	case tagArray:
		elem, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		size, err := r.uint32()
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem, int(size)), nil
	case tagTuple:
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		elems := make([]types.Type, n)
		for i := range elems {
			elems[i], err = decodeType(r)
			if err != nil {
				return nil, err
			}
		}
		return types.NewTuple(elems), nil
	case tagStructure:
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		fields := make([]types.StructField, n)
		for i := range fields {
			fname, err := r.string()
			if err != nil {
				return nil, err
			}
			ft, err := decodeType(r)
			if err != nil {
				return nil, err
			}
			fields[i] = types.StructField{Name: fname, Type: ft}
		}
		return types.NewStructure(types.NextUniqueID(), name, fields), nil
	case tagEnumeration:
		name, err := r.string()
		if err != nil {
			return nil, err
		}
		if _, err := r.byte(); err != nil { // underlying bits, re-derived by NewEnumeration
			return nil, err
		}
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		variants := make([]types.EnumVariant, n)
		for i := range variants {
			vname, err := r.string()
			if err != nil {
				return nil, err
			}
			v, err := r.bigIntMagnitude()
			if err != nil {
				return nil, err
			}
			variants[i] = types.EnumVariant{Name: vname, Value: v}
		}
		return types.NewEnumeration(types.NextUniqueID(), name, variants), nil
	case tagRange:
		incl, err := r.byte()
		if err != nil {
			return nil, err
		}
		bound, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		return &types.Range{Inclusive: incl != 0, Bound: bound}, nil
	case tagFunction:
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		params := make([]types.Type, n)
		for i := range params {
			params[i], err = decodeType(r)
			if err != nil {
				return nil, err
			}
		}
		ret, err := decodeType(r)
		if err != nil {
			return nil, err
		}
		return &types.Function{Params: params, Ret: ret}, nil
	default:
		return nil, &DecodingError{Offset: r.off - 1, Reason: fmt.Sprintf("unknown type tag %d", tagByte)}
	}
}

func encodeInstruction(buf *bytes.Buffer, instr Instruction) {
	buf.WriteByte(byte(instr.Op))
	switch instr.Op {
	case PUSHCONST:
		writeSignBit(buf, instr.Signed)
		buf.WriteByte(byte(instr.Bits))
		writeBigIntMagnitude(buf, instr.Const)
	case CAST:
		writeSignBit(buf, instr.Signed)
		buf.WriteByte(byte(instr.Bits))
	case POP, RETURN, EXIT:
		writeUint32(buf, instr.Size)
	case LOAD, STORE, LOADGLOBAL, STOREGLOBAL, LOOPEND, IF, ELSE:
		writeUint32(buf, instr.Addr)
	case LOADBYINDEX, STOREBYINDEX, CALL, SLICE:
		writeUint32(buf, instr.Addr)
		writeUint32(buf, instr.Size)
	case COPY:
		writeUint32(buf, instr.Size)
	case LOOPBEGIN:
		writeUint32(buf, instr.Addr)
		writeUint32(buf, instr.Iterations)
	case CALLBUILTIN:
		writeString(buf, instr.BuiltinID)
		writeUint32(buf, instr.InCount)
	case FILEMARKER, FUNCTIONMARKER:
		writeString(buf, instr.Name)
	case LINEMARKER:
		writeUint32(buf, uint32(instr.Line))
	case COLUMNMARKER:
		writeUint32(buf, uint32(instr.Column))
	}
}

func decodeInstruction(r *byteReader) (Instruction, error) {
	start := r.off
	opByte, err := r.byte()
	if err != nil {
		return Instruction{}, err
	}
	op := Opcode(opByte)
	if op >= opcodeMax {
		return Instruction{}, &DecodingError{Offset: start, Reason: fmt.Sprintf("illegal opcode %d", opByte)}
	}

	instr := Instruction{Op: op}
	switch op {
	case PUSHCONST:
		instr.Signed, err = r.signBit()
		if err != nil {
			return instr, err
		}
		b, err := r.byte()
		if err != nil {
			return instr, err
		}
		instr.Bits = int(b)
		instr.Const, err = r.bigIntMagnitude()
		if err != nil {
			return instr, err
		}
	case CAST:
		instr.Signed, err = r.signBit()
		if err != nil {
			return instr, err
		}
		b, err := r.byte()
		if err != nil {
			return instr, err
		}
		instr.Bits = int(b)
	case POP, RETURN, EXIT:
		instr.Size, err = r.uint32()
	case LOAD, STORE, LOADGLOBAL, STOREGLOBAL, LOOPEND, IF, ELSE:
		instr.Addr, err = r.uint32()
	case LOADBYINDEX, STOREBYINDEX, CALL, SLICE:
		instr.Addr, err = r.uint32()
		if err == nil {
			instr.Size, err = r.uint32()
		}
	case COPY:
		instr.Size, err = r.uint32()
	case LOOPBEGIN:
		instr.Addr, err = r.uint32()
		if err == nil {
			instr.Iterations, err = r.uint32()
		}
	case CALLBUILTIN:
		instr.BuiltinID, err = r.string()
		if err == nil {
			instr.InCount, err = r.uint32()
		}
	case FILEMARKER, FUNCTIONMARKER:
		instr.Name, err = r.string()
	case LINEMARKER:
		var n uint32
		n, err = r.uint32()
		instr.Line = int(n)
	case COLUMNMARKER:
		var n uint32
		n, err = r.uint32()
		instr.Column = int(n)
	}
	if err != nil {
		return instr, err
	}
	return instr, nil
}

// byteReader is a minimal cursor over a decode buffer, tracking the offset
// for DecodingError reporting.
type byteReader struct {
	b   []byte
	off int
}

func (r *byteReader) byte() (byte, error) {
	if r.off >= len(r.b) {
		return 0, &DecodingError{Offset: r.off, Reason: "unexpected end of buffer"}
	}
	b := r.b[r.off]
	r.off++
	return b, nil
}

func (r *byteReader) uint32() (uint32, error) {
	if r.off+4 > len(r.b) {
		return 0, &DecodingError{Offset: r.off, Reason: "unexpected end of buffer reading uint32"}
	}
	v := binary.LittleEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.b[r.off:])
	if n <= 0 {
		return 0, &DecodingError{Offset: r.off, Reason: "invalid uvarint"}
	}
	r.off += n
	return v, nil
}

func (r *byteReader) string() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.b) {
		return "", &DecodingError{Offset: r.off, Reason: "unexpected end of buffer reading string"}
	}
	s := string(r.b[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *byteReader) signBit() (bool, error) {
	b, err := r.byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *byteReader) bigIntMagnitude() (*big.Int, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if r.off+int(n) > len(r.b) {
		return nil, &DecodingError{Offset: r.off, Reason: "unexpected end of buffer reading bigint magnitude"}
	}
	v := new(big.Int).SetBytes(r.b[r.off : r.off+int(n)])
	r.off += int(n)
	return v, nil
}

func writeBigIntMagnitude(buf *bytes.Buffer, v *big.Int) {
	if v == nil {
		v = new(big.Int)
	}
	mag := v.Bytes()
	writeUvarint(buf, uint64(len(mag)))
	buf.Write(mag)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeSignBit(buf *bytes.Buffer, signed bool) {
	if signed {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}
