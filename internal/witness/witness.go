// Package witness converts between the template JSON document format (spec
// §9) and the flattened field-cell sequences lang/bytecode.Program's
// InputType/OutputType describe: a recursive document mirroring the declared
// structure, leaf integers as decimal strings (so values exceeding Go's
// int64/uint64 range round-trip exactly), booleans as JSON true/false,
// arrays as JSON arrays, and structures as JSON objects whose fields are
// written out in declaration order.
package witness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mna/zircon/lang/types"
)

// Encode flattens cells (t.Size() field elements, in the same layout the
// bytecode VM stores a value of type t) into a template JSON document.
func Encode(t types.Type, cells []fr.Element) (json.RawMessage, error) {
	doc, rest, err := encode(t, cells)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("witness: %d leftover cells after encoding %s", len(rest), t)
	}
	return doc, nil
}

func encode(t types.Type, cells []fr.Element) (json.RawMessage, []fr.Element, error) {
	switch t.Kind() {
	case types.KindUnit:
		return json.RawMessage("null"), cells, nil

	case types.KindBoolean:
		if len(cells) < 1 {
			return nil, nil, fmt.Errorf("witness: not enough cells for bool")
		}
		v := !cells[0].IsZero()
		b, _ := json.Marshal(v)
		return b, cells[1:], nil

	case types.KindIntegerUnsigned, types.KindIntegerSigned, types.KindField:
		if len(cells) < 1 {
			return nil, nil, fmt.Errorf("witness: not enough cells for %s", t)
		}
		n := fieldToBigInt(cells[0], t.Kind() == types.KindIntegerSigned)
		return json.RawMessage(`"` + n.String() + `"`), cells[1:], nil

	case types.KindEnumeration:
		if len(cells) < 1 {
			return nil, nil, fmt.Errorf("witness: not enough cells for %s", t)
		}
		en := t.(*types.Enumeration)
		var b big.Int
		cells[0].BigInt(&b)
		idx := b.Int64()
		if idx < 0 || idx >= int64(len(en.Variants)) {
			return nil, nil, fmt.Errorf("witness: %d is not a valid %s variant", idx, en.Name)
		}
		name, _ := json.Marshal(en.Variants[idx].Name)
		return name, cells[1:], nil

	case types.KindArray:
		at := t.(*types.Array)
		var buf bytes.Buffer
		buf.WriteByte('[')
		rest := cells
		for i := 0; i < at.Size_; i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			var elDoc json.RawMessage
			var err error
			elDoc, rest, err = encode(at.Elem, rest)
			if err != nil {
				return nil, nil, err
			}
			buf.Write(elDoc)
		}
		buf.WriteByte(']')
		return buf.Bytes(), rest, nil

	case types.KindTuple:
		tt := t.(*types.Tuple)
		var buf bytes.Buffer
		buf.WriteByte('[')
		rest := cells
		for i, elT := range tt.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			var elDoc json.RawMessage
			var err error
			elDoc, rest, err = encode(elT, rest)
			if err != nil {
				return nil, nil, err
			}
			buf.Write(elDoc)
		}
		buf.WriteByte(']')
		return buf.Bytes(), rest, nil

	case types.KindStructure:
		st := t.(*types.Structure)
		var buf bytes.Buffer
		buf.WriteByte('{')
		rest := cells
		for i, f := range st.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, _ := json.Marshal(f.Name)
			buf.Write(name)
			buf.WriteByte(':')
			var fDoc json.RawMessage
			var err error
			fDoc, rest, err = encode(f.Type, rest)
			if err != nil {
				return nil, nil, err
			}
			buf.Write(fDoc)
		}
		buf.WriteByte('}')
		return buf.Bytes(), rest, nil

	default:
		return nil, nil, fmt.Errorf("witness: unsupported type %s", t)
	}
}

// Decode parses a template JSON document into t.Size() field cells.
func Decode(t types.Type, doc json.RawMessage) ([]fr.Element, error) {
	var out []fr.Element
	if err := decode(t, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(t types.Type, doc json.RawMessage, out *[]fr.Element) error {
	switch t.Kind() {
	case types.KindUnit:
		return nil

	case types.KindBoolean:
		var v bool
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("witness: decoding bool: %w", err)
		}
		var el fr.Element
		if v {
			el.SetOne()
		}
		*out = append(*out, el)
		return nil

	case types.KindIntegerUnsigned, types.KindIntegerSigned, types.KindField:
		var s string
		if err := json.Unmarshal(doc, &s); err != nil {
			return fmt.Errorf("witness: decoding %s: %w", t, err)
		}
		b, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return fmt.Errorf("witness: %q is not a valid integer literal for %s", s, t)
		}
		var el fr.Element
		if b.Sign() < 0 {
			// Field encoding of a negative value is r - |b|, matching the
			// scalar VM's NEG/castTo representation.
			mod := fr.Modulus()
			bb := new(big.Int).Add(mod, b)
			el.SetBigInt(bb)
		} else {
			el.SetBigInt(b)
		}
		*out = append(*out, el)
		return nil

	case types.KindEnumeration:
		en := t.(*types.Enumeration)
		var name string
		if err := json.Unmarshal(doc, &name); err != nil {
			return fmt.Errorf("witness: decoding %s: %w", en.Name, err)
		}
		idx := en.VariantIndex(name)
		if idx < 0 {
			return fmt.Errorf("witness: %q is not a variant of %s", name, en.Name)
		}
		var el fr.Element
		el.SetUint64(uint64(idx))
		*out = append(*out, el)
		return nil

	case types.KindArray:
		at := t.(*types.Array)
		var elems []json.RawMessage
		if err := json.Unmarshal(doc, &elems); err != nil {
			return fmt.Errorf("witness: decoding array: %w", err)
		}
		if len(elems) != at.Size_ {
			return fmt.Errorf("witness: array has %d elements, expected %d", len(elems), at.Size_)
		}
		for _, e := range elems {
			if err := decode(at.Elem, e, out); err != nil {
				return err
			}
		}
		return nil

	case types.KindTuple:
		tt := t.(*types.Tuple)
		var elems []json.RawMessage
		if err := json.Unmarshal(doc, &elems); err != nil {
			return fmt.Errorf("witness: decoding tuple: %w", err)
		}
		if len(elems) != len(tt.Elems) {
			return fmt.Errorf("witness: tuple has %d elements, expected %d", len(elems), len(tt.Elems))
		}
		for i, elT := range tt.Elems {
			if err := decode(elT, elems[i], out); err != nil {
				return err
			}
		}
		return nil

	case types.KindStructure:
		st := t.(*types.Structure)
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(doc, &fields); err != nil {
			return fmt.Errorf("witness: decoding %s: %w", st.Name, err)
		}
		for _, f := range st.Fields {
			raw, ok := fields[f.Name]
			if !ok {
				return fmt.Errorf("witness: %s is missing field %q", st.Name, f.Name)
			}
			if err := decode(f.Type, raw, out); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("witness: unsupported type %s", t)
	}
}

// fieldToBigInt renders a field element back to its signed or unsigned
// decimal representation for encoding - the inverse of Decode's r-|b|
// rebiasing.
func fieldToBigInt(el fr.Element, signed bool) *big.Int {
	var raw big.Int
	el.BigInt(&raw)
	if signed {
		mod := fr.Modulus()
		half := new(big.Int).Rsh(mod, 1)
		if raw.Cmp(half) > 0 {
			raw.Sub(&raw, mod)
		}
	}
	return &raw
}
