package bytecode

import (
	"encoding/json"
	"fmt"

	"github.com/mna/zircon/lang/types"
)

// This file generates the input/output template JSON documents the spec
// names: a recursive document mirroring a type's declared structure, with
// leaf integers as decimal strings, booleans as true/false, arrays as JSON
// arrays and structures as JSON objects preserving field declaration order.
// Grounded on the Rust Bytecode's `input_template_bytes`/
// `output_template_bytes` (original_source/zinc-compiler/src/generator/
// bytecode.rs), substituting Go's encoding/json for serde_json; field order
// is preserved the way encoding/json already preserves struct field order,
// so structures are built as ordered key/value pairs rather than a bare
// map[string]any.

// orderedObject is a JSON object that marshals its fields in insertion
// order, standing in for serde_json's order-preserving map the way the
// original template generator relies on.
type orderedObject struct {
	keys   []string
	values []any
}

func (o *orderedObject) set(key string, val any) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, val)
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf []byte
	buf = append(buf, '{')
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// InputTemplate returns the JSON template document for prog's declared
// input structure, to be filled in by the host program.
func InputTemplate(prog *Program) ([]byte, error) {
	var t types.Type = types.Unit{}
	if prog.InputType != nil {
		t = prog.InputType
	}
	return marshalTemplate(t)
}

// OutputTemplate returns the JSON template document for prog's declared
// output type, filled in by the machine once execution completes.
func OutputTemplate(prog *Program) ([]byte, error) {
	t := prog.OutputType
	if t == nil {
		t = types.Unit{}
	}
	return marshalTemplate(t)
}

func marshalTemplate(t types.Type) ([]byte, error) {
	v, err := defaultTemplateValue(t)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// defaultTemplateValue builds the zero-placeholder JSON value for t.
func defaultTemplateValue(t types.Type) (any, error) {
	switch t := t.(type) {
	case types.Unit:
		return nil, nil
	case types.Boolean:
		return false, nil
	case types.IntegerUnsigned, types.IntegerSigned, types.Field:
		return "0", nil
	case *types.Array:
		elem, err := defaultTemplateValue(t.Elem)
		if err != nil {
			return nil, err
		}
		arr := make([]any, t.Size_)
		for i := range arr {
			arr[i] = elem
		}
		return arr, nil
	case *types.Tuple:
		arr := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			v, err := defaultTemplateValue(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case *types.Structure:
		obj := &orderedObject{}
		for _, f := range t.Fields {
			v, err := defaultTemplateValue(f.Type)
			if err != nil {
				return nil, err
			}
			obj.set(f.Name, v)
		}
		return obj, nil
	case *types.Enumeration:
		if len(t.Variants) == 0 {
			return "0", nil
		}
		return t.Variants[0].Value.String(), nil
	default:
		return nil, fmt.Errorf("unsupported type for JSON template: %T", t)
	}
}
