package bytecode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/mna/zircon/lang/types"
)

// This file implements a human-readable/writable pseudo-assembly form of a
// compiled Program, in the spirit of the teacher's lang/compiler/asm.go: it
// exists to drive the scalar and R1CS machines directly in tests without
// going through the scanner, parser and semantic analyzer. Unlike the
// teacher's variable-length byte-encoded function bodies, a Program's
// Instructions slice already stores one fixed-size Instruction per element,
// so an Addr operand IS the target's index in that slice — no index-to-
// address translation pass is needed the way asm.go's jump handling needs
// one.
//
// 	chunk:
// 		input:
// 			a u32
// 			b field
// 		output:
// 			bool
//
// 	code:
// 		pushconst	u	32	5   # 000
// 		add                     # 001
// 		if	4                   # 002
// 		...

var asmSections = map[string]bool{
	"chunk:":  true,
	"input:":  true,
	"output:": true,
	"code:":   true,
}

// Dasm writes prog to its pseudo-assembly textual form.
func Dasm(prog *Program) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("chunk:\n")

	if prog.InputType != nil && len(prog.InputType.Fields) > 0 {
		buf.WriteString("\tinput:\n")
		for _, f := range prog.InputType.Fields {
			fmt.Fprintf(&buf, "\t\t%s\t%s\n", f.Name, f.Type)
		}
	}
	if prog.OutputType != nil {
		fmt.Fprintf(&buf, "\toutput:\n\t\t%s\n", prog.OutputType)
	}
	buf.WriteString("\ncode:\n")

	for i, instr := range prog.Instructions {
		line, err := dasmInstruction(instr)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		fmt.Fprintf(&buf, "\t%s\t# %03d\n", line, i)
	}
	return buf.Bytes(), nil
}

func dasmInstruction(instr Instruction) (string, error) {
	op := instr.Op.String()
	switch instr.Op {
	case PUSHCONST:
		return fmt.Sprintf("%s\t%s\t%d\t%s", op, signChar(instr.Signed), instr.Bits, instr.Const), nil
	case CAST:
		return fmt.Sprintf("%s\t%s\t%d", op, signChar(instr.Signed), instr.Bits), nil
	case POP, RETURN, EXIT:
		return fmt.Sprintf("%s\t%d", op, instr.Size), nil
	case LOAD, STORE, LOADGLOBAL, STOREGLOBAL:
		return fmt.Sprintf("%s\t%d", op, instr.Addr), nil
	case LOADBYINDEX, STOREBYINDEX, SLICE:
		return fmt.Sprintf("%s\t%d\t%d", op, instr.Addr, instr.Size), nil
	case CALL:
		return fmt.Sprintf("%s\t%d\t%d", op, instr.Addr, instr.Size), nil
	case LOOPBEGIN:
		return fmt.Sprintf("%s\t%d\t%d", op, instr.Addr, instr.Iterations), nil
	case LOOPEND, IF, ELSE:
		return fmt.Sprintf("%s\t%d", op, instr.Addr), nil
	case COPY:
		return fmt.Sprintf("%s\t%d", op, instr.Size), nil
	case CALLBUILTIN:
		return fmt.Sprintf("%s\t%s\t%d", op, instr.BuiltinID, instr.InCount), nil
	case FILEMARKER, FUNCTIONMARKER:
		return fmt.Sprintf("%s\t%q", op, instr.Name), nil
	case LINEMARKER:
		return fmt.Sprintf("%s\t%d", op, instr.Line), nil
	case COLUMNMARKER:
		return fmt.Sprintf("%s\t%d", op, instr.Column), nil
	default:
		return op, nil
	}
}

func signChar(signed bool) string {
	if signed {
		return "s"
	}
	return "u"
}

// Asm parses a Program from its pseudo-assembly textual form.
func Asm(b []byte) (*Program, error) {
	a := &asmParser{s: bufio.NewScanner(bytes.NewReader(b))}

	fields := a.next()
	if a.err == nil && (len(fields) == 0 || !strings.EqualFold(fields[0], "chunk:")) {
		a.err = errors.New("expected chunk section")
	}

	fields = a.next()
	var input []types.StructField
	if a.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "input:") {
		for fields = a.next(); a.err == nil && len(fields) > 0 && !asmSections[fields[0]]; fields = a.next() {
			if len(fields) != 2 {
				a.err = fmt.Errorf("invalid input field: expected name and type, got %d fields", len(fields))
				break
			}
			t, err := parseScalarType(fields[1])
			if err != nil {
				a.err = err
				break
			}
			input = append(input, types.StructField{Name: fields[0], Type: t})
		}
	}

	var output types.Type = types.Unit{}
	if a.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "output:") {
		fields = a.next()
		if len(fields) != 1 {
			a.err = errors.New("expected exactly one output type")
		} else {
			t, err := parseScalarType(fields[0])
			if err != nil {
				a.err = err
			} else {
				output = t
			}
		}
		fields = a.next()
	}

	var instrs []Instruction
	if a.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "code:") {
		for fields = a.next(); a.err == nil && len(fields) > 0; fields = a.next() {
			instr, err := a.parseInstruction(fields)
			if err != nil {
				a.err = err
				break
			}
			instrs = append(instrs, instr)
		}
	}

	if a.err != nil {
		return nil, a.err
	}
	return &Program{
		InputType:    types.NewStructure(types.NextUniqueID(), "main.Input", input),
		OutputType:   output,
		Instructions: instrs,
	}, nil
}

type asmParser struct {
	s   *bufio.Scanner
	err error
}

func (a *asmParser) next() []string {
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		line := a.s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) != 0 {
			return fields
		}
	}
	a.err = a.s.Err()
	return nil
}

func (a *asmParser) parseInstruction(fields []string) (Instruction, error) {
	op, ok := LookupOpcode(strings.ToLower(fields[0]))
	if !ok {
		return Instruction{}, fmt.Errorf("invalid opcode: %s", fields[0])
	}
	args := fields[1:]

	switch op {
	case PUSHCONST:
		if len(args) != 3 {
			return Instruction{}, fmt.Errorf("pushconst: expected sign, bits, value, got %d args", len(args))
		}
		bits, err := strconv.Atoi(args[1])
		if err != nil {
			return Instruction{}, fmt.Errorf("pushconst: invalid bits: %w", err)
		}
		v, ok := new(big.Int).SetString(args[2], 10)
		if !ok {
			return Instruction{}, fmt.Errorf("pushconst: invalid value: %s", args[2])
		}
		return Instruction{Op: op, Signed: args[0] == "s", Bits: bits, Const: v}, nil
	case CAST:
		if len(args) != 2 {
			return Instruction{}, fmt.Errorf("cast: expected sign and bits, got %d args", len(args))
		}
		bits, err := strconv.Atoi(args[1])
		if err != nil {
			return Instruction{}, fmt.Errorf("cast: invalid bits: %w", err)
		}
		return Instruction{Op: op, Signed: args[0] == "s", Bits: bits}, nil
	case POP, RETURN, EXIT:
		n, err := a.uint32Arg(op, args, 1)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Size: n[0]}, nil
	case LOAD, STORE, LOADGLOBAL, STOREGLOBAL, LOOPEND, IF, ELSE:
		n, err := a.uint32Arg(op, args, 1)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Addr: n[0]}, nil
	case LOADBYINDEX, STOREBYINDEX, CALL, SLICE:
		n, err := a.uint32Arg(op, args, 2)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Addr: n[0], Size: n[1]}, nil
	case COPY:
		n, err := a.uint32Arg(op, args, 1)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Size: n[0]}, nil
	case LOOPBEGIN:
		n, err := a.uint32Arg(op, args, 2)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Addr: n[0], Iterations: n[1]}, nil
	case CALLBUILTIN:
		if len(args) != 2 {
			return Instruction{}, fmt.Errorf("callbuiltin: expected name and incount, got %d args", len(args))
		}
		n, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return Instruction{}, fmt.Errorf("callbuiltin: invalid incount: %w", err)
		}
		return Instruction{Op: op, BuiltinID: args[0], InCount: uint32(n)}, nil
	case FILEMARKER, FUNCTIONMARKER:
		if len(args) != 1 {
			return Instruction{}, fmt.Errorf("%s: expected one name argument, got %d args", op, len(args))
		}
		name, err := strconv.Unquote(args[0])
		if err != nil {
			name = args[0]
		}
		return Instruction{Op: op, Name: name}, nil
	case LINEMARKER:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Instruction{}, fmt.Errorf("linemarker: invalid line: %w", err)
		}
		return Instruction{Op: op, Line: n}, nil
	case COLUMNMARKER:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Instruction{}, fmt.Errorf("columnmarker: invalid column: %w", err)
		}
		return Instruction{Op: op, Column: n}, nil
	default:
		if len(args) != 0 {
			return Instruction{}, fmt.Errorf("%s: expected no arguments, got %d", op, len(args))
		}
		return Instruction{Op: op}, nil
	}
}

func (a *asmParser) uint32Arg(op Opcode, args []string, want int) ([]uint32, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%s: expected %d argument(s), got %d", op, want, len(args))
	}
	out := make([]uint32, want)
	for i, s := range args {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid argument %q: %w", op, s, err)
		}
		out[i] = uint32(n)
	}
	return out, nil
}
