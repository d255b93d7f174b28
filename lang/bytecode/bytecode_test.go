package bytecode_test

import (
	"math/big"
	"testing"

	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/types"
)

func sampleProgram() *bytecode.Program {
	b := bytecode.NewBuilder()
	b.StartNewFile("main.zr")
	b.StartMainFunction(1, types.NewStructure(types.NextUniqueID(), "main.Input", []types.StructField{
		{Name: "a", Type: types.IntegerUnsigned{Bits: 32}},
	}), types.IntegerUnsigned{Bits: 32})

	b.DeclareVariable("a", types.IntegerUnsigned{Bits: 32})
	b.Push(bytecode.Instruction{Op: bytecode.LOAD, Addr: 0}, nil, 0)
	b.PushConst(big.NewInt(3), false, 32, nil, 0)
	b.Push(bytecode.Instruction{Op: bytecode.ADD}, nil, 0)
	b.Push(bytecode.Instruction{Op: bytecode.RETURN, Size: 1}, nil, 0)

	return b.Build()
}

func TestBuilderPatchesReservedSlots(t *testing.T) {
	prog := sampleProgram()
	if prog.Instructions[0].Op != bytecode.CALL {
		t.Fatalf("slot 0 = %s, want call", prog.Instructions[0].Op)
	}
	if prog.Instructions[1].Op != bytecode.EXIT {
		t.Fatalf("slot 1 = %s, want exit", prog.Instructions[1].Op)
	}
	if prog.Instructions[0].Size != 1 {
		t.Errorf("call input size = %d, want 1", prog.Instructions[0].Size)
	}
	if prog.Instructions[1].Size != 1 {
		t.Errorf("exit output size = %d, want 1", prog.Instructions[1].Size)
	}
}

func TestOpcodeStringRoundTrip(t *testing.T) {
	for op := bytecode.NOOPERATION; op < bytecode.ADD; op++ {
		name := op.String()
		got, ok := bytecode.LookupOpcode(name)
		if !ok || got != op {
			t.Errorf("LookupOpcode(%q) = %v, %v, want %v, true", name, got, ok, op)
		}
	}
}

func TestWireEncodeDecodeRoundTrip(t *testing.T) {
	prog := sampleProgram()

	encoded, err := bytecode.EncodeProgram(prog)
	if err != nil {
		t.Fatalf("EncodeProgram: %v", err)
	}

	decoded, n, err := bytecode.DecodeProgram(encoded)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	if n != len(encoded) {
		t.Errorf("consumed %d bytes, want %d", n, len(encoded))
	}
	if len(decoded.Instructions) != len(prog.Instructions) {
		t.Fatalf("decoded %d instructions, want %d", len(decoded.Instructions), len(prog.Instructions))
	}
	for i, want := range prog.Instructions {
		got := decoded.Instructions[i]
		if got.Op != want.Op || got.Addr != want.Addr || got.Size != want.Size {
			t.Errorf("instruction %d = %+v, want %+v", i, got, want)
		}
		if want.Const != nil && (got.Const == nil || got.Const.Cmp(want.Const) != 0) {
			t.Errorf("instruction %d const = %v, want %v", i, got.Const, want.Const)
		}
	}
	if decoded.OutputType.Kind() != prog.OutputType.Kind() {
		t.Errorf("output type kind = %v, want %v", decoded.OutputType.Kind(), prog.OutputType.Kind())
	}
}

func TestInstructionDecodeReportsConsumedBytes(t *testing.T) {
	// a single NOOPERATION instruction is exactly one byte: its opcode tag.
	instr := bytecode.Instruction{Op: bytecode.NOOPERATION}
	prog := &bytecode.Program{OutputType: types.Unit{}, Instructions: []bytecode.Instruction{instr}}

	encoded, err := bytecode.EncodeProgram(prog)
	if err != nil {
		t.Fatalf("EncodeProgram: %v", err)
	}
	decoded, n, err := bytecode.DecodeProgram(encoded)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	if n != len(encoded) {
		t.Errorf("DecodeProgram consumed %d bytes, want %d", n, len(encoded))
	}
	if len(decoded.Instructions) != 1 || decoded.Instructions[0].Op != bytecode.NOOPERATION {
		t.Fatalf("decoded = %+v, want single nooperation", decoded.Instructions)
	}
}

func TestAsmDasmRoundTrip(t *testing.T) {
	prog := sampleProgram()

	text, err := bytecode.Dasm(prog)
	if err != nil {
		t.Fatalf("Dasm: %v", err)
	}

	back, err := bytecode.Asm(text)
	if err != nil {
		t.Fatalf("Asm: %v\n%s", err, text)
	}
	if len(back.Instructions) != len(prog.Instructions) {
		t.Fatalf("roundtrip produced %d instructions, want %d:\n%s", len(back.Instructions), len(prog.Instructions), text)
	}
	for i, want := range prog.Instructions {
		got := back.Instructions[i]
		if got.Op != want.Op {
			t.Errorf("instruction %d op = %s, want %s", i, got.Op, want.Op)
		}
	}
}

func TestInputOutputTemplates(t *testing.T) {
	prog := sampleProgram()

	in, err := bytecode.InputTemplate(prog)
	if err != nil {
		t.Fatalf("InputTemplate: %v", err)
	}
	if want := `{
  "a": "0"
}`; string(in) != want {
		t.Errorf("input template = %s, want %s", in, want)
	}

	out, err := bytecode.OutputTemplate(prog)
	if err != nil {
		t.Fatalf("OutputTemplate: %v", err)
	}
	if string(out) != `"0"` {
		t.Errorf("output template = %s, want %q", out, `"0"`)
	}
}
