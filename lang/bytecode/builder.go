package bytecode

import (
	"math/big"

	"github.com/dolthub/swiss"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// Builder accumulates the instruction sequence for a single compiled chunk,
// tracking variable and function addresses so that Call targets can be
// back-patched once every function's address is known. Grounded directly on
// original_source/zinc-compiler/src/generator/bytecode.rs's `Bytecode`
// struct: two reserved slots 0 and 1 become the implicit `Call(main) /
// Exit(output_size)` prologue once StartMainFunction is invoked.
type Builder struct {
	InputType  *types.Structure
	OutputType types.Type

	Instructions []Instruction

	dataStackPointer   int
	globalStackPointer int
	variableAddrs      *swiss.Map[string, int]
	globalAddrs        *swiss.Map[string, int]
	functionAddrs      *swiss.Map[uint64, int]

	currentFile string
	currentLine, currentCol int
}

// NewBuilder returns a Builder with its two reserved prologue slots
// pre-allocated as NoOperation, to be overwritten by StartMainFunction.
func NewBuilder() *Builder {
	b := &Builder{
		variableAddrs: swiss.NewMap[string, int](uint32(16)),
		globalAddrs:   swiss.NewMap[string, int](uint32(8)),
		functionAddrs: swiss.NewMap[uint64, int](uint32(16)),
	}
	b.Instructions = append(b.Instructions,
		Instruction{Op: NOOPERATION},
		Instruction{Op: NOOPERATION},
	)
	return b
}

// StartNewFile records the filename used by subsequent FileMarker
// instructions emitted from StartFunction.
func (b *Builder) StartNewFile(name string) { b.currentFile = name }

// StartFunction reserves this function's entry address under uniqueID and
// emits its FileMarker/FunctionMarker prologue pair.
func (b *Builder) StartFunction(uniqueID uint64, name string) {
	addr := len(b.Instructions)
	b.functionAddrs.Put(uniqueID, addr)
	b.dataStackPointer = 0

	b.Instructions = append(b.Instructions,
		Instruction{Op: FILEMARKER, Name: b.currentFile},
		Instruction{Op: FUNCTIONMARKER, Name: name},
	)
}

// StartMainFunction patches the reserved slots 0 and 1 into
// `Call(addr, input_size) / Exit(output_size)` and emits main's own
// FileMarker/FunctionMarker prologue.
func (b *Builder) StartMainFunction(uniqueID uint64, inputType *types.Structure, outputType types.Type) {
	b.InputType = inputType
	b.OutputType = outputType

	addr := len(b.Instructions)
	b.functionAddrs.Put(uniqueID, addr)

	inputSize := 0
	if inputType != nil {
		inputSize = inputType.Size()
	}
	outputSize := 0
	if outputType != nil {
		outputSize = outputType.Size()
	}

	b.Instructions[0] = Instruction{Op: CALL, Addr: uint32(addr), Size: uint32(inputSize)}
	b.Instructions[1] = Instruction{Op: EXIT, Size: uint32(outputSize)}
	b.dataStackPointer = 0

	b.Instructions = append(b.Instructions,
		Instruction{Op: FILEMARKER, Name: b.currentFile},
		Instruction{Op: FUNCTIONMARKER, Name: "main"},
	)
}

// DeclareVariable reserves t.Size() cells starting at the current data
// stack cursor, binds name (if non-empty) to the reserved address, and
// returns that start address.
func (b *Builder) DeclareVariable(name string, t types.Type) int {
	start := b.dataStackPointer
	if name != "" {
		b.variableAddrs.Put(name, start)
	}
	b.dataStackPointer += t.Size()
	return start
}

// VariableAddress returns the data-stack address bound to name, or
// (0, false) if undeclared in the current function.
func (b *Builder) VariableAddress(name string) (int, bool) {
	return b.variableAddrs.Get(name)
}

// DeclareGlobal reserves t.Size() cells in the global address space for a
// module-level `static` item, emitted once as a StoreGlobal in the
// program's prologue (ahead of StartMainFunction, so the reserved Call
// slot's address lands after the global-init code, matching the layout
// spec's §9 example shows: `Call(5,0), Exit(1), PushConst.., StoreGlobal(0),
// ...` with main's body starting only once globals are initialized).
// Unlike DeclareVariable's per-function cursor, the global cursor is never
// reset: every static in the compilation unit gets a distinct address.
func (b *Builder) DeclareGlobal(name string, t types.Type) int {
	start := b.globalStackPointer
	b.globalAddrs.Put(name, start)
	b.globalStackPointer += t.Size()
	return start
}

// GlobalAddress returns the global address bound to name, or (0, false) if
// no such static was declared.
func (b *Builder) GlobalAddress(name string) (int, bool) {
	return b.globalAddrs.Get(name)
}

// FunctionAddress returns the instruction address of the function
// registered under uniqueID, or (0, false) if not yet compiled.
func (b *Builder) FunctionAddress(uniqueID uint64) (int, bool) {
	return b.functionAddrs.Get(uniqueID)
}

// Push appends instr, first emitting LineMarker/ColumnMarker pseudo-
// instructions if pos differs in line or column from the last-pushed
// position — eliding unchanged markers the way the original bytecode
// builder does, instead of stamping every instruction.
func (b *Builder) Push(instr Instruction, file *token.File, pos token.Pos) {
	if file != nil && pos.IsValid() {
		p := file.Position(pos)
		if p.Line != b.currentLine {
			b.Instructions = append(b.Instructions, Instruction{Op: LINEMARKER, Line: p.Line})
			b.currentLine = p.Line
		}
		if p.Column != b.currentCol {
			b.Instructions = append(b.Instructions, Instruction{Op: COLUMNMARKER, Column: p.Column})
			b.currentCol = p.Column
		}
	}
	b.Instructions = append(b.Instructions, instr)
}

// PushConst is a convenience wrapper for the common PUSHCONST instruction.
func (b *Builder) PushConst(v *big.Int, signed bool, bits int, file *token.File, pos token.Pos) {
	b.Push(Instruction{Op: PUSHCONST, Const: v, Signed: signed, Bits: bits}, file, pos)
}

// PatchAddr overwrites the Addr operand of the instruction at index idx,
// used to back-patch If, Else and LoopBegin targets once the matching
// instruction's final address is known.
func (b *Builder) PatchAddr(idx int, addr uint32) {
	b.Instructions[idx].Addr = addr
}

// PatchCalls rewrites every CALL instruction's Addr operand from the
// function-unique-id it was emitted with (stored in Addr as a placeholder
// during a single forward pass) to that function's final instruction
// address, once every function in the chunk has been compiled. The CALL
// in reserved slot 0 already holds main's final address (written by
// StartMainFunction) and is left as is.
func (b *Builder) PatchCalls(uniqueIDToAddr map[uint64]int) {
	for i, instr := range b.Instructions {
		if i == 0 {
			continue
		}
		if instr.Op == CALL {
			if addr, ok := uniqueIDToAddr[uint64(instr.Addr)]; ok {
				b.Instructions[i].Addr = uint32(addr)
			}
		}
	}
}
