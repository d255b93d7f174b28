package bytecode

import "github.com/mna/zircon/lang/types"

// Program is the finished, address-patched output of a Builder: ready to be
// wire-encoded, disassembled to pseudo-assembly, or handed to a machine for
// execution.
type Program struct {
	InputType  *types.Structure
	OutputType types.Type

	Instructions []Instruction
}

// Build finalizes b into a Program, patching the Addr operand of every
// CALL instruction after reserved slot 0 (still holding a function
// unique-id placeholder at this point) to that function's final
// instruction address.
func (b *Builder) Build() *Program {
	ids := make(map[uint64]int)
	b.functionAddrs.Iter(func(id uint64, addr int) bool {
		ids[id] = addr
		return false
	})
	b.PatchCalls(ids)

	return &Program{
		InputType:    b.InputType,
		OutputType:   b.OutputType,
		Instructions: b.Instructions,
	}
}
