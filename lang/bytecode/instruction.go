package bytecode

import "math/big"

// UnboundedLoop is LoopBegin's Iterations value for a `while` loop, whose
// trip count isn't known until run time - distinct from the zero value,
// which means a `for` loop's statically empty range ("skip the body
// entirely"), so a machine can tell the two apart.
const UnboundedLoop = ^uint32(0)

// Instruction is a single tagged-sum bytecode instruction. Not every field
// is meaningful for every Op; see the per-family comments on the Opcode
// constants for which operands apply.
type Instruction struct {
	Op Opcode

	// Addr is an instruction-index operand: Call target, If/Else/LoopBegin
	// jump target (patched by a second pass, see Builder's Patch* helpers).
	// EndIf and LoopEnd carry no Addr.
	Addr uint32

	// Size is a cell-count operand: Pop(n), Return(n), Exit(n), Call's
	// input_size, LoadByIndex/StoreByIndex's element size.
	Size uint32

	// Iterations is LoopBegin's trip count.
	Iterations uint32

	// Signed and Bits describe the integer type of PushConst/Cast.
	Signed bool
	Bits   int

	// Const is PushConst's BigInt magnitude.
	Const *big.Int

	// BuiltinID and InCount describe CallBuiltin.
	BuiltinID string
	InCount   uint32

	// Name is FileMarker's filename or FunctionMarker's function name.
	Name string

	// Line and Column are LineMarker/ColumnMarker operands.
	Line, Column int
}
