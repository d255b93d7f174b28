package scalar

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/mna/zircon/lang/bytecode"
)

func feUint(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// buildProgram wires a Call(main)/Exit prologue around body, the same
// layout bytecode.Builder.StartMainFunction produces, without going
// through the full Builder (these tests exercise the machine, not the
// analyzer).
func buildProgram(inputSize, outputSize int, body []bytecode.Instruction) *bytecode.Program {
	instrs := []bytecode.Instruction{
		{Op: bytecode.CALL, Addr: 2, Size: uint32(inputSize)},
		{Op: bytecode.EXIT, Size: uint32(outputSize)},
	}
	instrs = append(instrs, body...)
	return &bytecode.Program{Instructions: instrs}
}

func TestAddReturn(t *testing.T) {
	// main(a, b) -> a + b
	prog := buildProgram(2, 1, []bytecode.Instruction{
		{Op: bytecode.LOAD, Addr: 0},
		{Op: bytecode.LOAD, Addr: 1},
		{Op: bytecode.ADD},
		{Op: bytecode.RETURN, Size: 1},
	})
	out, err := New(prog).Run([]fr.Element{feUint(3), feUint(4)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, feUint(7), out[0])
}

func TestIfElse(t *testing.T) {
	// main(cond) -> cond ? 1 : 2
	prog := buildProgram(1, 1, []bytecode.Instruction{
		{Op: bytecode.LOAD, Addr: 0},
		{Op: bytecode.PUSHCONDITION},
		{Op: bytecode.IF, Addr: 7}, // if false, jump straight to the else body (index 7), past the Else instruction itself
		{Op: bytecode.PUSHCONST, Const: bigOne()},
		{Op: bytecode.ELSE, Addr: 8}, // unconditional jump to ENDIF (index 8)
		{Op: bytecode.PUSHCONST, Const: bigTwo()},
		{Op: bytecode.ENDIF},
		{Op: bytecode.POPCONDITION},
		{Op: bytecode.RETURN, Size: 1},
	})
	out, err := New(prog).Run([]fr.Element{feUint(1)})
	require.NoError(t, err)
	require.Equal(t, feUint(1), out[0])

	out, err = New(prog).Run([]fr.Element{feUint(0)})
	require.NoError(t, err)
	require.Equal(t, feUint(2), out[0])
}

func TestForLoopSum(t *testing.T) {
	// main() -> sum of 0..3 (== 0+1+2 == 3), computed with an induction
	// variable at local 0 and an accumulator at local 1, the same codegen
	// shape lang/semantic/stmt.go's analyzeFor produces.
	body := []bytecode.Instruction{
		{Op: bytecode.PUSHCONST, Const: bigZero()},
		{Op: bytecode.STORE, Addr: 0}, // i = 0
		{Op: bytecode.PUSHCONST, Const: bigZero()},
		{Op: bytecode.STORE, Addr: 1}, // acc = 0
		{Op: bytecode.LOOPBEGIN, Iterations: 3, Addr: 0}, // patched below
		{Op: bytecode.LOAD, Addr: 1},
		{Op: bytecode.LOAD, Addr: 0},
		{Op: bytecode.ADD},
		{Op: bytecode.STORE, Addr: 1}, // acc += i
		{Op: bytecode.LOAD, Addr: 0},
		{Op: bytecode.PUSHCONST, Const: bigOne()},
		{Op: bytecode.ADD},
		{Op: bytecode.STORE, Addr: 0}, // i += 1
		{Op: bytecode.LOOPEND},
		{Op: bytecode.LOAD, Addr: 1},
		{Op: bytecode.RETURN, Size: 1},
	}
	// LoopBegin is instruction 4 (0-indexed within body, but addresses are
	// absolute over the whole program - prologue is 2 instructions).
	body[4].Addr = uint32(2 + len(body)) // exit target: right after body
	prog := buildProgram(0, 1, body)

	out, err := New(prog).Run(nil)
	require.NoError(t, err)
	require.Equal(t, feUint(3), out[0])
}

func bigZero() *big.Int { return big.NewInt(0) }
func bigOne() *big.Int  { return big.NewInt(1) }
func bigTwo() *big.Int  { return big.NewInt(2) }
