// Package scalar implements zircon's scalar virtual machine: a direct,
// non-constrained interpreter of a compiled bytecode.Program over bn254
// scalar-field elements (spec §4.6, §6.6). It is the reference execution
// mode - the one a `zircon run` invocation uses - as opposed to
// lang/machine/r1cs's constraint-emitting mode used to build a proof.
//
// Grounded on the teacher's lang/machine/machine.go single-loop opcode
// switch and frame/stack-space design (space := make([]Value, nspace),
// sp cursor, per-opcode case), re-targeted from dynamic Values and a
// call stack of *Frame/*Thread to a flat slice of fr.Element cells and an
// explicit call-frame stack (no Go-level recursion per call, so a deeply
// recursive zircon program doesn't also exhaust the host's call stack).
package scalar

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mna/zircon/lang/bytecode"
)

// Machine executes one compiled Program. A Machine is not safe for
// concurrent use by multiple goroutines; create one per run.
type Machine struct {
	prog      *bytecode.Program
	globals   []fr.Element
	loopStack []loopState
}

// New returns a Machine ready to execute prog.
func New(prog *bytecode.Program) *Machine {
	return &Machine{prog: prog}
}

// frame is one active function activation's local variable cells
// (addressed by Load/Store) and the instruction address to resume at
// once its Return is reached.
type frame struct {
	cells    []fr.Element
	returnPC int
}

func (f *frame) ensure(n int) {
	if n <= len(f.cells) {
		return
	}
	grown := make([]fr.Element, n)
	copy(grown, f.cells)
	f.cells = grown
}

// Run executes the program's implicit `Call(main, input_size) / Exit
// (output_size)` prologue (bytecode.Builder.StartMainFunction's reserved
// slots 0/1) against input, a flattened sequence of field cells matching
// the program's InputType, and returns the flattened OutputType result.
func (m *Machine) Run(input []fr.Element) ([]fr.Element, error) {
	stack := append([]fr.Element(nil), input...)
	return m.exec(stack)
}

// exec is the single dispatch loop, shared by every call depth: CALL
// pushes a frame and jumps, RETURN pops it and resumes at its returnPC,
// EXIT (only ever reached at the outermost depth, emitted once by
// StartMainFunction) ends the run.
func (m *Machine) exec(stack []fr.Element) ([]fr.Element, error) {
	code := m.prog.Instructions
	frames := []*frame{{}}
	var conditions []bool
	var lastCondition bool

	pc := 0
	for {
		if pc < 0 || pc >= len(code) {
			return nil, fmt.Errorf("scalar: program counter %d out of range", pc)
		}
		instr := code[pc]
		top := frames[len(frames)-1]

		switch instr.Op {
		case bytecode.NOOPERATION, bytecode.FILEMARKER, bytecode.FUNCTIONMARKER,
			bytecode.LINEMARKER, bytecode.COLUMNMARKER:
			pc++

		case bytecode.PUSHCONST:
			var el fr.Element
			el.SetBigInt(instr.Const)
			stack = append(stack, el)
			pc++

		case bytecode.POP:
			n := popCount(instr.Size)
			stack = stack[:len(stack)-n]
			pc++

		case bytecode.COPY:
			n := popCount(instr.Size)
			stack = append(stack, stack[len(stack)-n:]...)
			pc++

		case bytecode.SLICE:
			top.ensure(int(instr.Addr) + int(instr.Size))
			stack = append(stack, top.cells[instr.Addr:int(instr.Addr)+int(instr.Size)]...)
			pc++

		case bytecode.LOAD:
			top.ensure(int(instr.Addr) + 1)
			stack = append(stack, top.cells[instr.Addr])
			pc++

		case bytecode.STORE:
			top.ensure(int(instr.Addr) + 1)
			top.cells[instr.Addr] = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pc++

		case bytecode.LOADGLOBAL:
			m.ensureGlobals(int(instr.Addr) + 1)
			stack = append(stack, m.globals[instr.Addr])
			pc++

		case bytecode.STOREGLOBAL:
			m.ensureGlobals(int(instr.Addr) + 1)
			m.globals[instr.Addr] = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pc++

		case bytecode.LOADBYINDEX:
			idx := feToInt(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			size := int(instr.Size)
			base := int(instr.Addr) + idx*size
			top.ensure(base + size)
			stack = append(stack, top.cells[base:base+size]...)
			pc++

		case bytecode.STOREBYINDEX:
			idx := feToInt(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			size := int(instr.Size)
			base := int(instr.Addr) + idx*size
			top.ensure(base + size)
			for k := size - 1; k >= 0; k-- {
				top.cells[base+k] = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
			pc++

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.REM,
			bytecode.AND, bytecode.OR, bytecode.XOR,
			bytecode.EQ, bytecode.NE, bytecode.LT, bytecode.LE, bytecode.GT, bytecode.GE:
			y := stack[len(stack)-1]
			x := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			z, err := binaryOp(instr.Op, x, y)
			if err != nil {
				return nil, err
			}
			stack = append(stack, z)
			pc++

		case bytecode.NEG:
			x := stack[len(stack)-1]
			var z fr.Element
			z.Neg(&x)
			stack[len(stack)-1] = z
			pc++

		case bytecode.NOT:
			x := stack[len(stack)-1]
			var one, z fr.Element
			one.SetOne()
			z.Sub(&one, &x)
			stack[len(stack)-1] = z
			pc++

		case bytecode.CAST:
			x := stack[len(stack)-1]
			stack[len(stack)-1] = castTo(x, instr.Signed, instr.Bits)
			pc++

		case bytecode.CALL:
			n := int(instr.Size)
			args := append([]fr.Element(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			nf := &frame{returnPC: pc + 1}
			nf.ensure(n)
			copy(nf.cells, args)
			frames = append(frames, nf)
			pc = int(instr.Addr)

		case bytecode.RETURN:
			// The returned Size cells are left in place on the shared stack;
			// only the call frame they were computed in is torn down.
			returnPC := top.returnPC
			frames = frames[:len(frames)-1]
			pc = returnPC

		case bytecode.EXIT:
			n := int(instr.Size)
			return stack[len(stack)-n:], nil

		case bytecode.LOOPBEGIN:
			if instr.Iterations == bytecode.UnboundedLoop {
				m.loopStack = append(m.loopStack, loopState{bodyStart: pc + 1, unbounded: true})
				pc++
				continue
			}
			if instr.Iterations == 0 {
				pc = int(instr.Addr)
				continue
			}
			m.loopStack = append(m.loopStack, loopState{bodyStart: pc + 1, remaining: int(instr.Iterations) - 1})
			pc++

		case bytecode.LOOPEND:
			ls := &m.loopStack[len(m.loopStack)-1]
			if ls.unbounded {
				if lastCondition {
					pc = ls.bodyStart
				} else {
					m.loopStack = m.loopStack[:len(m.loopStack)-1]
					pc++
				}
			} else if ls.remaining > 0 {
				ls.remaining--
				pc = ls.bodyStart
			} else {
				m.loopStack = m.loopStack[:len(m.loopStack)-1]
				pc++
			}

		case bytecode.PUSHCONDITION:
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			conditions = append(conditions, !x.IsZero())
			pc++

		case bytecode.POPCONDITION:
			lastCondition = conditions[len(conditions)-1]
			conditions = conditions[:len(conditions)-1]
			pc++

		case bytecode.IF:
			if !conditions[len(conditions)-1] {
				pc = int(instr.Addr)
			} else {
				pc++
			}

		case bytecode.ELSE:
			pc = int(instr.Addr)

		case bytecode.ENDIF:
			pc++

		case bytecode.ASSERTCONSTRAINT:
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if x.IsZero() {
				return nil, fmt.Errorf("scalar: assertion failed")
			}
			pc++

		case bytecode.CALLBUILTIN:
			n := int(instr.InCount)
			args := append([]fr.Element(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			results, err := callBuiltin(instr.BuiltinID, args)
			if err != nil {
				return nil, err
			}
			stack = append(stack, results...)
			pc++

		default:
			return nil, fmt.Errorf("scalar: unimplemented opcode %s", instr.Op)
		}
	}
}

type loopState struct {
	bodyStart int
	remaining int
	unbounded bool
}

func popCount(size uint32) int {
	if size == 0 {
		return 1
	}
	return int(size)
}

func (m *Machine) ensureGlobals(n int) {
	if n <= len(m.globals) {
		return
	}
	grown := make([]fr.Element, n)
	copy(grown, m.globals)
	m.globals = grown
}

func feToInt(e fr.Element) int {
	var b big.Int
	e.BigInt(&b)
	return int(b.Int64())
}

// castTo truncates x's canonical representative to bits, reducing the
// signed case into the field's own two's-complement-like negative
// representation (r - k) the same way NEG does - a negative signed value
// and its field encoding are one and the same in this VM.
func castTo(x fr.Element, signed bool, bits int) fr.Element {
	var b big.Int
	x.BigInt(&b)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	mask.Sub(mask, big.NewInt(1))
	b.And(&b, mask)
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		if b.Cmp(half) >= 0 {
			full := new(big.Int).Lsh(big.NewInt(1), uint(bits))
			b.Sub(&b, full)
		}
	}
	var z fr.Element
	z.SetBigInt(&b)
	return z
}

func binaryOp(op bytecode.Opcode, x, y fr.Element) (fr.Element, error) {
	var z fr.Element
	switch op {
	case bytecode.ADD:
		z.Add(&x, &y)
	case bytecode.SUB:
		z.Sub(&x, &y)
	case bytecode.MUL:
		z.Mul(&x, &y)
	case bytecode.DIV, bytecode.REM:
		var xb, yb big.Int
		x.BigInt(&xb)
		y.BigInt(&yb)
		if yb.Sign() == 0 {
			return z, fmt.Errorf("scalar: division by zero")
		}
		q, r := new(big.Int), new(big.Int)
		q.QuoRem(&xb, &yb, r)
		if op == bytecode.DIV {
			z.SetBigInt(q)
		} else {
			z.SetBigInt(r)
		}
	case bytecode.AND, bytecode.OR, bytecode.XOR:
		var xb, yb, rb big.Int
		x.BigInt(&xb)
		y.BigInt(&yb)
		switch op {
		case bytecode.AND:
			rb.And(&xb, &yb)
		case bytecode.OR:
			rb.Or(&xb, &yb)
		case bytecode.XOR:
			rb.Xor(&xb, &yb)
		}
		z.SetBigInt(&rb)
	case bytecode.EQ, bytecode.NE, bytecode.LT, bytecode.LE, bytecode.GT, bytecode.GE:
		var xb, yb big.Int
		x.BigInt(&xb)
		y.BigInt(&yb)
		c := xb.Cmp(&yb)
		var ok bool
		switch op {
		case bytecode.EQ:
			ok = c == 0
		case bytecode.NE:
			ok = c != 0
		case bytecode.LT:
			ok = c < 0
		case bytecode.LE:
			ok = c <= 0
		case bytecode.GT:
			ok = c > 0
		case bytecode.GE:
			ok = c >= 0
		}
		if ok {
			z.SetOne()
		}
	default:
		return z, fmt.Errorf("scalar: not a binary opcode: %s", op)
	}
	return z, nil
}
