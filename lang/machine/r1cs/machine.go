package r1cs

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mna/zircon/lang/bytecode"
)

// Machine executes one compiled Program against a ConstraintSystem,
// allocating a circuit Variable per non-constant stack cell and emitting
// the constraints of spec §4.7's table as it goes. A Machine is not safe
// for concurrent use; create one per run.
//
// Grounded on lang/machine/scalar's single dispatch-loop/frame-stack
// design, diverging from it in exactly one place: If/Else/EndIf. The
// scalar VM jumps past the not-taken branch (If.Addr/Else.Addr); this VM
// cannot, since at key-generation time there is no witness to decide
// which branch would have been taken and the resulting circuit must be
// the same shape either way (spec §4.7 "Conditional execution in R1CS").
// So both branches are always walked in program order and their results
// merged with ConditionalSelect, while Store under a non-trivial
// condition gates between the new and prior value the same way.
//
// LoopBegin/LoopEnd are not similarly rewritten: a `for` loop's trip
// count is already a compile-time constant (spec §4.4), so repeating its
// body that many times is already witness-independent. An unbounded
// `while` loop's trip count is not: this pass still derives it from the
// concrete witness during proving, exactly like the scalar VM, rather
// than unrolling to a fixed worst-case bound and padding - a real
// limitation (such a loop has no fixed circuit shape) left as an open
// extension point, since the retrieved corpus has no bounded-loop-padding
// gadget to ground one on. Running an unbounded while loop without a
// witness (key-generation-only mode) is accordingly unsupported.
type Machine struct {
	prog      *bytecode.Program
	cs        *ConstraintSystem
	globals   []cell
	loopStack []loopState
}

// New returns a Machine ready to execute prog against cs.
func New(prog *bytecode.Program, cs *ConstraintSystem) *Machine {
	return &Machine{prog: prog, cs: cs}
}

type frame struct {
	cells    []cell
	returnPC int
}

func (f *frame) ensure(n int) {
	if n <= len(f.cells) {
		return
	}
	grown := make([]cell, n)
	var zero fr.Element
	for i := range grown {
		grown[i] = constCell(zero)
	}
	copy(grown, f.cells)
	f.cells = grown
}

// condFrame tracks one nested If/Else/EndIf bracket, bounded by a
// PushCondition/PopCondition pair: gate is the effective Store-gating
// condition currently in force (parentGate AND cond while walking the
// then-body, parentGate AND NOT(cond) once Else flips it), and thenVals
// snapshots the then-body's result cells at Else so they survive the
// else-body reusing the same stack slots, ready for EndIf's
// ConditionalSelect merge.
type condFrame struct {
	parentGate cell
	cond       cell
	gate       cell
	baseLen    int
	thenVals   []cell
	haveElse   bool
}

// Run executes the program with its input cells allocated against cs: each input
// value becomes an allocated Variable (never a bare constant), since the
// caller-supplied witness is exactly the kind of value the constant/
// allocated dualism exists to distinguish from compile-time constants.
func (m *Machine) Run(input []fr.Element) ([]fr.Element, error) {
	stack := make([]cell, len(input))
	for i, v := range input {
		stack[i] = varCell(m.cs.Alloc(v), v)
	}
	out, err := m.exec(stack)
	if err != nil {
		return nil, err
	}
	result := make([]fr.Element, len(out))
	for i, c := range out {
		result[i] = c.value
	}
	return result, nil
}

func currentGate(condStack []*condFrame) cell {
	if len(condStack) == 0 {
		return constCell(boolElement(true))
	}
	return condStack[len(condStack)-1].gate
}

func isTrivialGate(c cell) bool {
	return c.isConstant && !c.constant.IsZero()
}

func (m *Machine) exec(stack []cell) ([]cell, error) {
	code := m.prog.Instructions
	frames := []*frame{{}}
	var condStack []*condFrame
	var lastCondition cell

	pc := 0
	for {
		if pc < 0 || pc >= len(code) {
			return nil, fmt.Errorf("r1cs: program counter %d out of range", pc)
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
			stack = append(stack, constCell(el))
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
			newVal := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			merged, err := gatedStore(m.cs, condStack, newVal, top.cells[instr.Addr])
			if err != nil {
				return nil, err
			}
			top.cells[instr.Addr] = merged
			pc++

		case bytecode.LOADGLOBAL:
			m.ensureGlobals(int(instr.Addr) + 1)
			stack = append(stack, m.globals[instr.Addr])
			pc++

		case bytecode.STOREGLOBAL:
			m.ensureGlobals(int(instr.Addr) + 1)
			newVal := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			merged, err := gatedStore(m.cs, condStack, newVal, m.globals[instr.Addr])
			if err != nil {
				return nil, err
			}
			m.globals[instr.Addr] = merged
			pc++

		case bytecode.LOADBYINDEX:
			idx := cellToInt(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			size := int(instr.Size)
			base := int(instr.Addr) + idx*size
			top.ensure(base + size)
			stack = append(stack, top.cells[base:base+size]...)
			pc++

		case bytecode.STOREBYINDEX:
			idx := cellToInt(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			size := int(instr.Size)
			base := int(instr.Addr) + idx*size
			top.ensure(base + size)
			for k := size - 1; k >= 0; k-- {
				newVal := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				merged, err := gatedStore(m.cs, condStack, newVal, top.cells[base+k])
				if err != nil {
					return nil, err
				}
				top.cells[base+k] = merged
			}
			pc++

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.REM,
			bytecode.AND, bytecode.OR, bytecode.XOR,
			bytecode.EQ, bytecode.NE, bytecode.LT, bytecode.LE, bytecode.GT, bytecode.GE:
			y := stack[len(stack)-1]
			x := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			z, err := binaryOp(m.cs, instr.Op, x, y)
			if err != nil {
				return nil, err
			}
			stack = append(stack, z)
			pc++

		case bytecode.NEG:
			x := stack[len(stack)-1]
			z, err := neg(m.cs, x)
			if err != nil {
				return nil, err
			}
			stack[len(stack)-1] = z
			pc++

		case bytecode.NOT:
			x := stack[len(stack)-1]
			z, err := not(m.cs, x)
			if err != nil {
				return nil, err
			}
			stack[len(stack)-1] = z
			pc++

		case bytecode.CAST:
			x := stack[len(stack)-1]
			z, err := cast(m.cs, x, instr.Signed, instr.Bits)
			if err != nil {
				return nil, err
			}
			stack[len(stack)-1] = z
			pc++

		case bytecode.CALL:
			n := int(instr.Size)
			args := append([]cell(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			nf := &frame{returnPC: pc + 1}
			nf.ensure(n)
			copy(nf.cells, args)
			frames = append(frames, nf)
			pc = int(instr.Addr)

		case bytecode.RETURN:
			returnPC := top.returnPC
			frames = frames[:len(frames)-1]
			pc = returnPC

		case bytecode.EXIT:
			n := int(instr.Size)
			return stack[len(stack)-n:], nil

		case bytecode.LOOPBEGIN:
			if instr.Iterations == bytecode.UnboundedLoop {
				if !m.cs.Proving() {
					return nil, fmt.Errorf("r1cs: unbounded while loop requires a witness (key generation is not supported for while loops)")
				}
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
				if !lastCondition.value.IsZero() {
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
			cond := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parentGate := currentGate(condStack)
			thenGate, err := and(m.cs, parentGate, cond)
			if err != nil {
				return nil, err
			}
			condStack = append(condStack, &condFrame{
				parentGate: parentGate,
				cond:       cond,
				gate:       thenGate,
				baseLen:    len(stack),
			})
			pc++

		case bytecode.POPCONDITION:
			top := condStack[len(condStack)-1]
			condStack = condStack[:len(condStack)-1]
			lastCondition = top.cond
			pc++

		case bytecode.IF:
			// Both branches are walked in program order; see the package
			// doc comment. The jump target computed by the semantic
			// analyzer for the scalar VM's benefit is not used here.
			pc++

		case bytecode.ELSE:
			top := condStack[len(condStack)-1]
			n := len(stack) - top.baseLen
			top.thenVals = append([]cell(nil), stack[len(stack)-n:]...)
			stack = stack[:top.baseLen]
			notCond, err := not(m.cs, top.cond)
			if err != nil {
				return nil, err
			}
			elseGate, err := and(m.cs, top.parentGate, notCond)
			if err != nil {
				return nil, err
			}
			top.gate = elseGate
			top.haveElse = true
			pc++

		case bytecode.ENDIF:
			top := condStack[len(condStack)-1]
			if top.haveElse {
				n := len(stack) - top.baseLen
				elseVals := append([]cell(nil), stack[len(stack)-n:]...)
				stack = stack[:top.baseLen]
				merged := make([]cell, n)
				for i := 0; i < n; i++ {
					z, err := conditionalSelect(m.cs, top.cond, top.thenVals[i], elseVals[i])
					if err != nil {
						return nil, err
					}
					merged[i] = z
				}
				stack = append(stack, merged...)
			}
			pc++

		case bytecode.ASSERTCONSTRAINT:
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			// gate * x = gate: x must be 1 where the pending conditions hold,
			// and the row is trivially satisfied where they do not.
			gate := currentGate(condStack)
			if err := m.cs.Enforce(gate.lc(), x.lc(), gate.lc(), m.cs.Namespace("assert")); err != nil {
				return nil, err
			}
			pc++

		case bytecode.CALLBUILTIN:
			n := int(instr.InCount)
			args := append([]cell(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			results, err := callBuiltin(m.cs, instr.BuiltinID, args)
			if err != nil {
				return nil, err
			}
			stack = append(stack, results...)
			pc++

		default:
			return nil, fmt.Errorf("r1cs: unimplemented opcode %s", instr.Op)
		}
	}
}

// gatedStore implements the Store gating described by spec §4.7: under
// the empty (or trivially-true) condition stack, this is a plain
// overwrite; otherwise the prior value survives via ConditionalSelect so
// every path through a conditional contributes the same constraints.
func gatedStore(cs *ConstraintSystem, condStack []*condFrame, newVal, old cell) (cell, error) {
	gate := currentGate(condStack)
	if isTrivialGate(gate) {
		return newVal, nil
	}
	return conditionalSelect(cs, gate, newVal, old)
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
	grown := make([]cell, n)
	var zero fr.Element
	for i := range grown {
		grown[i] = constCell(zero)
	}
	copy(grown, m.globals)
	m.globals = grown
}

func cellToInt(c cell) int {
	return int(bigFromField(c.value).Int64())
}

func binaryOp(cs *ConstraintSystem, op bytecode.Opcode, x, y cell) (cell, error) {
	switch op {
	case bytecode.ADD:
		return add(cs, x, y)
	case bytecode.SUB:
		return sub(cs, x, y)
	case bytecode.MUL:
		return mul(cs, x, y)
	case bytecode.DIV:
		q, _, err := divRem(cs, x, y)
		return q, err
	case bytecode.REM:
		_, r, err := divRem(cs, x, y)
		return r, err
	case bytecode.AND:
		return and(cs, x, y)
	case bytecode.OR:
		return or(cs, x, y)
	case bytecode.XOR:
		return xor(cs, x, y)
	case bytecode.EQ:
		return eq(cs, x, y)
	case bytecode.NE:
		return ne(cs, x, y)
	case bytecode.LT:
		return lt(cs, x, y)
	case bytecode.LE:
		return le(cs, x, y)
	case bytecode.GT:
		return gt(cs, x, y)
	case bytecode.GE:
		return ge(cs, x, y)
	default:
		return cell{}, fmt.Errorf("r1cs: not a binary opcode: %s", op)
	}
}
