package semantic

import (
	"math/big"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// analyzeBlock analyzes a brace-delimited statement sequence in its own
// lexical scope, returning the Element its tail expression denotes (or a
// unit value, if the block has none) - this is the Element a BlockExpr,
// function body, if/else branch, or while/for body reduces to (spec §4.2).
func (a *Analyzer) analyzeBlock(b *ast.Block) Element {
	a.scope.push()
	for _, s := range b.Stmts {
		a.analyzeStmt(s)
	}
	var tail Element
	if b.Tail != nil {
		tail = a.analyzeExpr(b.Tail)
	} else {
		tail = valueElement(types.Unit{})
	}
	a.scope.pop()
	return tail
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.LetStmt:
		a.analyzeLet(s)
	case *ast.ExprStmt:
		a.analyzeExpr(s.X)
	case *ast.AssignStmt:
		a.analyzeAssign(s)
	case *ast.WhileStmt:
		a.analyzeWhile(s)
	case *ast.ForStmt:
		a.analyzeFor(s)
	default:
		start, _ := s.Span()
		a.errorf(start, "unsupported statement")
	}
}

// analyzeLet binds a `let [mut] pat [: Type] = expr;` statement: the
// initializer is evaluated, optionally coerced to an explicit declared
// type, materialized, and stored into freshly reserved data-stack cells
// bound to pat (only IdentExpr/WildcardPattern/TuplePattern are valid let
// patterns - spec §4.2 gives `let` the same destructuring grammar as a
// function parameter, not full match-arm patterns).
func (a *Analyzer) analyzeLet(s *ast.LetStmt) {
	el := a.analyzeExpr(s.Value)
	if s.Type != nil {
		target := a.resolveTypeExprReporting(s.Type)
		el = a.coerceTo(el, target, s.Eq)
	}
	el = a.toValue(el, s.Eq)
	a.bindPattern(s.Pat, el.Type, s.Mut.IsValid(), s.Eq)
}

// bindPattern declares the names pat introduces and stores the value
// currently on top of the data stack (t.Size() cells, deepest-first) into
// their reserved addresses.
func (a *Analyzer) bindPattern(pat ast.Pattern, t types.Type, mutable bool, pos token.Pos) {
	switch pat := pat.(type) {
	case *ast.WildcardPattern:
		a.builder.Push(bytecode.Instruction{Op: bytecode.POP, Size: uint32(t.Size())}, a.file, pos)
	case *ast.IdentExpr:
		addr := a.builder.DeclareVariable(pat.Lit, t)
		a.emitPlaceStore(Element{Kind: ElementPlace, Type: t, Addr: addr}, pos)
		if !a.scope.declare(&Binding{Name: pat.Lit, Type: t, Mutable: mutable, Address: addr, Decl: pat}) {
			a.errorf(pos, "%s is already declared in this scope", pat.Lit)
		}
	case *ast.TuplePattern:
		tp, ok := t.(*types.Tuple)
		if !ok || len(tp.Elems) != len(pat.Elems) {
			a.errorf(pos, "cannot destructure %s as a %d-element tuple", t, len(pat.Elems))
			a.builder.Push(bytecode.Instruction{Op: bytecode.POP, Size: uint32(t.Size())}, a.file, pos)
			return
		}
		// The value's cells sit on the stack in ascending-address order
		// (element 0 deepest); bind back-to-front so each sub-pattern's POP/
		// STORE only ever touches the cells currently on top.
		for i := len(tp.Elems) - 1; i >= 0; i-- {
			a.bindPattern(pat.Elems[i], tp.Elems[i], mutable, pos)
		}
	default:
		a.errorf(pos, "unsupported let pattern")
		a.builder.Push(bytecode.Instruction{Op: bytecode.POP, Size: uint32(t.Size())}, a.file, pos)
	}
}

// analyzeAssign lowers `place = expr;` or a compound `place op= expr;` to
// the equivalent place store, reading the place's current value first for
// the compound form.
func (a *Analyzer) analyzeAssign(s *ast.AssignStmt) {
	place, ok := a.resolvePlace(s.Left)
	if !ok {
		a.analyzeExpr(s.Right)
		return
	}
	if place.Binding != nil && !place.Binding.Mutable {
		a.errorf(s.Op, "cannot assign to immutable binding %s", place.Binding.Name)
	}

	rhs := a.toValue(a.analyzeExpr(s.Right), s.Op)
	rhs = a.coerceTo(rhs, place.Type, s.Op)

	if s.Type != token.EQ {
		op, ok := binaryOpcode[s.Type]
		if !ok {
			a.errorf(s.Op, "unsupported compound assignment operator %s", s.Type)
			return
		}
		a.emitPlaceLoad(place, s.Op)
		a.builder.Push(bytecode.Instruction{Op: op}, a.file, s.Op)
	}
	a.emitPlaceStore(place, s.Op)
}

// analyzeWhile lowers `while cond { body }` to
// LoopBegin(UnboundedLoop)/body/LoopEnd bracketing a PushCondition-gated
// body, re-evaluating cond itself each trip the way the teacher's own
// interpreter re-evaluates a loop guard - unlike `for`, a `while` loop's
// trip count is not knowable at compile time, so LoopBegin's Iterations
// field holds the bytecode.UnboundedLoop sentinel instead of a trip count.
func (a *Analyzer) analyzeWhile(s *ast.WhileStmt) {
	a.loopDepth++
	loopIdx := len(a.builder.Instructions)
	// Iterations has no static value for a while loop's unknown trip count,
	// but the zero value is already claimed by a for-loop whose range is
	// statically empty (meaning "skip entirely") - bytecode.UnboundedLoop
	// distinguishes the two so a machine doesn't mistake one for the other.
	a.builder.Push(bytecode.Instruction{Op: bytecode.LOOPBEGIN, Iterations: bytecode.UnboundedLoop}, a.file, s.While)

	cond := a.toValue(a.analyzeExpr(s.Cond), s.While)
	if cond.Type.Kind() != types.KindBoolean {
		a.errorf(s.While, "while condition must be bool, found %s", cond.Type)
	}
	a.builder.Push(bytecode.Instruction{Op: bytecode.PUSHCONDITION}, a.file, s.While)
	ifIdx := len(a.builder.Instructions)
	a.builder.Push(bytecode.Instruction{Op: bytecode.IF}, a.file, s.While)

	body := a.analyzeBlock(s.Body)
	if body.Type.Size() > 0 {
		a.builder.Push(bytecode.Instruction{Op: bytecode.POP, Size: uint32(body.Type.Size())}, a.file, s.While)
	}

	a.builder.PatchAddr(ifIdx, uint32(len(a.builder.Instructions)))
	a.builder.Push(bytecode.Instruction{Op: bytecode.ENDIF}, a.file, s.While)
	a.builder.Push(bytecode.Instruction{Op: bytecode.POPCONDITION}, a.file, s.While)

	a.builder.Push(bytecode.Instruction{Op: bytecode.LOOPEND}, a.file, s.While)
	a.builder.PatchAddr(loopIdx, uint32(len(a.builder.Instructions)))
	a.loopDepth--
}

// analyzeFor lowers `for pat in lo..hi [while cond] { body }`: the range
// bounds must be compile-time constants (spec §4.2/§4.4), so the trip
// count is known statically and recorded in LoopBegin's Iterations
// operand; an optional `while` guard is gated through the same
// PushCondition/PopCondition protocol as an ordinary while loop's body:
// the guard is evaluated and pushed before the body, exactly like a nested
// `if cond { body }`, so every instruction of the body - Stores and
// AssertConstraints alike - sits under the guard. Only the loop variable's
// increment is emitted outside it.
func (a *Analyzer) analyzeFor(s *ast.ForStmt) {
	rng, ok := s.Range.(*ast.RangeExpr)
	if !ok {
		a.errorf(s.For, "for loop range must be a range expression")
		return
	}
	lowEl, lok := a.foldConstExpr(rng.Low)
	highEl, hok := a.foldConstExpr(rng.High)
	if !lok || !hok || lowEl.ConstInt == nil || highEl.ConstInt == nil {
		a.errorf(s.For, "for loop range bounds must be compile-time constants")
		return
	}
	lo := lowEl.ConstInt.Int64()
	hi := highEl.ConstInt.Int64()
	if rng.Inclusive {
		hi++
	}
	if hi < lo {
		hi = lo
	}
	trips := hi - lo
	elemType := lowEl.Type
	signed, bits := a.scalarPushShape(elemType)

	// The loop variable is an ordinary mutable local, initialized to lo
	// before LoopBegin and incremented once per trip at the end of the
	// body - LoopBegin's Iterations operand only tells the VM how many
	// times to repeat the bracketed instructions, it does not itself
	// maintain a counter cell.
	a.scope.push()
	varAddr := -1
	varName := ""
	if ident, ok := s.Pat.(*ast.IdentExpr); ok {
		varName = ident.Lit
	}
	if varName != "" {
		varAddr = a.builder.DeclareVariable(varName, elemType)
		a.builder.PushConst(lowEl.ConstInt, signed, bits, a.file, s.For)
		a.builder.Push(bytecode.Instruction{Op: bytecode.STORE, Addr: uint32(varAddr)}, a.file, s.For)
		a.scope.declare(&Binding{Name: varName, Type: elemType, Mutable: false, Address: varAddr, Decl: s.Pat})
	}

	a.loopDepth++
	loopIdx := len(a.builder.Instructions)
	a.builder.Push(bytecode.Instruction{Op: bytecode.LOOPBEGIN, Iterations: uint32(trips)}, a.file, s.For)

	if s.Cond != nil {
		cond := a.toValue(a.analyzeExpr(s.Cond), s.While)
		if cond.Type.Kind() != types.KindBoolean {
			a.errorf(s.While, "for-while guard must be bool, found %s", cond.Type)
		}
		a.builder.Push(bytecode.Instruction{Op: bytecode.PUSHCONDITION}, a.file, s.While)
		ifIdx := len(a.builder.Instructions)
		a.builder.Push(bytecode.Instruction{Op: bytecode.IF}, a.file, s.While)
		body := a.analyzeBlock(s.Body)
		if body.Type.Size() > 0 {
			a.builder.Push(bytecode.Instruction{Op: bytecode.POP, Size: uint32(body.Type.Size())}, a.file, s.While)
		}
		a.builder.PatchAddr(ifIdx, uint32(len(a.builder.Instructions)))
		a.builder.Push(bytecode.Instruction{Op: bytecode.ENDIF}, a.file, s.While)
		a.builder.Push(bytecode.Instruction{Op: bytecode.POPCONDITION}, a.file, s.While)
	} else {
		body := a.analyzeBlock(s.Body)
		if body.Type.Size() > 0 {
			a.builder.Push(bytecode.Instruction{Op: bytecode.POP, Size: uint32(body.Type.Size())}, a.file, s.For)
		}
	}

	if varAddr >= 0 {
		a.builder.Push(bytecode.Instruction{Op: bytecode.LOAD, Addr: uint32(varAddr)}, a.file, s.For)
		a.builder.PushConst(big.NewInt(1), signed, bits, a.file, s.For)
		a.builder.Push(bytecode.Instruction{Op: bytecode.ADD}, a.file, s.For)
		a.builder.Push(bytecode.Instruction{Op: bytecode.STORE, Addr: uint32(varAddr)}, a.file, s.For)
	}

	a.scope.pop()
	a.builder.Push(bytecode.Instruction{Op: bytecode.LOOPEND}, a.file, s.For)
	a.builder.PatchAddr(loopIdx, uint32(len(a.builder.Instructions)))
	a.loopDepth--
}
