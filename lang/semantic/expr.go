package semantic

import (
	"math/big"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// toValue ensures el denotes a runtime value sitting on top of the data
// stack, emitting whatever bytecode is needed to get there, and returns the
// resulting ElementValue. A constant is pushed (and cast, if its declared
// type differs from its native one) only at the point it is actually
// needed - not at fold time - so a const/static used only in other
// constant expressions never reaches the bytecode at all.
func (a *Analyzer) toValue(el Element, pos token.Pos) Element {
	switch el.Kind {
	case ElementValue:
		return el
	case ElementConstant:
		if el.IsConstStr {
			a.errorf(pos, "string literal is not a value")
			return valueElement(types.Unit{})
		}
		a.emitConstValue(el, pos)
		return valueElement(el.Type)
	case ElementPlace:
		a.emitPlaceLoad(el, pos)
		return valueElement(el.Type)
	default:
		a.errorf(pos, "type name used where a value is expected")
		return valueElement(types.Unit{})
	}
}

// emitPlaceLoad pushes el's cells onto the data stack, ascending address
// order (so the place's first cell ends up deepest, matching how a
// composite's own construction pushes its elements in declaration order -
// see analyzeExpr's TupleExpr/ArrayExpr/StructLitExpr cases).
func (a *Analyzer) emitPlaceLoad(el Element, pos token.Pos) {
	if el.DynIndex != nil {
		idx := a.analyzeExpr(el.DynIndex)
		idx = a.toValue(idx, pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.LOADBYINDEX, Addr: uint32(el.Addr), Size: uint32(el.ElemSize)}, a.file, pos)
		return
	}
	size := el.Type.Size()
	op := bytecode.LOAD
	if el.isGlobalPlace() {
		op = bytecode.LOADGLOBAL
	}
	for i := 0; i < size; i++ {
		a.builder.Push(bytecode.Instruction{Op: op, Addr: uint32(el.Addr + i)}, a.file, pos)
	}
}

// emitPlaceStore pops a value already pushed by the caller (el.Type.Size()
// cells, deepest-first) and writes it into el, descending address order to
// match the stack's LIFO pop order.
func (a *Analyzer) emitPlaceStore(el Element, pos token.Pos) {
	if el.DynIndex != nil {
		idx := a.analyzeExpr(el.DynIndex)
		idx = a.toValue(idx, pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.STOREBYINDEX, Addr: uint32(el.Addr), Size: uint32(el.ElemSize)}, a.file, pos)
		return
	}
	size := el.Type.Size()
	op := bytecode.STORE
	if el.isGlobalPlace() {
		op = bytecode.STOREGLOBAL
	}
	for i := size - 1; i >= 0; i-- {
		a.builder.Push(bytecode.Instruction{Op: op, Addr: uint32(el.Addr + i)}, a.file, pos)
	}
}

// resolvePlace analyzes e as an assignable location: a name, or a field/
// tuple-index/array-index projection of one (spec §4.2's place grammar -
// ast.IsAssignable names exactly this same set of node kinds). Constant
// index/field/tuple-index offsets are folded into a single effective
// address up front; a non-constant array index is kept unresolved as
// Element.DynIndex (see its doc comment).
func (a *Analyzer) resolvePlace(e ast.Expr) (Element, bool) {
	switch e := ast.Unwrap(e).(type) {
	case *ast.IdentExpr:
		if b, ok := a.scope.lookup(e.Lit); ok {
			return placeElement(b.Type, b), true
		}
		if gv, ok := a.globals.Get(e.Lit); ok {
			return globalElement(gv), true
		}
		a.errorf(e.Start, "undefined name %s", e.Lit)
		return Element{}, false

	case *ast.FieldExpr:
		base, ok := a.resolvePlace(e.X)
		if !ok {
			return Element{}, false
		}
		st, ok := base.Type.(*types.Structure)
		if !ok {
			a.errorf(e.Dot, "field access on non-struct type %s", base.Type)
			return Element{}, false
		}
		idx := st.FieldIndex(e.Field.Lit)
		if idx < 0 {
			a.errorf(e.Dot, "struct %s has no field %s", st.Name, e.Field.Lit)
			return Element{}, false
		}
		return a.projectPlace(base, st.FieldOffset(idx), st.Fields[idx].Type), true

	case *ast.TupleIndexExpr:
		base, ok := a.resolvePlace(e.X)
		if !ok {
			return Element{}, false
		}
		tp, ok := base.Type.(*types.Tuple)
		if !ok {
			a.errorf(e.Dot, "tuple index on non-tuple type %s", base.Type)
			return Element{}, false
		}
		if e.Index < 0 || e.Index >= len(tp.Elems) {
			a.errorf(e.Dot, "tuple index %d out of range for %s", e.Index, base.Type)
			return Element{}, false
		}
		off := 0
		for _, t := range tp.Elems[:e.Index] {
			off += t.Size()
		}
		return a.projectPlace(base, off, tp.Elems[e.Index]), true

	case *ast.IndexExpr:
		base, ok := a.resolvePlace(e.X)
		if !ok {
			return Element{}, false
		}
		arr, ok := base.Type.(*types.Array)
		if !ok {
			a.errorf(e.Lbrack, "index on non-array type %s", base.Type)
			return Element{}, false
		}
		if base.DynIndex != nil {
			a.errorf(e.Lbrack, "cannot index into the result of a dynamic array index")
			return Element{}, false
		}
		if idxEl, ok := a.foldConstExpr(e.Index); ok && idxEl.ConstInt != nil {
			n := int(idxEl.ConstInt.Int64())
			if n < 0 || n >= arr.Size_ {
				a.errorf(e.Lbrack, "array index %d out of range for %s", n, base.Type)
				return Element{}, false
			}
			return a.projectPlace(base, n*arr.Elem.Size(), arr.Elem), true
		}
		el := base
		el.Type = arr.Elem
		el.DynIndex = e.Index
		el.ElemSize = arr.Elem.Size()
		return el, true

	default:
		start, _ := e.Span()
		a.errorf(start, "expression is not assignable")
		return Element{}, false
	}
}

// projectPlace returns the place offset cells into base, with type t.
func (a *Analyzer) projectPlace(base Element, offset int, t types.Type) Element {
	base.Type = t
	base.Addr += offset
	return base
}

// analyzeExpr is the single entry point for analyzing any expression,
// returning the Element it denotes without necessarily emitting bytecode -
// callers that need a runtime value call toValue themselves. Grounded on
// zinc-compiler's `Analyzer::evaluate` dispatch
// (original_source/zinc-compiler/src/semantic/analyzer/expression/mod.rs),
// simplified since zircon's expression grammar is already desugared to a
// single flat node set by the parser (no separate "access"/"auxiliary"
// expression passes).
func (a *Analyzer) analyzeExpr(e ast.Expr) Element {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return a.analyzeExpr(e.X)
	case *ast.UnitExpr:
		return valueElement(types.Unit{})
	case *ast.IntLiteralExpr:
		return untypedIntElement(new(big.Int).Set(e.Value))
	case *ast.BoolLiteralExpr:
		return constBoolElement(e.Value)
	case *ast.StringLiteralExpr:
		return constStrElement(e.Value)
	case *ast.IdentExpr:
		return a.analyzeName(e.Lit, e.Start)
	case *ast.PathExpr:
		return a.analyzePath(e)
	case *ast.TupleExpr:
		return a.analyzeTuple(e)
	case *ast.ArrayExpr:
		return a.analyzeArray(e)
	case *ast.ArrayRepeatExpr:
		return a.analyzeArrayRepeat(e)
	case *ast.StructLitExpr:
		return a.analyzeStructLit(e)
	case *ast.CallExpr:
		return a.analyzeCall(e)
	case *ast.MethodCallExpr:
		return a.analyzeMethodCall(e)
	case *ast.FieldExpr, *ast.TupleIndexExpr, *ast.IndexExpr:
		place, ok := a.resolvePlace(e)
		if !ok {
			return valueElement(types.Unit{})
		}
		return place
	case *ast.CastExpr:
		return a.analyzeCast(e)
	case *ast.UnaryExpr:
		return a.analyzeUnary(e)
	case *ast.BinaryExpr:
		return a.analyzeBinary(e)
	case *ast.BlockExpr:
		return a.analyzeBlock(e.Block)
	case *ast.IfExpr:
		return a.analyzeIf(e)
	case *ast.MatchExpr:
		return a.analyzeMatch(e)
	case *ast.RangeExpr:
		start, _ := e.Span()
		a.errorf(start, "range expression is only valid as a for-loop bound")
		return valueElement(types.Unit{})
	default:
		start, _ := e.Span()
		a.errorf(start, "unsupported expression")
		return valueElement(types.Unit{})
	}
}

func (a *Analyzer) analyzeName(name string, pos token.Pos) Element {
	if b, ok := a.scope.lookup(name); ok {
		el := placeElement(b.Type, b)
		return el
	}
	if gv, ok := a.globals.Get(name); ok {
		return globalElement(gv)
	}
	if el, ok := a.constants.Get(name); ok {
		return el
	}
	if t, ok := a.namedTypes.Get(name); ok {
		return typeElement(t)
	}
	if _, ok := a.funcs.Get(name); ok {
		a.errorf(pos, "function %s used as a value; call it instead", name)
		return valueElement(types.Unit{})
	}
	a.errorf(pos, "undefined name %s", name)
	return valueElement(types.Unit{})
}

// analyzePath resolves a::b::c: a single segment is an ordinary name
// lookup, two segments may name an enum variant (Color::Red) or - for the
// fixed std::crypto::... built-in namespace - a built-in call target
// resolved lazily by analyzeCall itself (a path alone, outside call
// position, is never itself a valid built-in reference).
func (a *Analyzer) analyzePath(p *ast.PathExpr) Element {
	if len(p.Segments) == 1 {
		return a.analyzeName(p.Segments[0].Lit, p.Segments[0].Start)
	}
	if len(p.Segments) == 2 {
		enumName, variant := p.Segments[0].Lit, p.Segments[1].Lit
		if t, ok := a.namedTypes.Get(enumName); ok {
			if en, ok := t.(*types.Enumeration); ok {
				if idx := en.VariantIndex(variant); idx >= 0 {
					return constIntElement(en, new(big.Int).Set(en.Variants[idx].Value))
				}
				a.errorf(p.Segments[1].Start, "enum %s has no variant %s", en.Name, variant)
				return valueElement(types.Unit{})
			}
		}
	}
	if isBuiltinPath(p) {
		a.errorf(p.Segments[0].Start, "built-in %s can only be used as a call", pathString(p))
		return valueElement(types.Unit{})
	}
	a.errorf(p.Segments[0].Start, "undefined path %s", pathString(p))
	return valueElement(types.Unit{})
}

func (a *Analyzer) analyzeTuple(te *ast.TupleExpr) Element {
	elemTypes := make([]types.Type, len(te.Elems))
	for i, e := range te.Elems {
		el := a.analyzeExpr(e)
		pos, _ := e.Span()
		el = a.toValue(el, pos)
		elemTypes[i] = el.Type
	}
	return valueElement(types.NewTuple(elemTypes))
}

func (a *Analyzer) analyzeArray(ae *ast.ArrayExpr) Element {
	var elemType types.Type = types.Unit{}
	for i, e := range ae.Elems {
		el := a.analyzeExpr(e)
		pos, _ := e.Span()
		el = a.toValue(el, pos)
		if i == 0 {
			elemType = el.Type
		} else if !types.Equal(el.Type, elemType) {
			a.errorf(pos, "array element %d has type %s, expected %s", i, el.Type, elemType)
		}
	}
	return valueElement(types.NewArray(elemType, len(ae.Elems)))
}

// analyzeArrayRepeat lowers `[value; size]` to one materialization of value
// followed by size-1 Copy instructions, each duplicating the element's
// cells onto the top of the stack - the only user of the Copy opcode
// (spec §4's opcode catalog), since every other composite construction
// already evaluates each element independently.
func (a *Analyzer) analyzeArrayRepeat(ar *ast.ArrayRepeatExpr) Element {
	n, ok := a.evalConstIndex(ar.Size)
	if !ok {
		return valueElement(types.Unit{})
	}
	pos, _ := ar.Value.Span()
	val := a.toValue(a.analyzeExpr(ar.Value), pos)
	for i := 1; i < n; i++ {
		a.builder.Push(bytecode.Instruction{Op: bytecode.COPY, Size: uint32(val.Type.Size())}, a.file, pos)
	}
	return valueElement(types.NewArray(val.Type, n))
}

func (a *Analyzer) analyzeStructLit(sl *ast.StructLitExpr) Element {
	name := pathString(sl.Name)
	t, ok := a.namedTypes.Get(name)
	if !ok {
		a.errorf(sl.Name.Segments[0].Start, "undefined struct %s", name)
		return valueElement(types.Unit{})
	}
	st, ok := t.(*types.Structure)
	if !ok {
		a.errorf(sl.Name.Segments[0].Start, "%s is not a struct type", name)
		return valueElement(types.Unit{})
	}
	values := make([]Element, len(st.Fields))
	given := make([]bool, len(st.Fields))
	for _, fi := range sl.Fields {
		idx := st.FieldIndex(fi.Name.Lit)
		if idx < 0 {
			a.errorf(fi.Name.Start, "struct %s has no field %s", st.Name, fi.Name.Lit)
			continue
		}
		el := a.analyzeExpr(fi.Value)
		el = a.coerceTo(el, st.Fields[idx].Type, fi.Colon)
		values[idx] = el
		given[idx] = true
	}
	for i, f := range st.Fields {
		if !given[i] {
			a.errorf(sl.Rbrace, "struct %s: missing field %s", st.Name, f.Name)
			continue
		}
		a.toValue(values[i], sl.Rbrace)
	}
	return valueElement(st)
}

// coerceTo adapts el to target: constants are re-checked/re-pinned (spec §8
// property 1), runtime values of a different type are rejected - zircon
// never implicitly casts a runtime value, only an explicit `as` does that.
func (a *Analyzer) coerceTo(el Element, target types.Type, pos token.Pos) Element {
	if el.Kind == ElementConstant {
		return a.coerceConstTo(el, target, pos)
	}
	if !types.Equal(el.Type, target) {
		a.errorf(pos, "expected %s, found %s", target, el.Type)
	}
	return el
}

// analyzeCast lowers `expr as Type`: a constant operand folds outright
// (foldCastConst), otherwise the runtime value is materialized and an
// explicit Cast instruction emitted, checked against types.CanCast (spec
// §4.3's cast compatibility table).
func (a *Analyzer) analyzeCast(c *ast.CastExpr) Element {
	if el, ok := a.foldCastConst(c); ok {
		return el
	}
	target, ok := a.resolveTypeExpr(c.Type)
	if !ok {
		start, _ := c.Type.Span()
		a.errorf(start, "unresolved cast target type")
		return valueElement(types.Unit{})
	}
	x := a.toValue(a.analyzeExpr(c.X), c.As)
	if !types.CanCast(x.Type, target) {
		a.errorf(c.As, "cannot cast %s to %s", x.Type, target)
		return valueElement(target)
	}
	signed, bits := a.scalarPushShape(target)
	a.builder.Push(bytecode.Instruction{Op: bytecode.CAST, Signed: signed, Bits: bits}, a.file, c.As)
	return valueElement(target)
}

// analyzeUnary lowers `-x`/`!x`: a constant operand folds via
// foldUnaryConst, otherwise the operand is materialized and Neg/Not
// emitted.
func (a *Analyzer) analyzeUnary(u *ast.UnaryExpr) Element {
	if el, ok := a.foldUnaryConst(u); ok {
		return el
	}
	x := a.toValue(a.analyzeExpr(u.X), u.Op)
	switch u.Type {
	case token.MINUS:
		if !types.IsInteger(x.Type) && x.Type.Kind() != types.KindField {
			a.errorf(u.Op, "unary - requires a numeric operand, found %s", x.Type)
		}
		a.builder.Push(bytecode.Instruction{Op: bytecode.NEG}, a.file, u.Op)
		return valueElement(x.Type)
	case token.BANG:
		if x.Type.Kind() != types.KindBoolean {
			a.errorf(u.Op, "unary ! requires bool, found %s", x.Type)
		}
		a.builder.Push(bytecode.Instruction{Op: bytecode.NOT}, a.file, u.Op)
		return valueElement(types.Boolean{})
	default:
		a.errorf(u.Op, "unsupported unary operator")
		return valueElement(types.Unit{})
	}
}

var binaryOpcode = map[token.Token]bytecode.Opcode{
	token.PLUS:    bytecode.ADD,
	token.MINUS:   bytecode.SUB,
	token.STAR:    bytecode.MUL,
	token.SLASH:   bytecode.DIV,
	token.PERCENT: bytecode.REM,
	token.AMP:     bytecode.AND,
	token.AMPAMP:  bytecode.AND,
	token.PIPE:    bytecode.OR,
	token.PIPEPIPE: bytecode.OR,
	token.CARET:   bytecode.XOR,
	token.EQEQ:    bytecode.EQ,
	token.NEQ:     bytecode.NE,
	token.LT:      bytecode.LT,
	token.LE:      bytecode.LE,
	token.GT:      bytecode.GT,
	token.GE:      bytecode.GE,
}

// analyzeBinary lowers a binary operator expression: constant operands fold
// via foldBinaryConst, otherwise both operands are materialized left-to-
// right and the matching opcode emitted. `&&`/`||` share And/Or's opcode
// with the bitwise operators rather than getting their own short-circuit
// control flow - zircon expressions are side-effect-free (no calls with
// observable effects outside the constraint system), so eager evaluation
// of both operands is observationally identical to short-circuiting.
func (a *Analyzer) analyzeBinary(b *ast.BinaryExpr) Element {
	if el, ok := a.foldBinaryConst(b); ok {
		return el
	}
	left := a.toValue(a.analyzeExpr(b.Left), b.Op)
	right := a.toValue(a.analyzeExpr(b.Right), b.Op)

	switch b.Type {
	case token.AMPAMP, token.PIPEPIPE:
		if left.Type.Kind() != types.KindBoolean || right.Type.Kind() != types.KindBoolean {
			a.errorf(b.Op, "%s requires bool operands", b.Type)
		}
	case token.EQEQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		if !types.Equal(left.Type, right.Type) {
			a.errorf(b.Op, "comparison operands have different types: %s and %s", left.Type, right.Type)
		}
	default:
		if !types.Equal(left.Type, right.Type) {
			a.errorf(b.Op, "operands have different types: %s and %s", left.Type, right.Type)
		}
	}

	op, ok := binaryOpcode[b.Type]
	if !ok {
		a.errorf(b.Op, "unsupported binary operator %s", b.Type)
		return valueElement(types.Unit{})
	}
	a.builder.Push(bytecode.Instruction{Op: op}, a.file, b.Op)

	switch b.Type {
	case token.EQEQ, token.NEQ, token.LT, token.LE, token.GT, token.GE, token.AMPAMP, token.PIPEPIPE:
		return valueElement(types.Boolean{})
	default:
		return valueElement(left.Type)
	}
}

// analyzeCall dispatches a CallExpr to either a user function call or a
// built-in macro (Bang set, or the callee names a std:: built-in path -
// see builtins.go).
func (a *Analyzer) analyzeCall(c *ast.CallExpr) Element {
	if c.Bang.IsValid() {
		return a.analyzeBuiltinCall(c)
	}
	if p, ok := c.Fn.(*ast.PathExpr); ok && isBuiltinPath(p) {
		return a.analyzeBuiltinCall(c)
	}
	name, pos := callTargetName(c.Fn)
	fs, ok := a.funcs.Get(name)
	if !ok {
		a.errorf(pos, "undefined function %s", name)
		return valueElement(types.Unit{})
	}
	return a.emitCall(fs, c.Args, pos)
}

// callTargetName extracts the plain function name a CallExpr's callee
// names - an IdentExpr directly, or a single-segment PathExpr (zircon has
// no module-qualified ordinary function calls outside the fixed std::
// built-in namespace).
func callTargetName(fn ast.Expr) (string, token.Pos) {
	switch fn := ast.Unwrap(fn).(type) {
	case *ast.IdentExpr:
		return fn.Lit, fn.Start
	case *ast.PathExpr:
		return pathString(fn), fn.Segments[0].Start
	default:
		start, _ := fn.Span()
		return "", start
	}
}

// emitCall type-checks args against fs's signature, materializes each in
// order, then emits Call(addr, input_size). addr is written as fs's
// uniqueID and back-patched to a real instruction address by
// bytecode.Builder.PatchCalls once every function has been compiled
// (Builder.StartFunction/StartMainFunction register that mapping).
func (a *Analyzer) emitCall(fs *funcSig, args []ast.Expr, pos token.Pos) Element {
	if len(args) != len(fs.sig.Params) {
		a.errorf(pos, "function %s expects %d arguments, got %d", fs.name, len(fs.sig.Params), len(args))
	}
	inputSize := 0
	n := len(args)
	if len(fs.sig.Params) < n {
		n = len(fs.sig.Params)
	}
	for i := 0; i < n; i++ {
		el := a.analyzeExpr(args[i])
		argPos, _ := args[i].Span()
		el = a.coerceTo(el, fs.sig.Params[i], argPos)
		el = a.toValue(el, argPos)
		inputSize += el.Type.Size()
	}
	a.builder.Push(bytecode.Instruction{Op: bytecode.CALL, Addr: uint32(fs.uniqueID), Size: uint32(inputSize)}, a.file, pos)
	if fs.sig.Ret.Size() == 0 {
		return valueElement(types.Unit{})
	}
	return valueElement(fs.sig.Ret)
}

// analyzeMethodCall lowers `recv.method(args)` to an ordinary call of
// `Type::method` with recv prepended as the first argument (spec §6.2: an
// `impl` block's functions are just plain functions taking the receiver
// explicitly, there is no vtable/dynamic dispatch).
func (a *Analyzer) analyzeMethodCall(m *ast.MethodCallExpr) Element {
	recvEl := a.analyzeExpr(m.Recv)
	recvType := recvEl.Type
	qualified := typeName(recvType) + "::" + m.Method.Lit
	fs, ok := a.funcs.Get(qualified)
	if !ok {
		a.errorf(m.Dot, "type %s has no method %s", recvType, m.Method.Lit)
		return valueElement(types.Unit{})
	}
	recvEl = a.coerceTo(recvEl, fs.sig.Params[0], m.Dot)
	recvEl = a.toValue(recvEl, m.Dot)
	inputSize := recvEl.Type.Size()

	if len(m.Args)+1 != len(fs.sig.Params) {
		a.errorf(m.Dot, "method %s expects %d arguments, got %d", qualified, len(fs.sig.Params)-1, len(m.Args))
	}
	n := len(m.Args)
	if len(fs.sig.Params)-1 < n {
		n = len(fs.sig.Params) - 1
	}
	for i := 0; i < n; i++ {
		el := a.analyzeExpr(m.Args[i])
		argPos, _ := m.Args[i].Span()
		el = a.coerceTo(el, fs.sig.Params[i+1], argPos)
		el = a.toValue(el, argPos)
		inputSize += el.Type.Size()
	}
	a.builder.Push(bytecode.Instruction{Op: bytecode.CALL, Addr: uint32(fs.uniqueID), Size: uint32(inputSize)}, a.file, m.Dot)
	if fs.sig.Ret.Size() == 0 {
		return valueElement(types.Unit{})
	}
	return valueElement(fs.sig.Ret)
}

// typeName returns the name a Structure/Enumeration was declared under, or
// its Kind's String form for a scalar type - used to build the qualified
// `Type::method` key hoistFunc registers impl-block methods under.
func typeName(t types.Type) string {
	switch t := t.(type) {
	case *types.Structure:
		return t.Name
	case *types.Enumeration:
		return t.Name
	default:
		return t.String()
	}
}

// analyzeIf lowers an if/else-if/else chain to nested If/Else/EndIf
// brackets. The reserved-address operand on If/Else is back-patched once
// the matching branch's end address is known (bytecode.Builder.PatchAddr),
// the way the scalar VM actually skips a not-taken branch; PushCondition/
// PopCondition bracket the same span so the R1CS VM can instead take both
// branches and gate their constraints by the condition product (spec
// §4.5).
func (a *Analyzer) analyzeIf(ie *ast.IfExpr) Element {
	cond := a.toValue(a.analyzeExpr(ie.Cond), ie.If)
	if cond.Type.Kind() != types.KindBoolean {
		a.errorf(ie.If, "if condition must be bool, found %s", cond.Type)
	}
	a.builder.Push(bytecode.Instruction{Op: bytecode.PUSHCONDITION}, a.file, ie.If)

	ifIdx := len(a.builder.Instructions)
	a.builder.Push(bytecode.Instruction{Op: bytecode.IF}, a.file, ie.If)

	thenEl := a.analyzeBlock(ie.Then)
	hasValue := thenEl.Type.Size() > 0
	var resultType types.Type = types.Unit{}
	if hasValue {
		thenEl = a.toValue(thenEl, ie.If)
		resultType = thenEl.Type
	}

	if ie.ElseExpr != nil {
		elseIdx := len(a.builder.Instructions)
		a.builder.Push(bytecode.Instruction{Op: bytecode.ELSE}, a.file, ie.Else)
		a.builder.PatchAddr(ifIdx, uint32(len(a.builder.Instructions)))

		var elseEl Element
		switch ee := ie.ElseExpr.(type) {
		case *ast.IfExpr:
			elseEl = a.analyzeIf(ee)
		case *ast.BlockExpr:
			elseEl = a.analyzeBlock(ee.Block)
		default:
			elseEl = a.analyzeExpr(ie.ElseExpr)
		}
		if hasValue {
			elseEl = a.toValue(elseEl, ie.Else)
			if !types.Equal(elseEl.Type, resultType) {
				a.errorf(ie.Else, "if/else branches have different types: %s and %s", resultType, elseEl.Type)
			}
		}
		a.builder.PatchAddr(elseIdx, uint32(len(a.builder.Instructions)))
	} else {
		if hasValue {
			a.errorf(ie.If, "if expression without else must have unit type, found %s", resultType)
		}
		a.builder.PatchAddr(ifIdx, uint32(len(a.builder.Instructions)))
	}

	a.builder.Push(bytecode.Instruction{Op: bytecode.ENDIF}, a.file, ie.If)
	a.builder.Push(bytecode.Instruction{Op: bytecode.POPCONDITION}, a.file, ie.If)

	if hasValue {
		return valueElement(resultType)
	}
	return valueElement(types.Unit{})
}

// emitStoreTemp/loadTemp give a scrutinee a fixed address so a match can
// test it against each arm's pattern without re-evaluating (and
// potentially re-calling into, re-asserting in) the scrutinee expression.
func (a *Analyzer) emitStoreTemp(addr int, t types.Type, pos token.Pos) {
	size := t.Size()
	for i := size - 1; i >= 0; i-- {
		a.builder.Push(bytecode.Instruction{Op: bytecode.STORE, Addr: uint32(addr + i)}, a.file, pos)
	}
}

func (a *Analyzer) loadTemp(addr int, t types.Type, pos token.Pos) {
	size := t.Size()
	for i := 0; i < size; i++ {
		a.builder.Push(bytecode.Instruction{Op: bytecode.LOAD, Addr: uint32(addr + i)}, a.file, pos)
	}
}

// analyzeMatch lowers `match scrutinee { arms }` to a cascading if/else
// chain over a materialized copy of the scrutinee (spec §4.4: "a chain of
// equality tests guarded by push/pop condition"). Exhaustiveness is
// checked structurally for Boolean and Enumeration scrutinees; every other
// scrutinee type requires a trailing wildcard/binding arm.
func (a *Analyzer) analyzeMatch(m *ast.MatchExpr) Element {
	scrutinee := a.toValue(a.analyzeExpr(m.Scrutinee), m.Match)
	if !a.isMatchExhaustive(m, scrutinee.Type) {
		a.errorf(m.Match, "match is not exhaustive: add a trailing wildcard arm")
	}
	tempAddr := a.builder.DeclareVariable("", scrutinee.Type)
	a.emitStoreTemp(tempAddr, scrutinee.Type, m.Match)
	return a.analyzeMatchArms(m.Arms, 0, tempAddr, scrutinee.Type, m.Match)
}

func (a *Analyzer) isMatchExhaustive(m *ast.MatchExpr, scrutType types.Type) bool {
	if len(m.Arms) == 0 {
		return false
	}
	last := m.Arms[len(m.Arms)-1]
	if last.Guard == nil {
		switch last.Pat.(type) {
		case *ast.WildcardPattern, *ast.IdentExpr:
			return true
		}
	}
	switch st := scrutType.(type) {
	case types.Boolean:
		seen := map[bool]bool{}
		for _, arm := range m.Arms {
			if arm.Guard != nil {
				continue
			}
			if bp, ok := arm.Pat.(*ast.BoolLiteralExpr); ok {
				seen[bp.Value] = true
			}
		}
		return seen[true] && seen[false]
	case *types.Enumeration:
		seen := map[string]bool{}
		for _, arm := range m.Arms {
			if arm.Guard != nil {
				continue
			}
			if pp, ok := arm.Pat.(*ast.PathExpr); ok && len(pp.Segments) == 2 {
				seen[pp.Segments[1].Lit] = true
			}
		}
		for _, v := range st.Variants {
			if !seen[v.Name] {
				return false
			}
		}
		return true
	}
	return false
}

// emitPatternTest emits bytecode testing tempAddr's current value against
// pat, leaving a bool on the stack, and reports whether pat always matches
// (a Wildcard or binding identifier - in which case nothing is emitted and
// bindName names the binding to establish). Only the pattern shapes a
// zircon match can scrutinize are handled: literals, enum-variant paths,
// integer ranges, wildcard and plain bindings - zircon has no nested
// struct/tuple destructuring in match arms (spec §4.4's pattern grammar).
func (a *Analyzer) emitPatternTest(pat ast.Pattern, scrutType types.Type, tempAddr int, pos token.Pos) (unconditional bool, bindName string) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true, ""
	case *ast.IdentExpr:
		return true, p.Lit
	case *ast.PathExpr:
		el, ok := a.foldPathConst(p)
		if !ok {
			a.errorf(pos, "match pattern %s is not a compile-time constant", pathString(p))
			return true, ""
		}
		a.loadTemp(tempAddr, scrutType, pos)
		a.emitConstValue(a.coerceConstTo(el, scrutType, pos), pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.EQ}, a.file, pos)
		return false, ""
	case *ast.IntLiteralExpr:
		el := a.coerceConstTo(untypedIntElement(new(big.Int).Set(p.Value)), scrutType, pos)
		a.loadTemp(tempAddr, scrutType, pos)
		a.emitConstValue(el, pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.EQ}, a.file, pos)
		return false, ""
	case *ast.BoolLiteralExpr:
		a.loadTemp(tempAddr, scrutType, pos)
		a.emitConstValue(constBoolElement(p.Value), pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.EQ}, a.file, pos)
		return false, ""
	case *ast.RangeExpr:
		lowEl, lok := a.foldConstExpr(p.Low)
		highEl, hok := a.foldConstExpr(p.High)
		if !lok || !hok {
			a.errorf(pos, "range pattern bounds must be compile-time constants")
			return true, ""
		}
		lowEl = a.coerceConstTo(lowEl, scrutType, pos)
		highEl = a.coerceConstTo(highEl, scrutType, pos)
		a.loadTemp(tempAddr, scrutType, pos)
		a.emitConstValue(lowEl, pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.GE}, a.file, pos)
		a.loadTemp(tempAddr, scrutType, pos)
		a.emitConstValue(highEl, pos)
		if p.Inclusive {
			a.builder.Push(bytecode.Instruction{Op: bytecode.LE}, a.file, pos)
		} else {
			a.builder.Push(bytecode.Instruction{Op: bytecode.LT}, a.file, pos)
		}
		a.builder.Push(bytecode.Instruction{Op: bytecode.AND}, a.file, pos)
		return false, ""
	default:
		a.errorf(pos, "unsupported match pattern")
		return true, ""
	}
}

// analyzeMatchArms recursively lowers arms[idx:] to a single If/Else
// bracket per conditional arm, with the next arm analyzed inside the
// Else branch - an unconditional arm (wildcard/binding with no guard)
// terminates the recursion without emitting a bracket of its own.
func (a *Analyzer) analyzeMatchArms(arms []*ast.MatchArm, idx int, tempAddr int, scrutType types.Type, pos token.Pos) Element {
	if idx >= len(arms) {
		a.errorf(pos, "match is not exhaustive")
		return valueElement(types.Unit{})
	}
	arm := arms[idx]
	a.scope.push()
	unconditional, bindName := a.emitPatternTest(arm.Pat, scrutType, tempAddr, pos)
	if bindName != "" {
		addr := a.builder.DeclareVariable(bindName, scrutType)
		a.loadTemp(tempAddr, scrutType, pos)
		a.emitStoreTemp(addr, scrutType, pos)
		a.scope.declare(&Binding{Name: bindName, Type: scrutType, Address: addr, Decl: arm.Pat})
	}

	if arm.Guard != nil {
		guard := a.toValue(a.analyzeExpr(arm.Guard), arm.If)
		if guard.Type.Kind() != types.KindBoolean {
			a.errorf(arm.If, "match guard must be bool, found %s", guard.Type)
		}
		if !unconditional {
			a.builder.Push(bytecode.Instruction{Op: bytecode.AND}, a.file, arm.If)
		}
		unconditional = false
	}

	if unconditional {
		body := a.analyzeExpr(arm.Body)
		a.scope.pop()
		return body
	}

	a.builder.Push(bytecode.Instruction{Op: bytecode.PUSHCONDITION}, a.file, arm.If)
	ifIdx := len(a.builder.Instructions)
	a.builder.Push(bytecode.Instruction{Op: bytecode.IF}, a.file, arm.If)
	thenEl := a.analyzeExpr(arm.Body)
	hasValue := thenEl.Type.Size() > 0
	if hasValue {
		thenEl = a.toValue(thenEl, arm.If)
	}
	a.scope.pop()

	elseIdx := len(a.builder.Instructions)
	a.builder.Push(bytecode.Instruction{Op: bytecode.ELSE}, a.file, arm.If)
	a.builder.PatchAddr(ifIdx, uint32(len(a.builder.Instructions)))

	elseEl := a.analyzeMatchArms(arms, idx+1, tempAddr, scrutType, pos)
	if hasValue {
		elseEl = a.toValue(elseEl, arm.If)
		if !types.Equal(elseEl.Type, thenEl.Type) {
			a.errorf(arm.If, "match arms have different types: %s and %s", thenEl.Type, elseEl.Type)
		}
	}
	a.builder.PatchAddr(elseIdx, uint32(len(a.builder.Instructions)))
	a.builder.Push(bytecode.Instruction{Op: bytecode.ENDIF}, a.file, arm.If)
	a.builder.Push(bytecode.Instruction{Op: bytecode.POPCONDITION}, a.file, arm.If)

	if hasValue {
		return valueElement(thenEl.Type)
	}
	return valueElement(types.Unit{})
}
