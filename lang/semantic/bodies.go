package semantic

import (
	"math/big"

	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// scalarPushShape reports the (signed, bits) encoding PushConst/Cast use for
// t. Every member of the type sum that can reach the data stack as a single
// cell is covered: Boolean as an unsigned 1-bit value, Field at the
// compilation's configured field bitlength, integers at their declared
// bitlength, and an Enumeration at its inferred Underlying bitlength
// (spec §4.1/§4.3).
func (a *Analyzer) scalarPushShape(t types.Type) (signed bool, bits int) {
	switch t := t.(type) {
	case types.Boolean:
		return false, 1
	case types.Field:
		return false, a.limits.BitlengthField
	case types.IntegerUnsigned:
		return false, t.Bits
	case types.IntegerSigned:
		return true, t.Bits
	case *types.Enumeration:
		return false, t.Underlying.Bits
	default:
		return false, 0
	}
}

func fileNameOf(f *token.File) string {
	if f == nil {
		return ""
	}
	return f.Name()
}

// emitConstValue pushes el (an ElementConstant) onto the data stack,
// encoded in its NativeType, then emits an explicit Cast if el.Type
// (the coerced, final type) differs from NativeType - see Element.NativeType's
// doc comment for why the cast is never folded into the PushConst itself.
func (a *Analyzer) emitConstValue(el Element, pos token.Pos) {
	native := el.NativeType
	if native == nil {
		native = el.Type
	}
	signed, bits := a.scalarPushShape(native)

	var v *big.Int
	switch {
	case el.IsConstBool:
		v = big.NewInt(0)
		if el.ConstBool {
			v = big.NewInt(1)
		}
	case el.ConstInt != nil:
		v = el.ConstInt
	default:
		v = newBigZero()
	}
	a.builder.PushConst(v, signed, bits, a.file, pos)

	if !types.Equal(native, el.Type) {
		tsigned, tbits := a.scalarPushShape(el.Type)
		a.builder.Push(bytecode.Instruction{Op: bytecode.CAST, Signed: tsigned, Bits: tbits}, a.file, pos)
	}
}

// emitGlobalInit writes the program's global-init prologue: a PushConst/
// [Cast]/StoreGlobal triple for every hoisted static, in declaration order,
// emitted directly into the Builder before any StartFunction/
// StartMainFunction call so the reserved Call/Exit header's target address
// naturally lands just after it (spec §9).
func (a *Analyzer) emitGlobalInit() {
	for _, gv := range a.globalsOrder {
		a.file = gv.file
		a.builder.StartNewFile(fileNameOf(gv.file))
		a.emitConstValue(gv.Init, gv.Pos)
		a.builder.Push(bytecode.Instruction{Op: bytecode.STOREGLOBAL, Addr: uint32(gv.Address)}, a.file, gv.Pos)
	}
}

// analyzeBodies emits the global-init prologue, then every non-main
// function body, then main's - main is compiled last so that
// StartMainFunction's prologue-patching of Instructions[0:2] happens after
// every other function's body (and the global-init prologue) has already
// been appended, matching the instruction layout the spec's worked example
// shows.
func (a *Analyzer) analyzeBodies() {
	a.emitGlobalInit()

	mainSig, hasMain := a.funcs.Get("main")
	for _, fs := range a.funcsOrder {
		if fs.name == "main" {
			continue
		}
		a.analyzeFunc(fs, false)
	}
	if !hasMain {
		a.errorf(token.Pos(0), "program has no main function")
		return
	}
	a.analyzeFunc(mainSig, true)
}

// analyzeFunc compiles one hoisted function's body, binding its parameters
// as local variables before walking the body block, and finally emitting
// Return(output_size).
func (a *Analyzer) analyzeFunc(fs *funcSig, isMain bool) {
	a.curFunc = fs
	a.file = fs.file
	a.builder.StartNewFile(fileNameOf(fs.file))

	if isMain {
		fields := make([]types.StructField, len(fs.sig.Params))
		for i, p := range fs.sig.Params {
			fields[i] = types.StructField{Name: fs.paramNames[i], Type: p}
		}
		inputType := types.NewStructure(types.NextUniqueID(), "main.Input", fields)
		a.builder.StartMainFunction(fs.uniqueID, inputType, fs.sig.Ret)
	} else {
		a.builder.StartFunction(fs.uniqueID, fs.name)
	}

	a.scope.push()
	for i, name := range fs.paramNames {
		t := fs.sig.Params[i]
		addr := a.builder.DeclareVariable(name, t)
		a.scope.declare(&Binding{Name: name, Type: t, Mutable: false, Address: addr, Decl: fs.decl.Params[i]})
	}

	result := a.analyzeBlock(fs.decl.Body)
	bodyPos, _ := fs.decl.Body.Span()
	if !types.Equal(result.Type, fs.sig.Ret) {
		a.errorf(bodyPos, "function %s: body has type %s, declared return type is %s", fs.name, result.Type, fs.sig.Ret)
	}
	if fs.sig.Ret.Size() > 0 {
		result = a.toValue(result, bodyPos)
	}
	a.builder.Push(bytecode.Instruction{Op: bytecode.RETURN, Size: uint32(fs.sig.Ret.Size())}, a.file, bodyPos)
	a.scope.pop()
}
