package semantic

import (
	"strings"

	"github.com/mna/zircon/lang/ast"
	"github.com/mna/zircon/lang/builtins"
	"github.com/mna/zircon/lang/bytecode"
	"github.com/mna/zircon/lang/token"
	"github.com/mna/zircon/lang/types"
)

// isBuiltinPath reports whether p names something in the fixed std::
// built-in namespace (spec §7) rather than a user-declared function -
// the only namespace zircon's closed grammar reserves for the analyzer
// itself, rather than for names the program declares.
func isBuiltinPath(p *ast.PathExpr) bool {
	return len(p.Segments) > 0 && p.Segments[0].Lit == "std"
}

// macroNames are the Bang-style calls (`name!(args)`) the parser accepts
// anywhere a CallExpr with Bang set is found (spec §4.4/§7).
const (
	macroAssert  = "assert"
	macroRequire = "require"
	macroDbg     = "dbg"
)

// analyzeBuiltinCall dispatches a CallExpr that is either a `name!(args)`
// macro or a call through the std:: namespace (lang/builtins' registry).
func (a *Analyzer) analyzeBuiltinCall(c *ast.CallExpr) Element {
	if c.Bang.IsValid() {
		name, pos := callTargetName(c.Fn)
		switch name {
		case macroAssert, macroRequire:
			return a.analyzeAssertLike(name, c, pos)
		case macroDbg:
			return a.analyzeDbg(c, pos)
		default:
			a.errorf(pos, "undefined built-in macro %s!", name)
			return valueElement(types.Unit{})
		}
	}

	p, ok := c.Fn.(*ast.PathExpr)
	if !ok {
		start, _ := c.Fn.Span()
		a.errorf(start, "built-in call target must be a path")
		return valueElement(types.Unit{})
	}
	path := pathString(p)
	desc, ok := builtins.Lookup(path)
	if !ok {
		a.errorf(p.Segments[0].Start, "undefined built-in %s", path)
		return valueElement(types.Unit{})
	}

	pos := p.Segments[0].Start
	argEls := make([]Element, len(c.Args))
	argTypes := make([]types.Type, len(c.Args))
	for i, argExpr := range c.Args {
		el := a.toValue(a.analyzeExpr(argExpr), pos)
		argEls[i] = el
		argTypes[i] = el.Type
	}
	retType, err := desc.Check(argTypes, a.limits)
	if err != nil {
		a.errorf(pos, "%s", err.Error())
		return valueElement(types.Unit{})
	}

	inCount := 0
	for i, el := range argEls {
		argPos, _ := c.Args[i].Span()
		a.toValue(el, argPos)
		inCount += el.Type.Size()
	}
	a.builder.Push(bytecode.Instruction{
		Op:        bytecode.CALLBUILTIN,
		BuiltinID: string(desc.ID),
		InCount:   uint32(inCount),
	}, a.file, pos)

	if retType == nil || retType.Size() == 0 {
		return valueElement(types.Unit{})
	}
	return valueElement(retType)
}

// analyzeAssertLike lowers `assert!(cond[, msg])`/`require!(cond[, msg])`
// to AssertConstraint: both macros check the same boolean condition, the
// optional trailing string is a diagnostic-only message never reaching
// bytecode (spec §4.4: "assert!(cond) emits AssertConstraint").
func (a *Analyzer) analyzeAssertLike(name string, c *ast.CallExpr, pos token.Pos) Element {
	if len(c.Args) == 0 || len(c.Args) > 2 {
		a.errorf(pos, "%s! expects 1 or 2 arguments", name)
		return valueElement(types.Unit{})
	}
	cond := a.toValue(a.analyzeExpr(c.Args[0]), pos)
	if cond.Type.Kind() != types.KindBoolean {
		a.errorf(pos, "%s! condition must be bool, found %s", name, cond.Type)
	}
	if len(c.Args) == 2 {
		if _, ok := a.foldConstExpr(c.Args[1]); !ok {
			if _, isStr := c.Args[1].(*ast.StringLiteralExpr); !isStr {
				a.errorf(pos, "%s! message must be a string literal", name)
			}
		}
	}
	a.builder.Push(bytecode.Instruction{Op: bytecode.ASSERTCONSTRAINT}, a.file, pos)
	return valueElement(types.Unit{})
}

// analyzeDbg validates `dbg!("format", args...)` without emitting any
// bytecode: debug tracing has no constraint-system meaning (spec's scope
// excludes tooling/observability integration), so it compiles to nothing.
func (a *Analyzer) analyzeDbg(c *ast.CallExpr, pos token.Pos) Element {
	if len(c.Args) == 0 {
		a.errorf(pos, "dbg! expects at least a format string argument")
		return valueElement(types.Unit{})
	}
	if _, ok := c.Args[0].(*ast.StringLiteralExpr); !ok {
		a.errorf(pos, "dbg! first argument must be a string literal")
	}
	for _, argExpr := range c.Args[1:] {
		a.toValue(a.analyzeExpr(argExpr), pos)
	}
	return valueElement(types.Unit{})
}

// registerBuiltinPrelude seeds the names the std:: namespace makes
// available as ordinary types (e.g. the Signature struct that
// std::crypto::schnorr::Signature::verify's first argument is checked
// against), so `Signature { r: ..., s: ... }` literals and
// Signature-typed parameters type-check the same way a user struct would.
func (a *Analyzer) registerBuiltinPrelude() {
	sig := builtins.SchnorrSignatureType()
	a.namedTypes.Put(sig.Name, sig)
	a.namedTypes.Put(lastSegment(sig.Name), sig)
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}
