// Package bytecode implements the instruction set, program container, wire
// encoding, and pseudo-assembly text form emitted by the semantic analyzer
// and executed by the scalar and R1CS virtual machines (spec §3, §4.5).
package bytecode

import "fmt"

// Opcode identifies one of the ~60 instruction variants in the four
// families named by the spec: data, memory, arithmetic/logical, control.
type Opcode uint8

const (
	// NOOPERATION is opcode 0: it fills the Builder's reserved prologue
	// slots before StartMainFunction patches them. Elided line/column
	// markers are simply not emitted; nothing pads for them.
	NOOPERATION Opcode = iota

	// Data
	PUSHCONST
	POP
	SLICE
	COPY

	// Memory
	LOAD
	STORE
	LOADGLOBAL
	STOREGLOBAL
	LOADBYINDEX
	STOREBYINDEX

	// Arithmetic / logical (order matches token.Token's binary operators
	// where one exists, as the teacher's opcode.go does for its own set)
	ADD
	SUB
	MUL
	DIV
	REM
	NEG
	NOT
	AND
	OR
	XOR
	EQ
	NE
	LT
	LE
	GT
	GE
	CAST

	// Control
	CALL
	RETURN
	EXIT
	LOOPBEGIN
	LOOPEND
	IF
	ELSE
	ENDIF
	PUSHCONDITION
	POPCONDITION
	ASSERTCONSTRAINT
	CALLBUILTIN
	FILEMARKER
	FUNCTIONMARKER
	LINEMARKER
	COLUMNMARKER

	opcodeMax
)

var opcodeNames = [...]string{
	NOOPERATION:       "nooperation",
	PUSHCONST:         "pushconst",
	POP:               "pop",
	SLICE:             "slice",
	COPY:              "copy",
	LOAD:              "load",
	STORE:             "store",
	LOADGLOBAL:        "loadglobal",
	STOREGLOBAL:       "storeglobal",
	LOADBYINDEX:       "loadbyindex",
	STOREBYINDEX:      "storebyindex",
	ADD:               "add",
	SUB:               "sub",
	MUL:               "mul",
	DIV:               "div",
	REM:               "rem",
	NEG:               "neg",
	NOT:               "not",
	AND:               "and",
	OR:                "or",
	XOR:               "xor",
	EQ:                "eq",
	NE:                "ne",
	LT:                "lt",
	LE:                "le",
	GT:                "gt",
	GE:                "ge",
	CAST:              "cast",
	CALL:              "call",
	RETURN:            "return",
	EXIT:              "exit",
	LOOPBEGIN:         "loopbegin",
	LOOPEND:           "loopend",
	IF:                "if",
	ELSE:              "else",
	ENDIF:             "endif",
	PUSHCONDITION:     "pushcondition",
	POPCONDITION:      "popcondition",
	ASSERTCONSTRAINT:  "assertconstraint",
	CALLBUILTIN:       "callbuiltin",
	FILEMARKER:        "filemarker",
	FUNCTIONMARKER:    "functionmarker",
	LINEMARKER:        "linemarker",
	COLUMNMARKER:      "columnmarker",
}

func (op Opcode) String() string {
	if op < opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

// LookupOpcode returns the opcode named by s, used by the pseudo-assembly
// text-form decoder.
func LookupOpcode(s string) (Opcode, bool) {
	op, ok := reverseLookupOpcode[s]
	return op, ok
}
