package semantic

import (
	"fmt"

	"github.com/mna/zircon/lang/scanner"
	"github.com/mna/zircon/lang/token"
)

// errorf records a diagnostic at pos, in the same scanner.ErrorList style
// the teacher's lang/parser and lang/resolver both use, so a caller driving
// tokenize/parse/analyze through the same CLI pipeline sees one consistent
// error shape regardless of which stage failed.
func (a *Analyzer) errorf(pos token.Pos, format string, args ...any) {
	p := token.Position{Line: -1}
	if a.file != nil {
		p = a.file.Position(pos)
	}
	a.errors.Add(p, fmt.Sprintf(format, args...))
}

// Diagnostic names for the integer-overflow and division-by-zero families
// the constant folder reports (spec §4.4/§8 property 1). Kept as plain
// format strings rather than an error type sum: every other diagnostic in
// this package (undeclared name, type mismatch, non-exhaustive match, ...)
// is also just a formatted scanner.ErrorList entry, and a machine-readable
// error sum brings nothing an IDE/CLI consumer can use here (spec's own
// out-of-scope list excludes tooling integration).
const (
	diagIntegerTooLarge       = "integer literal %s does not fit any integer type"
	diagOverflowAddition      = "addition overflows %s"
	diagOverflowSubtraction   = "subtraction overflows %s"
	diagOverflowMultiplication = "multiplication overflows %s"
	diagOverflowDivision      = "division overflows %s"
	diagOverflowNegation      = "negation overflows %s"
	diagOverflowCasting       = "value does not fit in %s"
	diagZeroDivision          = "division by zero"
	diagZeroRemainder         = "remainder by zero"
)
