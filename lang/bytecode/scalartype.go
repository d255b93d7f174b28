package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/zircon/lang/types"
)

// parseScalarType parses the handful of type spellings the pseudo-assembly
// and JSON-template formats need to name: scalar types only. The asm format
// exists to drive the VM directly in tests without going through the parser
// and semantic analyzer, so it never needs to spell an aggregate's full
// field layout — only main's flat input list and its output type, both of
// which are scalars in every hand-written test program.
func parseScalarType(s string) (types.Type, error) {
	switch {
	case s == "bool":
		return types.Boolean{}, nil
	case s == "field":
		return types.Field{}, nil
	case s == "()" || s == "unit":
		return types.Unit{}, nil
	case strings.HasPrefix(s, "u"):
		bits, err := strconv.Atoi(s[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer type: %s", s)
		}
		return types.IntegerUnsigned{Bits: bits}, nil
	case strings.HasPrefix(s, "i"):
		bits, err := strconv.Atoi(s[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid signed integer type: %s", s)
		}
		return types.IntegerSigned{Bits: bits}, nil
	default:
		return nil, fmt.Errorf("unsupported scalar type spelling: %s", s)
	}
}
