package builtins

import (
	"fmt"

	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/types"
)

// checkPedersenHash bounds std::crypto::pedersen::hash's input the same
// way checkSchnorrVerify bounds Schnorr's message: the gadget's generator
// table is fixed-size, so the compiler must reject inputs it cannot commit
// to statically.
func checkPedersenHash(args []types.Type, limits config.Limits) (types.Type, error) {
	const path = "std::crypto::pedersen::hash"
	if len(args) != 1 {
		return nil, argCountError(path, 1, len(args))
	}
	arr, ok := args[0].(*types.Array)
	if !ok || arr.Elem.Kind() != types.KindBoolean {
		return nil, fmt.Errorf("%s: argument 0 must be an array of bool, found %s", path, args[0])
	}
	if arr.Size_ <= 0 || arr.Size_ > limits.PedersenLimitBits {
		return nil, fmt.Errorf("%s: input length %d is out of range (0, %d]", path, arr.Size_, limits.PedersenLimitBits)
	}
	return types.Field{}, nil
}

func init() {
	register(Descriptor{
		ID:    PedersenHash,
		Path:  "std::crypto::pedersen::hash",
		Check: checkPedersenHash,
	})
}
