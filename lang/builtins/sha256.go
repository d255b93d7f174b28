package builtins

import (
	"fmt"

	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/types"
)

// Sha256OutputBits is the fixed digest width std::crypto::sha256::hash
// returns, regardless of input length - matching the gadget's own fixed
// output size (spec §1: "the Pedersen/SHA-256/Schnorr gadget
// implementations ... the core only orchestrates their invocation").
const Sha256OutputBits = 256

func checkSha256Hash(args []types.Type, _ config.Limits) (types.Type, error) {
	const path = "std::crypto::sha256::hash"
	if len(args) != 1 {
		return nil, argCountError(path, 1, len(args))
	}
	arr, ok := args[0].(*types.Array)
	if !ok || arr.Elem.Kind() != types.KindBoolean {
		return nil, fmt.Errorf("%s: argument 0 must be an array of bool, found %s", path, args[0])
	}
	if arr.Size_ <= 0 || arr.Size_%8 != 0 {
		return nil, fmt.Errorf("%s: input length %d is not a positive multiple of 8", path, arr.Size_)
	}
	return types.NewArray(types.Boolean{}, Sha256OutputBits), nil
}

func init() {
	register(Descriptor{
		ID:    Sha256Hash,
		Path:  "std::crypto::sha256::hash",
		Check: checkSha256Hash,
	})
}
