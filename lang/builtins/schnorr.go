package builtins

import (
	"fmt"

	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/types"
)

var schnorrSignatureType = types.NewStructure(types.NextUniqueID(), "std::crypto::schnorr::Signature", []types.StructField{
	{Name: "r", Type: types.Field{}},
	{Name: "s", Type: types.Field{}},
})

// SchnorrSignatureType returns the std::crypto::schnorr::Signature
// structure type, registered into every Analyzer's prelude namespace
// (lang/semantic/builtins.go) so `Signature { r: ..., s: ... }` literals
// and Signature-typed parameters type-check.
func SchnorrSignatureType() *types.Structure { return schnorrSignatureType }

func checkSchnorrVerify(args []types.Type, limits config.Limits) (types.Type, error) {
	const path = "std::crypto::schnorr::Signature::verify"
	if len(args) != 2 {
		return nil, argCountError(path, 2, len(args))
	}
	sig, ok := args[0].(*types.Structure)
	if !ok || sig.UniqueID != schnorrSignatureType.UniqueID {
		return nil, fmt.Errorf("%s: argument 0 must be %s, found %s", path, schnorrSignatureType, args[0])
	}
	arr, ok := args[1].(*types.Array)
	if !ok || arr.Elem.Kind() != types.KindBoolean {
		return nil, fmt.Errorf("%s: argument 1 must be an array of bool, found %s", path, args[1])
	}
	if arr.Size_ <= 0 || arr.Size_ > limits.LimitSchnorrMessageBits {
		return nil, fmt.Errorf("%s: message length %d is out of range (0, %d]", path, arr.Size_, limits.LimitSchnorrMessageBits)
	}
	if arr.Size_%8 != 0 {
		return nil, fmt.Errorf("%s: message length %d is not a multiple of 8", path, arr.Size_)
	}
	return types.Boolean{}, nil
}

func init() {
	register(Descriptor{
		ID:    SchnorrVerify,
		Path:  "std::crypto::schnorr::Signature::verify",
		Check: checkSchnorrVerify,
	})
}
