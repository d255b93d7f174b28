// Package builtins describes zircon's standard-library surface: the fixed
// set of `std::...` paths the semantic analyzer resolves to a
// CallBuiltin(id, in_count) instruction instead of an ordinary Call, along
// with the static argument-shape checks each one requires (spec §7).
// Grounded on original_source/zinc-vm/src/instructions/call_builtin.rs's
// `BuiltinIdentifier` + input-count instruction shape, and on
// original_source/zinc-compiler/src/semantic/element/type/function/stdlib/
// crypto_schnorr_signature_verify.rs for the argument-shape contract.
package builtins

import (
	"fmt"

	"github.com/mna/zircon/lang/config"
	"github.com/mna/zircon/lang/types"
)

// ID names one built-in function, written verbatim into
// bytecode.Instruction.BuiltinID.
type ID string

const (
	SchnorrVerify ID = "SchnorrVerify"
	Sha256Hash    ID = "Sha256Hash"
	PedersenHash  ID = "PedersenHash"
)

// Descriptor describes one built-in's call-site contract: the exact path
// it is invoked through, and a Check function validating the analyzed
// argument types and computing the call's static return type.
type Descriptor struct {
	ID   ID
	Path string

	// Check validates args (already resolved to types.Type) against the
	// compilation's configured Limits and returns the call's result type,
	// or an error naming the first mismatched argument.
	Check func(args []types.Type, limits config.Limits) (types.Type, error)
}

var registry = map[string]Descriptor{}

func register(d Descriptor) { registry[d.Path] = d }

// Lookup returns the Descriptor registered for path (the full `a::b::c`
// form of the call target), or false if path does not name a built-in.
func Lookup(path string) (Descriptor, bool) {
	d, ok := registry[path]
	return d, ok
}

// argCountError formats the common "expected N arguments, got M" shape
// every built-in's Check function reports on arity mismatch.
func argCountError(path string, want, got int) error {
	return fmt.Errorf("%s expects %d arguments, got %d", path, want, got)
}
