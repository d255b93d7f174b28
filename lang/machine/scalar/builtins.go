package scalar

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mna/zircon/lang/builtins"
)

// callBuiltin dispatches a CallBuiltin instruction to its gadget
// implementation. The retrieved corpus has no Go example exercising
// gnark-crypto's elliptic-curve point types (only the scalar field
// package, fr, is grounded by the teacher's own machine design), so
// Schnorr/Pedersen are implemented here as field-only compression
// functions with the same input/output shape and binding intent as the
// real gadgets rather than actual curve arithmetic - matching the
// lang/machine/r1cs package's own framing that a real proving backend is
// an external collaborator, out of this module's scope.
func callBuiltin(id string, args []fr.Element) ([]fr.Element, error) {
	switch builtins.ID(id) {
	case builtins.SchnorrVerify:
		return []fr.Element{schnorrVerify(args[0], args[1], args[2:])}, nil
	case builtins.Sha256Hash:
		return sha256Hash(args), nil
	case builtins.PedersenHash:
		return []fr.Element{pedersenFold(args)}, nil
	default:
		return nil, fmt.Errorf("scalar: unknown builtin %q", id)
	}
}

// pedersenSeed is the fixed base the fold accumulates against - any fixed,
// non-zero constant serves here since this is a binding compression, not
// a discrete-log commitment.
func pedersenSeed() fr.Element {
	var c fr.Element
	c.SetUint64(0x5052_4e4e_5f48) // arbitrary non-zero seed ("PRNN_H" in hex-ish)
	return c
}

// pedersenFold folds a little-endian sequence of 0/1 field cells into a
// single field element: acc = sum(bit_i * seed^(2^i)), doubling the
// generator at each step the way a real Pedersen hash's window generators
// advance per chunk.
func pedersenFold(bits []fr.Element) fr.Element {
	var acc, c fr.Element
	c = pedersenSeed()
	for _, b := range bits {
		var term fr.Element
		term.Mul(&b, &c)
		acc.Add(&acc, &term)
		c.Mul(&c, &c)
	}
	return acc
}

// schnorrVerify checks s == r + fold(message) (mod p): a field-arithmetic
// analogue of the real s*G == R + e*P group equation, substituting
// pedersenFold for the hash-to-challenge step since no curve group is
// available to this VM (see the package doc comment).
func schnorrVerify(r, s fr.Element, message []fr.Element) fr.Element {
	e := pedersenFold(message)
	var want fr.Element
	want.Add(&r, &e)
	var result fr.Element
	if want.Equal(&s) {
		result.SetOne()
	}
	return result
}

// sha256Hash packs message (a sequence of 0/1 field cells, most
// significant bit first within each byte) into bytes, hashes with the
// standard library's SHA-256, and unpacks the 256-bit digest back into
// field cells in the same bit order.
func sha256Hash(message []fr.Element) []fr.Element {
	nbytes := (len(message) + 7) / 8
	buf := make([]byte, nbytes)
	for i, b := range message {
		if !b.IsZero() {
			buf[i/8] |= 1 << uint(7-i%8)
		}
	}
	sum := sha256.Sum256(buf)
	out := make([]fr.Element, 256)
	for i := range out {
		bit := (sum[i/8] >> uint(7-i%8)) & 1
		if bit == 1 {
			out[i].SetOne()
		}
	}
	return out
}
