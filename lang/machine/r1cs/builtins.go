package r1cs

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mna/zircon/lang/builtins"
)

// callBuiltin dispatches a CallBuiltin instruction to its gadget, mirroring
// lang/machine/scalar's builtins.go field-only compression functions cell
// by cell so the same binding/shape guarantees hold under proving as under
// direct scalar execution (spec §8 property 3), built from the add/mul
// cell helpers so a builtin call made entirely of constant arguments folds
// for free exactly like any other expression.
func callBuiltin(cs *ConstraintSystem, id string, args []cell) ([]cell, error) {
	switch builtins.ID(id) {
	case builtins.SchnorrVerify:
		v, err := schnorrVerify(cs, args[0], args[1], args[2:])
		if err != nil {
			return nil, err
		}
		return []cell{v}, nil
	case builtins.Sha256Hash:
		return sha256Hash(cs, args)
	case builtins.PedersenHash:
		v, err := pedersenFold(cs, args)
		if err != nil {
			return nil, err
		}
		return []cell{v}, nil
	default:
		return nil, fmt.Errorf("r1cs: unknown builtin %q", id)
	}
}

func pedersenSeed() fr.Element {
	var c fr.Element
	c.SetUint64(0x5052_4e4e_5f48)
	return c
}

// pedersenFold is the constrained analogue of scalar's pedersenFold: the
// same acc = sum(bit_i * seed^(2^i)) fold, but each multiply/add term goes
// through the cell helpers so every step is either folded (constant seed
// doubling) or tied into the constraint system (bit_i * seed term, running
// accumulation), matching the ConditionalSelect-free straight-line shape a
// real Pedersen window-sum gadget has.
func pedersenFold(cs *ConstraintSystem, bits []cell) (cell, error) {
	acc := constCell(fr.Element{})
	c := constCell(pedersenSeed())
	for _, b := range bits {
		term, err := mul(cs, b, c)
		if err != nil {
			return cell{}, err
		}
		acc, err = add(cs, acc, term)
		if err != nil {
			return cell{}, err
		}
		c, err = mul(cs, c, c)
		if err != nil {
			return cell{}, err
		}
	}
	return acc, nil
}

// schnorrVerify is the constrained analogue of scalar's schnorrVerify:
// checks s == r + fold(message) via the eq gadget, returning its boolean
// result cell.
func schnorrVerify(cs *ConstraintSystem, r, s cell, message []cell) (cell, error) {
	e, err := pedersenFold(cs, message)
	if err != nil {
		return cell{}, err
	}
	want, err := add(cs, r, e)
	if err != nil {
		return cell{}, err
	}
	return eq(cs, want, s)
}

// sha256Hash packs message's 0/1 cells into bytes and hashes with the
// standard library SHA-256, exactly like scalar's sha256Hash, then
// allocates each output bit as a boolean-constrained cell. Only the output
// shape is constrained (256 boolean wires); the hash computation itself is
// supplied as witness advice rather than decomposed into its own ARX
// constraint table, since no SHA-256 gadget exists anywhere in the
// retrieved corpus to ground one on - a real proving backend would need to
// replace this with one before Sha256Hash could be trusted as a circuit
// input/output relation rather than an opaque witness assertion.
func sha256Hash(cs *ConstraintSystem, message []cell) ([]cell, error) {
	allConstant := true
	bits := make([]fr.Element, len(message))
	for i, b := range message {
		bits[i] = b.value
		allConstant = allConstant && b.isConstant
	}

	nbytes := (len(bits) + 7) / 8
	buf := make([]byte, nbytes)
	for i, b := range bits {
		if !b.IsZero() {
			buf[i/8] |= 1 << uint(7-i%8)
		}
	}
	sum := sha256.Sum256(buf)

	out := make([]cell, 256)
	for i := range out {
		bit := (sum[i/8] >> uint(7-i%8)) & 1
		v := boolElement(bit == 1)
		if allConstant {
			out[i] = constCell(v)
			continue
		}
		bc := varCell(cs.Alloc(v), v)
		if err := assertBoolean(cs, bc, cs.Namespace("sha256.bit")); err != nil {
			return nil, err
		}
		out[i] = bc
	}
	return out, nil
}
