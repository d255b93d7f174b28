// Package r1cs declares the proving-backend boundary the rest of zircon
// builds up to but does not implement: pairing-based setup, proving and
// verification over the constraint system lang/machine/r1cs.ConstraintSystem
// produces (spec §2 "VM (R1CS)", §4.7). The distilled spec frames "the
// underlying elliptic curve/pairing library" as an external collaborator;
// this package is the seam a real one (gnark's groth16/plonk backends, or
// any other bn254 pairing library) would be wired in behind.
package r1cs

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Constraints is the minimal view a Backend needs of a finished
// lang/machine/r1cs.ConstraintSystem run: the witness assignment (index 0
// is the reserved one-wire) and the A*B=C row list, already namespaced for
// reproducible diagnostics. It is a plain data shape, not an alias to
// lang/machine/r1cs's own types, so this package stays free of an import
// cycle back into the VM that builds it.
type Constraints struct {
	Witness []fr.Element
	Rows    []Row
}

// Row mirrors one lang/machine/r1cs.Constraint: a linear combination is
// just its flattened (coefficient, variable index) pairs.
type Row struct {
	A, B, C []Term
	Label   string
}

// Term is one coeff*variable summand, variable given by its witness index.
type Term struct {
	Coeff fr.Element
	Var   uint32
}

// ProvingKey and VerifyingKey are opaque backend-specific artifacts from
// Setup, passed back into Prove/Verify unexamined by this package.
type ProvingKey interface{}
type VerifyingKey interface{}

// Proof is an opaque backend-specific proof produced by Prove and checked
// by Verify.
type Proof interface{}

// Backend is the pairing-based proving system zircon's R1CS VM hands its
// finished circuit and witness to. No implementation lives in this
// module: every retrieved example repository that reaches for circuit
// arithmetic (gnark-crypto) stops at field/curve primitives and never
// includes a full proving system, so there is nothing in the corpus to
// ground a Setup/Prove/Verify implementation on. A real integration would
// satisfy this interface with gnark's groth16 or plonk package, feeding it
// the same Constraints this package's Row/Term shapes describe.
type Backend interface {
	// Setup derives a (ProvingKey, VerifyingKey) pair from a constraint
	// system's shape. Implementations that need the concrete witness values
	// to also run a trusted setup ceremony may ignore them; c.Witness is
	// still supplied for backends that fold setup and proving together.
	Setup(c Constraints) (ProvingKey, VerifyingKey, error)

	// Prove produces a Proof attesting that c.Witness satisfies every row
	// of c.Rows, under pk.
	Prove(pk ProvingKey, c Constraints) (Proof, error)

	// Verify checks proof against the public subset of witness (by
	// convention, the leading entries after the reserved one-wire) and vk.
	Verify(vk VerifyingKey, publicWitness []fr.Element, proof Proof) (bool, error)
}
