// Package config collects the compiler limits the distilled spec leaves as
// implementation-defined constants (`BITLENGTH_FIELD`,
// `LIMIT_SCHNORR_MESSAGE_BITS`, the Pedersen input bound) into a single
// struct, read once at CLI startup and threaded explicitly through the
// compiler - no package-level globals, mirroring the teacher's "no
// process-wide state" design (internal/maincmd never keeps state beyond
// one Cmd invocation either).
package config

import "github.com/caarlos0/env/v6"

// Limits holds the implementation-defined bounds of one compilation run.
// Every field can be overridden by a `ZIRCON_`-prefixed environment
// variable (via Load, which parses them with caarlos0/env/v6), or directly
// when constructing a Limits value for tests.
type Limits struct {
	// BitlengthField is the prime field's bitlength (spec §3): BN254's
	// scalar field is just under 2^254.
	BitlengthField int `env:"ZIRCON_BITLENGTH_FIELD" envDefault:"254"`

	// LimitSchnorrMessageBits bounds std::crypto::schnorr::Signature::
	// verify's message-bit-array argument (spec §7/§8).
	LimitSchnorrMessageBits int `env:"ZIRCON_LIMIT_SCHNORR_MESSAGE_BITS" envDefault:"512"`

	// PedersenLimitBits bounds std::crypto::pedersen::hash's input the same
	// way LimitSchnorrMessageBits bounds Schnorr's message.
	PedersenLimitBits int `env:"ZIRCON_PEDERSEN_LIMIT_BITS" envDefault:"512"`
}

// Default returns the distilled spec's implementation-defined values,
// unaffected by the environment.
func Default() Limits {
	return Limits{
		BitlengthField:          254,
		LimitSchnorrMessageBits: 512,
		PedersenLimitBits:       512,
	}
}

// Load returns Default, overridden by any ZIRCON_-prefixed environment
// variables present in the process environment.
func Load() (Limits, error) {
	l := Default()
	if err := env.Parse(&l); err != nil {
		return Limits{}, err
	}
	return l, nil
}
