package authharness

import "context"

// Variant is a blockchain account scheme the harness can exercise.
// Implementations own their address format and argument checks and delegate
// fingerprint derivation, encoding and engine invocation to the shared packages.
type Variant interface {
	// Name returns the variant identifier used on the command line (e.g., "solana").
	Name() string

	// Algorithm returns the auth algorithm id the variant's units are tagged with.
	Algorithm() Algorithm

	// Parse derives the fingerprint of an address.
	Parse(ctx context.Context, address string) (Fingerprint, error)

	// Generate returns the signing target for an address or explicit fingerprint,
	// rendered in the requested encoding.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Verify checks a signature against the fingerprint of req.Address.
	// A nil return means verification succeeded.
	Verify(ctx context.Context, req VerifyRequest) error
}

// Signer produces test vectors for a variant from a locally held key.
type Signer interface {
	// Address returns the chain-native address of the key.
	Address() string

	// SignTarget signs a raw signing target and returns the inputs Verify expects.
	SignTarget(target []byte) (*VerifyRequest, error)
}
