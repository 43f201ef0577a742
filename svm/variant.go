// Package svm implements the Solana blockchain variant and a local Solana test signer.
package svm

import (
	"context"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/fingerprint"
	"github.com/mark3labs/auth-harness/harness"
)

// Name is the command-line name of the Solana variant.
const Name = "solana"

// Variant implements authharness.Variant for Solana.
//
// Addresses are base58 ed25519 public keys. A signature is submitted as
// signature (base58) ‖ address (base58) ‖ message (base64), where message is
// the serialized transaction message the signature covers.
type Variant struct {
	harness *harness.Harness
}

// NewVariant creates the Solana variant on top of h.
func NewVariant(h *harness.Harness) *Variant {
	return &Variant{harness: h}
}

// Name implements authharness.Variant.
func (v *Variant) Name() string {
	return Name
}

// Algorithm implements authharness.Variant.
func (v *Variant) Algorithm() authharness.Algorithm {
	return authharness.AlgorithmSolana
}

// Parse implements authharness.Variant.
func (v *Variant) Parse(_ context.Context, address string) (authharness.Fingerprint, error) {
	return fingerprint.Derive(address)
}

// Generate implements authharness.Variant.
func (v *Variant) Generate(ctx context.Context, req authharness.GenerateRequest) (string, error) {
	fp, err := harness.ResolveFingerprint(req.Fingerprint, req.Address, fingerprint.Derive)
	if err != nil {
		return "", err
	}
	return v.harness.Generate(ctx, fp, v.Algorithm(), req.Encoding)
}

// Verify implements authharness.Variant.
func (v *Variant) Verify(ctx context.Context, req authharness.VerifyRequest) error {
	resolve := func() (authharness.Fingerprint, error) {
		return fingerprint.Derive(req.Address)
	}
	_, err := v.harness.Verify(ctx, v.Algorithm(), resolve,
		harness.Part{Text: req.Signature, Kind: encoding.Base58},
		harness.Part{Text: req.Address, Kind: encoding.Base58},
		harness.Part{Text: req.Message, Kind: encoding.Base64},
	)
	return err
}
