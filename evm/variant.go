// Package evm implements the Ethereum blockchain variant and a local Ethereum test signer.
package evm

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/harness"
	"github.com/mark3labs/auth-harness/validation"
)

// Name is the command-line name of the Ethereum variant.
const Name = "ethereum"

// Variant implements authharness.Variant for Ethereum.
//
// The fingerprint of an address is the address itself. A signature is a
// 65-byte hex string (r ‖ s ‖ v) over the EIP-191 personal message hash of
// the signing target.
type Variant struct {
	harness *harness.Harness
}

// NewVariant creates the Ethereum variant on top of h.
func NewVariant(h *harness.Harness) *Variant {
	return &Variant{harness: h}
}

// Name implements authharness.Variant.
func (v *Variant) Name() string {
	return Name
}

// Algorithm implements authharness.Variant.
func (v *Variant) Algorithm() authharness.Algorithm {
	return authharness.AlgorithmEthereum
}

// Parse implements authharness.Variant.
func (v *Variant) Parse(_ context.Context, address string) (authharness.Fingerprint, error) {
	return ParseAddress(address)
}

// ParseAddress returns the fingerprint of a 0x-prefixed Ethereum address.
func ParseAddress(address string) (authharness.Fingerprint, error) {
	if err := validation.ValidateEVMAddress(address); err != nil {
		return authharness.Fingerprint{}, authharness.InvalidAddress(address, err)
	}
	return authharness.Fingerprint(common.HexToAddress(address)), nil
}

// Generate implements authharness.Variant.
func (v *Variant) Generate(ctx context.Context, req authharness.GenerateRequest) (string, error) {
	fp, err := harness.ResolveFingerprint(strings.TrimPrefix(req.Fingerprint, "0x"), req.Address, ParseAddress)
	if err != nil {
		return "", err
	}
	return v.harness.Generate(ctx, fp, v.Algorithm(), req.Encoding)
}

// Verify implements authharness.Variant.
//
// req.Message is optional. When set it must be the hex signing target of the
// address, so a caller can confirm which message was signed.
func (v *Variant) Verify(ctx context.Context, req authharness.VerifyRequest) error {
	resolve := func() (authharness.Fingerprint, error) {
		fp, err := ParseAddress(req.Address)
		if err != nil {
			return fp, err
		}
		if req.Message == "" {
			return fp, nil
		}
		return fp, v.checkMessage(ctx, fp, req.Message)
	}

	_, err := v.harness.Verify(ctx, v.Algorithm(), resolve,
		harness.Part{Text: strings.TrimPrefix(req.Signature, "0x"), Kind: encoding.Hex},
	)
	return err
}

func (v *Variant) checkMessage(ctx context.Context, fp authharness.Fingerprint, message string) error {
	got, err := encoding.Decode(strings.TrimPrefix(message, "0x"), encoding.Hex)
	if err != nil {
		return err
	}
	want, err := v.harness.Message(ctx, fp, v.Algorithm())
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return authharness.NewError(authharness.ErrCodeMalformedPayload,
			"message is not the signing target of the address", authharness.ErrMalformedPayload).
			WithDetails("expected", hex.EncodeToString(want))
	}
	return nil
}
