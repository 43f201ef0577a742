package evm

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	authharness "github.com/mark3labs/auth-harness"
)

// Signer produces Ethereum test vectors from a local key.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// SignerOption configures a Signer.
type SignerOption func(*Signer) error

// NewSigner creates a new Ethereum signer with the given options.
func NewSigner(opts ...SignerOption) (*Signer, error) {
	s := &Signer{}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.privateKey == nil {
		return nil, authharness.InvalidKey("options", errors.New("no private key configured"))
	}

	s.address = crypto.PubkeyToAddress(s.privateKey.PublicKey)

	return s, nil
}

// WithPrivateKey sets the private key from a hex string.
func WithPrivateKey(hexKey string) SignerOption {
	return func(s *Signer) error {
		// Remove 0x prefix if present
		hexKey = strings.TrimPrefix(hexKey, "0x")

		privateKey, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			return authharness.InvalidKey("private key", err)
		}

		s.privateKey = privateKey
		return nil
	}
}

// Address returns the signer's checksummed Ethereum address.
func (s *Signer) Address() string {
	return s.address.Hex()
}

// SignTarget implements authharness.Signer.
//
// The signature covers the EIP-191 personal message hash of the target, the
// way a wallet's personal_sign would. v is returned as 27 or 28.
func (s *Signer) SignTarget(target []byte) (*authharness.VerifyRequest, error) {
	signature, err := crypto.Sign(accounts.TextHash(target), s.privateKey)
	if err != nil {
		return nil, authharness.NewError(authharness.ErrCodeInternal, "failed to sign message", err)
	}
	signature[crypto.RecoveryIDOffset] += 27

	return &authharness.VerifyRequest{
		Address:   s.Address(),
		Signature: "0x" + hex.EncodeToString(signature),
		Message:   "0x" + hex.EncodeToString(target),
	}, nil
}
