package svm

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/tyler-smith/go-bip39"

	authharness "github.com/mark3labs/auth-harness"
)

// Signer produces Solana test vectors from a local key.
type Signer struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// SignerOption configures a Signer.
type SignerOption func(*Signer) error

// NewSigner creates a new Solana signer with the given options.
func NewSigner(opts ...SignerOption) (*Signer, error) {
	s := &Signer{}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if len(s.privateKey) == 0 {
		return nil, authharness.InvalidKey("options", errors.New("no private key configured"))
	}

	s.publicKey = s.privateKey.PublicKey()

	return s, nil
}

// WithPrivateKey sets the private key from a base58 string.
func WithPrivateKey(base58Key string) SignerOption {
	return func(s *Signer) error {
		privateKey, err := solana.PrivateKeyFromBase58(base58Key)
		if err != nil {
			return authharness.InvalidKey("private key", err)
		}
		if len(privateKey) != ed25519.PrivateKeySize {
			return authharness.InvalidKey("private key", fmt.Errorf("expected %d bytes, got %d", ed25519.PrivateKeySize, len(privateKey)))
		}
		s.privateKey = privateKey
		return nil
	}
}

// WithKeygenFile loads a private key from a Solana keygen JSON file.
func WithKeygenFile(path string) SignerOption {
	return func(s *Signer) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return authharness.InvalidKey(path, err)
		}

		// Parse JSON array format: [1, 2, 3, ...]
		var keyBytes []byte
		if err := json.Unmarshal(data, &keyBytes); err != nil {
			return authharness.InvalidKey(path, errors.New("invalid JSON format"))
		}

		if len(keyBytes) != ed25519.PrivateKeySize {
			return authharness.InvalidKey(path, errors.New("invalid key length"))
		}

		s.privateKey = solana.PrivateKey(keyBytes)
		return nil
	}
}

// WithMnemonic derives the key from a BIP39 mnemonic the way solana-keygen
// does without a derivation path: the first 32 bytes of the seed are the
// ed25519 seed.
func WithMnemonic(mnemonic, passphrase string) SignerOption {
	return func(s *Signer) error {
		if !bip39.IsMnemonicValid(mnemonic) {
			return authharness.InvalidKey("mnemonic", errors.New("invalid mnemonic"))
		}
		seed := bip39.NewSeed(mnemonic, passphrase)
		s.privateKey = solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]))
		return nil
	}
}

// Address returns the signer's public key as a base58 string.
func (s *Signer) Address() string {
	return s.publicKey.String()
}

// SignTarget implements authharness.Signer.
//
// The target becomes the recent blockhash of a transaction message holding a
// zero-lamport transfer from the signer to itself. The signer pays the fee, so
// it is the first required signer.
func (s *Signer) SignTarget(target []byte) (*authharness.VerifyRequest, error) {
	message, err := BuildTargetMessage(s.publicKey, target)
	if err != nil {
		return nil, err
	}

	signature, err := s.privateKey.Sign(message)
	if err != nil {
		return nil, authharness.NewError(authharness.ErrCodeInternal, "failed to sign message", err)
	}

	return &authharness.VerifyRequest{
		Address:   s.Address(),
		Signature: signature.String(),
		Message:   base64.StdEncoding.EncodeToString(message),
	}, nil
}

// BuildTargetMessage returns the serialized transaction message that binds
// payer to a 32-byte signing target.
func BuildTargetMessage(payer solana.PublicKey, target []byte) ([]byte, error) {
	if len(target) != solana.PublicKeyLength {
		return nil, authharness.NewError(authharness.ErrCodeMalformedPayload,
			fmt.Sprintf("signing target must be %d bytes, got %d", solana.PublicKeyLength, len(target)),
			authharness.ErrMalformedPayload)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(0, payer, payer).Build()},
		solana.HashFromBytes(target),
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, authharness.NewError(authharness.ErrCodeInternal, "failed to create transaction", err)
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, authharness.NewError(authharness.ErrCodeInternal, "failed to marshal message", err)
	}
	return message, nil
}
