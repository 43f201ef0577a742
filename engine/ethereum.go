package engine

import (
	"bytes"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	authharness "github.com/mark3labs/auth-harness"
)

const ethereumSignatureSize = crypto.SignatureLength

// validateEthereum checks a 65-byte recoverable secp256k1 signature (r ‖ s ‖ v)
// over the EIP-191 text hash of the signing target. The recovered address
// must equal the fingerprint.
func validateEthereum(m *meter, target []byte, unit *authharness.VerifiableUnit) error {
	if len(unit.Signature) != ethereumSignatureSize {
		return reject("ethereum signature must be %d bytes, got %d", ethereumSignatureSize, len(unit.Signature))
	}
	sig := append([]byte(nil), unit.Signature...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return reject("invalid recovery id %d", unit.Signature[crypto.RecoveryIDOffset])
	}

	if err := m.consumeHash(len(target)+32, "hashing personal message"); err != nil {
		return err
	}
	hash := accounts.TextHash(target)

	if err := m.consume(CostSecp256k1Recover, "recovering secp256k1 public key"); err != nil {
		return err
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return reject("recover public key: %v", err)
	}
	address := crypto.PubkeyToAddress(*pub)
	if !bytes.Equal(address[:], unit.Fingerprint[:]) {
		return reject("recovered address %s does not match fingerprint %s", address.Hex(), unit.Fingerprint)
	}
	return nil
}
