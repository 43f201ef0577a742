package authharness

import (
	"encoding/hex"
	"fmt"
)

// FingerprintSize is the width of an account fingerprint in bytes.
const FingerprintSize = 20

// Fingerprint is the canonical 20-byte account identifier a verifiable unit is bound to.
type Fingerprint [FingerprintSize]byte

// FingerprintFromBytes copies b into a Fingerprint.
// Returns ErrInvalidAddress if b is not exactly FingerprintSize bytes long.
func FingerprintFromBytes(b []byte) (Fingerprint, error) {
	var fp Fingerprint
	if len(b) != FingerprintSize {
		return fp, NewError(ErrCodeInvalidAddress,
			fmt.Sprintf("fingerprint must be %d bytes, got %d", FingerprintSize, len(b)), ErrInvalidAddress)
	}
	copy(fp[:], b)
	return fp, nil
}

// String returns the lowercase hex form of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Bytes returns a copy of the fingerprint as a slice.
func (f Fingerprint) Bytes() []byte {
	out := make([]byte, FingerprintSize)
	copy(out, f[:])
	return out
}

// Algorithm is the auth algorithm id carried into a verifiable unit.
// Values follow the ckb-auth numbering.
type Algorithm uint8

const (
	AlgorithmCkb         Algorithm = 0
	AlgorithmEthereum    Algorithm = 1
	AlgorithmEos         Algorithm = 2
	AlgorithmTron        Algorithm = 3
	AlgorithmBitcoin     Algorithm = 4
	AlgorithmDogecoin    Algorithm = 5
	AlgorithmCkbMultisig Algorithm = 6
	AlgorithmSchnorr     Algorithm = 7
	AlgorithmRsa         Algorithm = 8
	AlgorithmIso97962    Algorithm = 9
	AlgorithmLitecoin    Algorithm = 10
	AlgorithmCardano     Algorithm = 11
	AlgorithmMonero      Algorithm = 12
	AlgorithmSolana      Algorithm = 13
	AlgorithmRipple      Algorithm = 14
	AlgorithmSecp256r1   Algorithm = 15
	AlgorithmOwnerLock   Algorithm = 0xFC
)

var algorithmNames = map[Algorithm]string{
	AlgorithmCkb:         "ckb",
	AlgorithmEthereum:    "ethereum",
	AlgorithmEos:         "eos",
	AlgorithmTron:        "tron",
	AlgorithmBitcoin:     "bitcoin",
	AlgorithmDogecoin:    "dogecoin",
	AlgorithmCkbMultisig: "ckb-multisig",
	AlgorithmSchnorr:     "schnorr",
	AlgorithmRsa:         "rsa",
	AlgorithmIso97962:    "iso9796-2",
	AlgorithmLitecoin:    "litecoin",
	AlgorithmCardano:     "cardano",
	AlgorithmMonero:      "monero",
	AlgorithmSolana:      "solana",
	AlgorithmRipple:      "ripple",
	AlgorithmSecp256r1:   "secp256r1",
	AlgorithmOwnerLock:   "owner-lock",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// EntryCategory describes how the engine is entered to run an auth check.
type EntryCategory uint8

const (
	// EntryExec runs the auth check through exec.
	EntryExec EntryCategory = iota
	// EntryDynamicLinking loads the auth check as a dynamic library.
	EntryDynamicLinking
	// EntrySpawn runs the auth check in a spawned child.
	EntrySpawn
)

func (c EntryCategory) String() string {
	switch c {
	case EntryExec:
		return "exec"
	case EntryDynamicLinking:
		return "dynamic-linking"
	case EntrySpawn:
		return "spawn"
	default:
		return fmt.Sprintf("entry(%d)", uint8(c))
	}
}

// VerifiableUnit is the synthetic structure the engine evaluates: an account
// identified by a fingerprint, optionally bound to a signature.
type VerifiableUnit struct {
	// Fingerprint identifies the account being authorized.
	Fingerprint Fingerprint

	// Algorithm selects the auth algorithm the engine applies.
	Algorithm Algorithm

	// EntryCategory is how the engine enters the auth check.
	EntryCategory EntryCategory

	// CycleBudget is the maximum number of cycles the engine may consume.
	CycleBudget uint64

	// Signature is the assembled witness. Empty until AttachSignature is called.
	Signature []byte
}

// NewVerifiableUnit creates a unit without a signature.
func NewVerifiableUnit(fp Fingerprint, alg Algorithm, entry EntryCategory, budget uint64) *VerifiableUnit {
	return &VerifiableUnit{
		Fingerprint:   fp,
		Algorithm:     alg,
		EntryCategory: entry,
		CycleBudget:   budget,
	}
}

// AttachSignature binds sig to the unit. The unit keeps its own copy.
func (u *VerifiableUnit) AttachSignature(sig []byte) {
	u.Signature = append([]byte(nil), sig...)
}

// AuthArgs returns the 21-byte auth arguments: algorithm id followed by the fingerprint.
func (u *VerifiableUnit) AuthArgs() []byte {
	args := make([]byte, 0, 1+FingerprintSize)
	args = append(args, byte(u.Algorithm))
	return append(args, u.Fingerprint[:]...)
}

// GenerateRequest carries the inputs of a generate operation.
type GenerateRequest struct {
	// Address is the chain-native address. Ignored when Fingerprint is set.
	Address string

	// Fingerprint is an explicit hex-encoded fingerprint. Takes precedence over Address.
	Fingerprint string

	// Encoding is the output encoding name. Defaults to base58 when empty.
	Encoding string
}

// VerifyRequest carries the inputs of a verify operation.
type VerifyRequest struct {
	// Address is the chain-native address the signature is checked against.
	Address string

	// Signature is the signature text in the variant's signature encoding.
	Signature string

	// Message is the signed message text in the variant's message encoding.
	Message string
}
