// Package fingerprint derives account fingerprints from base58 addresses.
//
// A fingerprint is the first 20 bytes of the CKB hash (blake2b-256 personalized
// with "ckb-default-hash") of the decoded address bytes.
package fingerprint

import (
	"fmt"

	"github.com/minio/blake2b-simd"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
)

// HashSize is the size of a CKB hash in bytes.
const HashSize = 32

var personalization = []byte("ckb-default-hash")

// Hash returns the CKB hash of the concatenation of parts.
func Hash(parts ...[]byte) [HashSize]byte {
	h, err := blake2b.New(&blake2b.Config{Size: HashSize, Person: personalization})
	if err != nil {
		// Size and personalization are constants within blake2b limits.
		panic(fmt.Sprintf("fingerprint: blake2b config rejected: %v", err))
	}
	for _, p := range parts {
		h.Write(p)
	}
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Blake160 returns the first 20 bytes of the CKB hash of data.
func Blake160(data []byte) authharness.Fingerprint {
	sum := Hash(data)
	var fp authharness.Fingerprint
	copy(fp[:], sum[:authharness.FingerprintSize])
	return fp
}

// Derive returns the fingerprint of a base58 address.
//
// Addresses are always base58 on the wire, whatever output encoding the caller
// asks for elsewhere. Returns an InvalidAddress error if the address does not decode.
func Derive(address string) (authharness.Fingerprint, error) {
	raw, err := encoding.Decode(address, encoding.Base58)
	if err != nil {
		return authharness.Fingerprint{}, authharness.InvalidAddress(address, err)
	}
	sum := Hash(raw)
	return truncate(sum[:])
}

func truncate(digest []byte) (authharness.Fingerprint, error) {
	var fp authharness.Fingerprint
	if len(digest) < authharness.FingerprintSize {
		return fp, authharness.NewError(authharness.ErrCodeInternal,
			fmt.Sprintf("digest is %d bytes, need at least %d", len(digest), authharness.FingerprintSize),
			authharness.ErrInvariant)
	}
	copy(fp[:], digest[:authharness.FingerprintSize])
	return fp, nil
}
