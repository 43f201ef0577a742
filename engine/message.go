package engine

import (
	"encoding/binary"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/fingerprint"
)

// unitVersion is the version field of the synthetic transaction.
const unitVersion uint32 = 0

// signingTarget computes the 32-byte message a signer must sign for unit.
//
// The synthetic transaction hash covers the version, entry category and auth
// args (algorithm id and fingerprint). The signing target is the CKB hash of
// that transaction hash.
func signingTarget(m *meter, unit *authharness.VerifiableUnit) ([]byte, error) {
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], unitVersion)

	tx := make([]byte, 0, 4+1+1+authharness.FingerprintSize)
	tx = append(tx, version[:]...)
	tx = append(tx, byte(unit.EntryCategory))
	tx = append(tx, unit.AuthArgs()...)

	if err := m.consumeHash(len(tx), "hashing transaction"); err != nil {
		return nil, err
	}
	txHash := fingerprint.Hash(tx)

	if err := m.consumeHash(len(txHash), "hashing signing target"); err != nil {
		return nil, err
	}
	target := fingerprint.Hash(txHash[:])
	return target[:], nil
}
