package engine

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/fingerprint"
)

const (
	solanaSignatureSize = ed25519.SignatureSize
	solanaPubkeySize    = ed25519.PublicKeySize
)

// validateSolana checks a Solana witness: signature(64) ‖ pubkey(32) ‖ message.
//
// The message must be a serialized Solana transaction message whose recent
// blockhash is the signing target and which lists the pubkey as a required
// signer. The signature must be a valid ed25519 signature of the message bytes.
func validateSolana(m *meter, target []byte, unit *authharness.VerifiableUnit) error {
	witness := unit.Signature
	if len(witness) <= solanaSignatureSize+solanaPubkeySize {
		return reject("solana witness too short: %d bytes", len(witness))
	}
	rawSig := witness[:solanaSignatureSize]
	rawPubkey := witness[solanaSignatureSize : solanaSignatureSize+solanaPubkeySize]
	rawMessage := witness[solanaSignatureSize+solanaPubkeySize:]

	if err := m.consumeHash(len(rawPubkey), "hashing public key"); err != nil {
		return err
	}
	if fingerprint.Blake160(rawPubkey) != unit.Fingerprint {
		return reject("public key hash does not match fingerprint %s", unit.Fingerprint)
	}

	if err := m.consume(CostSolanaMessageScan, "decoding solana message"); err != nil {
		return err
	}
	var message solana.Message
	if err := message.UnmarshalWithDecoder(bin.NewBinDecoder(rawMessage)); err != nil {
		return reject("decode solana message: %v", err)
	}
	if !bytes.Equal(message.RecentBlockhash[:], target) {
		return reject("recent blockhash %s does not match signing target", message.RecentBlockhash)
	}

	pubkey := solana.PublicKeyFromBytes(rawPubkey)
	if !isRequiredSigner(&message, pubkey) {
		return reject("public key %s is not a required signer of the message", pubkey)
	}

	if err := m.consumeHash(len(rawMessage), "hashing solana message"); err != nil {
		return err
	}
	if err := m.consume(CostEd25519Verify, "verifying ed25519 signature"); err != nil {
		return err
	}
	if !solana.SignatureFromBytes(rawSig).Verify(pubkey, rawMessage) {
		return reject("ed25519 signature verification failed")
	}
	return nil
}

func isRequiredSigner(message *solana.Message, pubkey solana.PublicKey) bool {
	n := int(message.Header.NumRequiredSignatures)
	for i := 0; i < n && i < len(message.AccountKeys); i++ {
		if message.AccountKeys[i].Equals(pubkey) {
			return true
		}
	}
	return false
}
