// Package encoding converts between raw bytes and the textual encodings the
// harness accepts on the command line: hex, base64, base58 and the block-based
// Monero flavour of base58 (decode only).
package encoding

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/mr-tron/base58"

	authharness "github.com/mark3labs/auth-harness"
)

// Kind identifies a textual encoding.
type Kind string

const (
	Hex          Kind = "hex"
	Base64       Kind = "base64"
	Base58       Kind = "base58"
	Base58Monero Kind = "base58_monero"
)

// Default is the encoding used for signing targets when none is requested.
const Default = Base58

// ParseKind maps an encoding name to its Kind.
// Returns an UnsupportedEncoding error for unknown names.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(name); k {
	case Hex, Base64, Base58, Base58Monero:
		return k, nil
	default:
		return "", authharness.UnsupportedEncoding(name)
	}
}

// Decode converts text to bytes under kind.
//
// Returns an UnsupportedEncoding error if kind is not recognized and a
// MalformedPayload error if text is not valid under kind.
func Decode(text string, kind Kind) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch kind {
	case Hex:
		out, err = hex.DecodeString(text)
	case Base64:
		out, err = base64.StdEncoding.DecodeString(text)
	case Base58:
		// The empty string is the encoding of zero bytes.
		if text == "" {
			return []byte{}, nil
		}
		out, err = base58.Decode(text)
	case Base58Monero:
		out, err = decodeMonero(text)
	default:
		return nil, authharness.UnsupportedEncoding(string(kind))
	}
	if err != nil {
		return nil, authharness.MalformedPayload(string(kind), err)
	}
	return out, nil
}

// Encode converts b to text under kind.
// base58_monero is decode-only; asking to encode with it is an UnsupportedEncoding error.
func Encode(b []byte, kind Kind) (string, error) {
	switch kind {
	case Hex:
		return hex.EncodeToString(b), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(b), nil
	case Base58:
		return base58.Encode(b), nil
	default:
		return "", authharness.UnsupportedEncoding(string(kind))
	}
}

// DecodeString is Decode with the encoding given by name.
func DecodeString(text, name string) ([]byte, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return Decode(text, kind)
}

// EncodeToString is Encode with the encoding given by name.
func EncodeToString(b []byte, name string) (string, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return "", err
	}
	return Encode(b, kind)
}
