// Package validation checks command inputs before they reach a variant.
package validation

import (
	"fmt"
	"regexp"

	authharness "github.com/mark3labs/auth-harness"
)

var (
	// evmAddressRegex matches Ethereum-style addresses (0x followed by 40 hex chars)
	evmAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

	// solanaAddressRegex matches Solana base58 addresses (32-44 chars, base58 charset)
	solanaAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// Argument is a named input and whether the caller supplied it.
type Argument struct {
	Name    string
	Present bool
}

// Require returns a MissingArgument error for the first argument that was not supplied.
// An argument supplied with an empty value counts as present.
func Require(args ...Argument) error {
	for _, a := range args {
		if !a.Present {
			return authharness.MissingArgument(a.Name)
		}
	}
	return nil
}

// RequireOneOf returns a MissingArgument error naming the first argument if none was supplied.
func RequireOneOf(args ...Argument) error {
	for _, a := range args {
		if a.Present {
			return nil
		}
	}
	if len(args) == 0 {
		return nil
	}
	return authharness.MissingArgument(args[0].Name)
}

// ValidateEVMAddress checks that address is 0x followed by 40 hex characters.
func ValidateEVMAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !evmAddressRegex.MatchString(address) {
		return fmt.Errorf("invalid EVM address format: %s (expected 0x followed by 40 hex characters)", address)
	}
	return nil
}

// IsSolanaAddress reports whether address has the shape of a Solana public key.
// Fingerprint derivation accepts any base58 text; this is for callers that want
// to warn about unusual input.
func IsSolanaAddress(address string) bool {
	return solanaAddressRegex.MatchString(address)
}
