// Package chains is the closed registry of blockchain variants the harness
// can exercise, with helpers to build a local test signer for each of them.
package chains

import (
	"context"
	"fmt"
	"sort"
	"strings"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/evm"
	"github.com/mark3labs/auth-harness/harness"
	"github.com/mark3labs/auth-harness/svm"
)

// VMType is the virtual machine family a variant belongs to.
type VMType int

const (
	// VMTypeUnknown represents an unrecognized variant.
	VMTypeUnknown VMType = iota
	// VMTypeEVM represents Ethereum Virtual Machine chains.
	VMTypeEVM
	// VMTypeSVM represents Solana Virtual Machine chains.
	VMTypeSVM
)

var vmTypes = map[string]VMType{
	evm.Name: VMTypeEVM,
	svm.Name: VMTypeSVM,
}

// Names returns the registered variant names in sorted order.
func Names() []string {
	names := make([]string, 0, len(vmTypes))
	for name := range vmTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeOf returns the VM family of a variant name.
// Returns ErrUnknownVariant for names outside the registry.
func TypeOf(name string) (VMType, error) {
	t, ok := vmTypes[name]
	if !ok {
		return VMTypeUnknown, authharness.NewError(authharness.ErrCodeUnknownVariant,
			fmt.Sprintf("unknown variant %q (known: %s)", name, strings.Join(Names(), ", ")),
			authharness.ErrUnknownVariant)
	}
	return t, nil
}

// Variants returns every registered variant, bound to h, in name order.
func Variants(h *harness.Harness) []authharness.Variant {
	variants := make([]authharness.Variant, 0, len(vmTypes))
	for _, name := range Names() {
		v, _ := Lookup(h, name)
		variants = append(variants, v)
	}
	return variants
}

// Lookup returns the variant called name, bound to h.
func Lookup(h *harness.Harness, name string) (authharness.Variant, error) {
	t, err := TypeOf(name)
	if err != nil {
		return nil, err
	}
	switch t {
	case VMTypeEVM:
		return evm.NewVariant(h), nil
	default:
		return svm.NewVariant(h), nil
	}
}

// KeySource describes where a local test signer takes its key from.
// Exactly one of PrivateKey, Mnemonic and KeyFile is expected to be set.
type KeySource struct {
	// PrivateKey is base58 for Solana and hex for Ethereum.
	PrivateKey string

	// Mnemonic is a BIP39 phrase.
	Mnemonic string

	// Passphrase is the BIP39 passphrase (Solana only).
	Passphrase string

	// AccountIndex selects m/44'/60'/0'/0/{index} (Ethereum only).
	AccountIndex uint32

	// KeyFile is a Solana keygen JSON file or an Ethereum keystore file.
	KeyFile string

	// Password decrypts an Ethereum keystore.
	Password string
}

// NewSigner builds the local test signer of the variant called name.
func NewSigner(name string, src KeySource) (authharness.Signer, error) {
	t, err := TypeOf(name)
	if err != nil {
		return nil, err
	}

	switch t {
	case VMTypeEVM:
		var opt evm.SignerOption
		switch {
		case src.PrivateKey != "":
			opt = evm.WithPrivateKey(src.PrivateKey)
		case src.Mnemonic != "":
			opt = evm.WithMnemonic(src.Mnemonic, src.AccountIndex)
		case src.KeyFile != "":
			opt = evm.WithKeystore(src.KeyFile, src.Password)
		default:
			return nil, authharness.MissingArgument("private-key")
		}
		signer, err := evm.NewSigner(opt)
		if err != nil {
			return nil, err
		}
		return signer, nil

	default:
		var opt svm.SignerOption
		switch {
		case src.PrivateKey != "":
			opt = svm.WithPrivateKey(src.PrivateKey)
		case src.Mnemonic != "":
			opt = svm.WithMnemonic(src.Mnemonic, src.Passphrase)
		case src.KeyFile != "":
			opt = svm.WithKeygenFile(src.KeyFile)
		default:
			return nil, authharness.MissingArgument("private-key")
		}
		signer, err := svm.NewSigner(opt)
		if err != nil {
			return nil, err
		}
		return signer, nil
	}
}

// SignVector produces a verify request for the signer's own address: it asks
// v for the signing target and has s sign it.
func SignVector(ctx context.Context, v authharness.Variant, s authharness.Signer) (*authharness.VerifyRequest, error) {
	targetHex, err := v.Generate(ctx, authharness.GenerateRequest{
		Address:  s.Address(),
		Encoding: string(encoding.Hex),
	})
	if err != nil {
		return nil, err
	}
	target, err := encoding.Decode(targetHex, encoding.Hex)
	if err != nil {
		return nil, err
	}
	return s.SignTarget(target)
}
