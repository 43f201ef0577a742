package evm

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	authharness "github.com/mark3labs/auth-harness"
)

// WithKeystore signs with the key held in a Web3 Secret Storage (v3) file.
func WithKeystore(path, password string) SignerOption {
	return func(s *Signer) error {
		key, err := readKeystore(path, password)
		if err != nil {
			return authharness.InvalidKey(path, err)
		}
		s.privateKey = key
		return nil
	}
}

func readKeystore(path, password string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Crypto keystore.CryptoJSON `json:"crypto"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("keystore is not JSON: %w", err)
	}
	raw, err := keystore.DecryptDataV3(file.Crypto, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return crypto.ToECDSA(raw)
}

// WithMnemonic signs with the BIP44 account m/44'/60'/0'/0/{accountIndex} of a
// BIP39 mnemonic, with an empty passphrase as wallets use by default.
func WithMnemonic(mnemonic string, accountIndex uint32) SignerOption {
	return func(s *Signer) error {
		if !bip39.IsMnemonicValid(mnemonic) {
			return authharness.InvalidKey("mnemonic", errors.New("not a valid BIP39 phrase"))
		}
		key, err := deriveEthereumKey(bip39.NewSeed(mnemonic, ""), accountIndex)
		if err != nil {
			return authharness.InvalidKey("mnemonic", err)
		}
		s.privateKey = key
		return nil
	}
}

// ethereumPath is the BIP44 prefix m/44'/60'/0'/0 for Ethereum external addresses.
var ethereumPath = []uint32{
	bip32.FirstHardenedChild + 44,
	bip32.FirstHardenedChild + 60,
	bip32.FirstHardenedChild + 0,
	0,
}

// deriveEthereumKey derives the key at m/44'/60'/0'/0/{index} from a BIP39 seed.
func deriveEthereumKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, child := range append(append([]uint32{}, ethereumPath...), index) {
		key, err = key.NewChildKey(child)
		if err != nil {
			return nil, err
		}
	}
	return crypto.ToECDSA(key.Key)
}
