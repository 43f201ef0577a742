package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/chains"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/svm"
	"github.com/mark3labs/auth-harness/validation"
)

const verifySucceeded = "Signature verification succeeded!"

func newChainCmd(a *app, name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Parse, generate, verify and sign %s test vectors", name),
	}
	cmd.AddCommand(newParseCmd(a, name))
	cmd.AddCommand(newGenerateCmd(a, name))
	cmd.AddCommand(newVerifyCmd(a, name))
	cmd.AddCommand(newSignCmd(a, name))
	return cmd
}

// variant returns the named variant bound to the configured harness.
func (a *app) variant(name string) (authharness.Variant, error) {
	return chains.Lookup(a.harness, name)
}

// checkAddress warns about Solana addresses that do not look like public keys.
// Any base58 text still derives a fingerprint.
func (a *app) checkAddress(name, address string) {
	if name == svm.Name && address != "" && !validation.IsSolanaAddress(address) {
		a.logger.Warn("address does not look like a Solana public key", zap.String("address", address))
	}
}

func present(cmd *cobra.Command, flag string) validation.Argument {
	return validation.Argument{Name: flag, Present: cmd.Flags().Changed(flag)}
}

func newParseCmd(a *app, name string) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the account fingerprint of an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.Require(present(cmd, "address")); err != nil {
				return err
			}
			v, err := a.variant(name)
			if err != nil {
				return err
			}
			a.checkAddress(name, address)
			fp, err := v.Parse(cmd.Context(), address)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Account address")
	return cmd
}

func newGenerateCmd(a *app, name string) *cobra.Command {
	var req authharness.GenerateRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the signing target for an address or fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.RequireOneOf(present(cmd, "address"), present(cmd, "pubkeyhash")); err != nil {
				return err
			}
			v, err := a.variant(name)
			if err != nil {
				return err
			}
			if req.Fingerprint == "" {
				a.checkAddress(name, req.Address)
			}
			msg, err := v.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Address, "address", "a", "", "Account address")
	cmd.Flags().StringVarP(&req.Fingerprint, "pubkeyhash", "p", "", "Hex fingerprint; takes precedence over --address")
	cmd.Flags().StringVarP(&req.Encoding, "encoding", "e", string(encoding.Default), "Output encoding (hex, base64, base58, base58_monero)")
	return cmd
}

func newVerifyCmd(a *app, name string) *cobra.Command {
	var req authharness.VerifyRequest
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature with the engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			required := []validation.Argument{present(cmd, "address"), present(cmd, "signature")}
			if name == svm.Name {
				required = append(required, present(cmd, "message"))
			}
			if err := validation.Require(required...); err != nil {
				return err
			}
			v, err := a.variant(name)
			if err != nil {
				return err
			}
			a.checkAddress(name, req.Address)
			if err := v.Verify(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), verifySucceeded)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Address, "address", "a", "", "Account address")
	cmd.Flags().StringVarP(&req.Signature, "signature", "s", "", "Signature")
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "Signed message")
	return cmd
}

func newSignCmd(a *app, name string) *cobra.Command {
	var src chains.KeySource
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign the signing target of a local test key and print the verify inputs",
		Long: `Sign the signing target of a local test key and print the address,
signature and message to pass to verify. Keys are for test vectors only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.RequireOneOf(present(cmd, "private-key"), present(cmd, "mnemonic"), present(cmd, "keyfile")); err != nil {
				return err
			}
			v, err := a.variant(name)
			if err != nil {
				return err
			}
			signer, err := chains.NewSigner(name, src)
			if err != nil {
				return err
			}
			req, err := chains.SignVector(cmd.Context(), v, signer)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address: %s\n", req.Address)
			fmt.Fprintf(out, "signature: %s\n", req.Signature)
			fmt.Fprintf(out, "message: %s\n", req.Message)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&src.PrivateKey, "private-key", "", "Private key (base58 for solana, hex for ethereum)")
	flags.StringVar(&src.Mnemonic, "mnemonic", "", "BIP39 mnemonic")
	flags.StringVar(&src.Passphrase, "passphrase", "", "BIP39 passphrase (solana)")
	flags.Uint32Var(&src.AccountIndex, "account-index", 0, "HD account index (ethereum)")
	flags.StringVar(&src.KeyFile, "keyfile", "", "Solana keygen file or Ethereum keystore file")
	flags.StringVar(&src.Password, "password", "", "Keystore password (ethereum)")
	return cmd
}

func newSupportedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "supported",
		Short: "List the algorithms the configured engine can verify",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			algs, err := a.harness.Engine().Supported(cmd.Context())
			if err != nil {
				return err
			}
			for _, alg := range algs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", uint8(alg), alg)
			}
			return nil
		},
	}
}
