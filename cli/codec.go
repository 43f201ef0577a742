package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/auth-harness/encoding"
)

func newEncodeCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "encode <hex>",
		Short: "Re-encode hex bytes in another encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := encoding.DecodeString(args[0], string(encoding.Hex))
			if err != nil {
				return err
			}
			text, err := encoding.EncodeToString(raw, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&to, "encoding", "e", string(encoding.Default), "Target encoding (hex, base64, base58, base58_monero)")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "decode <text>",
		Short: "Decode text to hex bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := encoding.DecodeString(args[0], from)
			if err != nil {
				return err
			}
			text, err := encoding.EncodeToString(raw, string(encoding.Hex))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&from, "encoding", "e", string(encoding.Default), "Source encoding (hex, base64, base58, base58_monero)")
	return cmd
}
