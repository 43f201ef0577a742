package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	authharness "github.com/mark3labs/auth-harness"
)

func TestRequire(t *testing.T) {
	tests := []struct {
		name     string
		args     []Argument
		wantName string
	}{
		{name: "all present", args: []Argument{{"address", true}, {"signature", true}}},
		{name: "none given"},
		{name: "second missing", args: []Argument{{"address", true}, {"signature", false}, {"message", false}}, wantName: "signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Require(tt.args...)
			if tt.wantName == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, authharness.ErrMissingArgument)
			var e *authharness.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, tt.wantName, e.Details["argument"])
		})
	}
}

func TestRequireOneOf(t *testing.T) {
	require.NoError(t, RequireOneOf(Argument{"address", false}, Argument{"pubkeyhash", true}))
	require.NoError(t, RequireOneOf())

	err := RequireOneOf(Argument{"address", false}, Argument{"pubkeyhash", false})
	require.ErrorIs(t, err, authharness.ErrMissingArgument)
	require.Contains(t, err.Error(), "address")
}

func TestValidateEVMAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "lowercase", address: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"},
		{name: "checksummed", address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
		{name: "empty", address: "", wantErr: true},
		{name: "missing prefix", address: "833589fcd6edb6e08f4c7c32d4f71b54bda02913", wantErr: true},
		{name: "too short", address: "0x833589fcd6edb6e08f4c7c32d4f71b54bda0291", wantErr: true},
		{name: "non-hex", address: "0x833589fcd6edb6e08f4c7c32d4f71b54bda0291g", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEVMAddress(tt.address)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIsSolanaAddress(t *testing.T) {
	require.True(t, IsSolanaAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	require.False(t, IsSolanaAddress("0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"))
	require.False(t, IsSolanaAddress("short"))
}
