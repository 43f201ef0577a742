package authharness

import (
	"bytes"
	"errors"
	"testing"
)

func TestFingerprintFromBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{name: "exact size", input: bytes.Repeat([]byte{0xab}, FingerprintSize)},
		{name: "short", input: make([]byte, FingerprintSize-1), wantErr: true},
		{name: "long", input: make([]byte, FingerprintSize+1), wantErr: true},
		{name: "empty", input: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, err := FingerprintFromBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FingerprintFromBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAddress) || CodeOf(err) != ErrCodeInvalidAddress {
					t.Errorf("error = %v, want INVALID_ADDRESS", err)
				}
				return
			}
			if !bytes.Equal(fp.Bytes(), tt.input) {
				t.Errorf("Bytes() = %x, want %x", fp.Bytes(), tt.input)
			}
		})
	}
}

func TestFingerprintString(t *testing.T) {
	fp := Fingerprint{0x01, 0xAB}
	want := "01ab000000000000000000000000000000000000"
	if fp.String() != want {
		t.Errorf("String() = %q, want %q", fp.String(), want)
	}
}

func TestFingerprintBytesIsCopy(t *testing.T) {
	fp := Fingerprint{1}
	b := fp.Bytes()
	b[0] = 9
	if fp[0] != 1 {
		t.Errorf("mutating Bytes() changed the fingerprint")
	}
}

func TestAlgorithmString(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want string
	}{
		{AlgorithmEthereum, "ethereum"},
		{AlgorithmSolana, "solana"},
		{AlgorithmMonero, "monero"},
		{Algorithm(200), "algorithm(200)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.alg.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	if AlgorithmEthereum != 1 || AlgorithmSolana != 13 {
		t.Errorf("algorithm ids drifted: ethereum=%d solana=%d", AlgorithmEthereum, AlgorithmSolana)
	}
}

func TestEntryCategoryString(t *testing.T) {
	tests := []struct {
		entry EntryCategory
		want  string
	}{
		{EntryExec, "exec"},
		{EntryDynamicLinking, "dynamic-linking"},
		{EntrySpawn, "spawn"},
		{EntryCategory(9), "entry(9)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.entry.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerifiableUnit(t *testing.T) {
	fp := Fingerprint{0xde, 0xad}
	unit := NewVerifiableUnit(fp, AlgorithmSolana, EntrySpawn, 1000)

	if len(unit.Signature) != 0 {
		t.Fatalf("new unit has signature %x", unit.Signature)
	}

	args := unit.AuthArgs()
	if len(args) != 1+FingerprintSize {
		t.Fatalf("AuthArgs() length = %d, want %d", len(args), 1+FingerprintSize)
	}
	if args[0] != byte(AlgorithmSolana) || !bytes.Equal(args[1:], fp[:]) {
		t.Errorf("AuthArgs() = %x", args)
	}

	sig := []byte{1, 2, 3}
	unit.AttachSignature(sig)
	sig[0] = 9
	if !bytes.Equal(unit.Signature, []byte{1, 2, 3}) {
		t.Errorf("AttachSignature did not copy: %x", unit.Signature)
	}
}
