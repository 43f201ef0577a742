package harness

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
	"github.com/mark3labs/auth-harness/engine"
	"github.com/mark3labs/auth-harness/fingerprint"
)

// fakeEngine records the units it is given.
type fakeEngine struct {
	message   []byte
	verifyErr error
	built     []*authharness.VerifiableUnit
	verified  []*authharness.VerifiableUnit
}

func (f *fakeEngine) BuildMessage(_ context.Context, unit *authharness.VerifiableUnit) ([]byte, error) {
	f.built = append(f.built, unit)
	return f.message, nil
}

func (f *fakeEngine) Verify(_ context.Context, unit *authharness.VerifiableUnit) (*engine.Result, error) {
	f.verified = append(f.verified, unit)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &engine.Result{Cycles: 42}, nil
}

func (f *fakeEngine) Supported(context.Context) ([]authharness.Algorithm, error) {
	return nil, nil
}

func fixedFingerprint(fp authharness.Fingerprint) Resolver {
	return func() (authharness.Fingerprint, error) { return fp, nil }
}

func TestResolveFingerprint(t *testing.T) {
	derived := authharness.Fingerprint{9}
	derive := func(string) (authharness.Fingerprint, error) { return derived, nil }

	tests := []struct {
		name    string
		fpHex   string
		address string
		want    authharness.Fingerprint
		wantErr error
	}{
		{
			name:    "explicit fingerprint wins",
			fpHex:   "0102030405060708090a0b0c0d0e0f1011121314",
			address: "ignored",
			want:    authharness.Fingerprint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
		},
		{
			name:  "uppercase hex",
			fpHex: "0102030405060708090A0B0C0D0E0F1011121314",
			want:  authharness.Fingerprint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
		},
		{name: "address derived", address: "whatever", want: derived},
		{name: "bad hex", fpHex: "zz", wantErr: authharness.ErrMalformedPayload},
		{name: "short fingerprint", fpHex: "0102", wantErr: authharness.ErrInvalidAddress},
		{name: "nothing given", wantErr: authharness.ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFingerprint(tt.fpHex, tt.address, derive)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAssembleSignature(t *testing.T) {
	sig, err := AssembleSignature(
		Part{Text: "0102", Kind: encoding.Hex},
		Part{Text: "Aw==", Kind: encoding.Base64},
		Part{Text: "5", Kind: encoding.Base58},
	)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, sig)

	empty, err := AssembleSignature(Part{Text: "", Kind: encoding.Base58})
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = AssembleSignature(Part{Text: "0102", Kind: encoding.Hex}, Part{Text: "not base64!", Kind: encoding.Base64})
	require.ErrorIs(t, err, authharness.ErrMalformedPayload)
}

func TestGenerate(t *testing.T) {
	fake := &fakeEngine{message: []byte{0xde, 0xad, 0xbe, 0xef}}
	h := New(fake, WithCycleBudget(1000))

	got, err := h.Generate(context.Background(), authharness.Fingerprint{1}, authharness.AlgorithmSolana, "")
	require.NoError(t, err)
	require.Equal(t, base58.Encode(fake.message), got)

	got, err = h.Generate(context.Background(), authharness.Fingerprint{1}, authharness.AlgorithmSolana, "hex")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", got)

	require.Len(t, fake.built, 2)
	require.Equal(t, uint64(1000), fake.built[0].CycleBudget)
	require.Equal(t, authharness.EntrySpawn, fake.built[0].EntryCategory)
	require.Empty(t, fake.built[0].Signature)

	t.Run("unsupported encoding fails before the engine", func(t *testing.T) {
		_, err := h.Generate(context.Background(), authharness.Fingerprint{1}, authharness.AlgorithmSolana, "base37")
		require.ErrorIs(t, err, authharness.ErrUnsupportedEncoding)
		require.Len(t, fake.built, 2)
	})

	t.Run("monero cannot encode", func(t *testing.T) {
		_, err := h.Generate(context.Background(), authharness.Fingerprint{1}, authharness.AlgorithmSolana, "base58_monero")
		require.ErrorIs(t, err, authharness.ErrUnsupportedEncoding)
	})
}

func TestVerifyStages(t *testing.T) {
	goodParts := []Part{{Text: "0102", Kind: encoding.Hex}}

	tests := []struct {
		name      string
		resolve   Resolver
		parts     []Part
		engineErr error
		wantErr   error
		wantCode  authharness.ErrorCode
		wantStage Stage
	}{
		{
			name: "resolve failure",
			resolve: func() (authharness.Fingerprint, error) {
				return authharness.Fingerprint{}, authharness.InvalidAddress("x", errors.New("bad"))
			},
			parts:     goodParts,
			wantErr:   authharness.ErrInvalidAddress,
			wantCode:  authharness.ErrCodeInvalidAddress,
			wantStage: StageStart,
		},
		{
			name:      "assembly failure",
			resolve:   fixedFingerprint(authharness.Fingerprint{1}),
			parts:     []Part{{Text: "xyz", Kind: encoding.Hex}},
			wantErr:   authharness.ErrMalformedPayload,
			wantCode:  authharness.ErrCodeMalformedPayload,
			wantStage: StageFingerprintResolved,
		},
		{
			name:      "engine rejection",
			resolve:   fixedFingerprint(authharness.Fingerprint{1}),
			parts:     goodParts,
			engineErr: authharness.EngineFailure("nope", authharness.ErrEngineRejected),
			wantErr:   authharness.ErrEngineRejected,
			wantCode:  authharness.ErrCodeEngine,
			wantStage: StageEngineInvoked,
		},
		{
			name:      "untyped engine failure",
			resolve:   fixedFingerprint(authharness.Fingerprint{1}),
			parts:     goodParts,
			engineErr: errors.New("connection reset"),
			wantErr:   authharness.ErrEngineUnavailable,
			wantCode:  authharness.ErrCodeEngine,
			wantStage: StageEngineInvoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeEngine{verifyErr: tt.engineErr})
			_, err := h.Verify(context.Background(), authharness.AlgorithmSolana, tt.resolve, tt.parts...)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantCode, authharness.CodeOf(err))

			stage, ok := StageOf(err)
			require.True(t, ok)
			require.Equal(t, tt.wantStage, stage)
		})
	}
}

func TestVerifyPassesUnit(t *testing.T) {
	fake := &fakeEngine{}
	h := New(fake, WithConfig(Config{CycleBudget: 77, EntryCategory: authharness.EntryExec}))

	result, err := h.Verify(context.Background(), authharness.AlgorithmEthereum,
		fixedFingerprint(authharness.Fingerprint{5}),
		Part{Text: "aa", Kind: encoding.Hex}, Part{Text: "bb", Kind: encoding.Hex})
	require.NoError(t, err)
	require.Equal(t, uint64(42), result.Cycles)

	require.Len(t, fake.verified, 1)
	unit := fake.verified[0]
	require.Equal(t, authharness.Fingerprint{5}, unit.Fingerprint)
	require.Equal(t, authharness.AlgorithmEthereum, unit.Algorithm)
	require.Equal(t, authharness.EntryExec, unit.EntryCategory)
	require.Equal(t, uint64(77), unit.CycleBudget)
	require.Equal(t, []byte{0xaa, 0xbb}, unit.Signature)
}

func TestVerifyWithLocalEngine(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()
	address := pub.String()

	h := New(engine.NewLocal())
	fp, err := fingerprint.Derive(address)
	require.NoError(t, err)
	target, err := h.Message(context.Background(), fp, authharness.AlgorithmSolana)
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(0, pub, pub).Build()},
		solana.HashFromBytes(target),
		solana.TransactionPayer(pub),
	)
	require.NoError(t, err)
	message, err := tx.Message.MarshalBinary()
	require.NoError(t, err)
	sig, err := key.Sign(message)
	require.NoError(t, err)

	resolve := func() (authharness.Fingerprint, error) { return fingerprint.Derive(address) }
	parts := []Part{
		{Text: sig.String(), Kind: encoding.Base58},
		{Text: address, Kind: encoding.Base58},
		{Text: base64.StdEncoding.EncodeToString(message), Kind: encoding.Base64},
	}

	_, err = h.Verify(context.Background(), authharness.AlgorithmSolana, resolve, parts...)
	require.NoError(t, err)

	t.Run("budget too small", func(t *testing.T) {
		small := New(engine.NewLocal(), WithCycleBudget(engine.CostLoadUnit))
		_, err := small.Verify(context.Background(), authharness.AlgorithmSolana, resolve, parts...)
		require.ErrorIs(t, err, authharness.ErrBudgetExceeded)
		require.True(t, authharness.IsEngineError(err))
	})

	t.Run("swapped order", func(t *testing.T) {
		swapped := []Part{parts[1], parts[0], parts[2]}
		_, err := h.Verify(context.Background(), authharness.AlgorithmSolana, resolve, swapped...)
		require.ErrorIs(t, err, authharness.ErrEngineRejected)
	})
}
