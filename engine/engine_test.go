package engine

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/require"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/fingerprint"
)

func solanaUnit(t *testing.T, key solana.PrivateKey) *authharness.VerifiableUnit {
	t.Helper()
	pub := key.PublicKey()
	return authharness.NewVerifiableUnit(fingerprint.Blake160(pub[:]),
		authharness.AlgorithmSolana, authharness.EntrySpawn, DefaultCycleBudget)
}

// solanaWitness signs a transfer message carrying target as its blockhash.
func solanaWitness(t *testing.T, key solana.PrivateKey, target []byte) []byte {
	t.Helper()
	pub := key.PublicKey()
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

	witness := append([]byte{}, sig[:]...)
	witness = append(witness, pub[:]...)
	return append(witness, message...)
}

func TestBuildMessageDeterministic(t *testing.T) {
	e := NewLocal()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	first, err := e.BuildMessage(context.Background(), solanaUnit(t, key))
	require.NoError(t, err)
	second, err := e.BuildMessage(context.Background(), solanaUnit(t, key))
	require.NoError(t, err)

	require.Len(t, first, 32)
	require.Equal(t, first, second)
}

func TestBuildMessageBindsUnitFields(t *testing.T) {
	e := NewLocal()
	base := authharness.NewVerifiableUnit(authharness.Fingerprint{1}, authharness.AlgorithmSolana, authharness.EntrySpawn, DefaultCycleBudget)
	want, err := e.BuildMessage(context.Background(), base)
	require.NoError(t, err)

	variants := map[string]*authharness.VerifiableUnit{
		"fingerprint": authharness.NewVerifiableUnit(authharness.Fingerprint{2}, authharness.AlgorithmSolana, authharness.EntrySpawn, DefaultCycleBudget),
		"algorithm":   authharness.NewVerifiableUnit(authharness.Fingerprint{1}, authharness.AlgorithmEthereum, authharness.EntrySpawn, DefaultCycleBudget),
		"entry":       authharness.NewVerifiableUnit(authharness.Fingerprint{1}, authharness.AlgorithmSolana, authharness.EntryExec, DefaultCycleBudget),
	}
	for name, unit := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := e.BuildMessage(context.Background(), unit)
			require.NoError(t, err)
			require.NotEqual(t, want, got)
		})
	}

	// The budget is not part of the signing target.
	cheap := authharness.NewVerifiableUnit(authharness.Fingerprint{1}, authharness.AlgorithmSolana, authharness.EntrySpawn, 1_000_000)
	got, err := e.BuildMessage(context.Background(), cheap)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestVerifySolana(t *testing.T) {
	e := NewLocal()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	unit := solanaUnit(t, key)
	target, err := e.BuildMessage(context.Background(), unit)
	require.NoError(t, err)
	unit.AttachSignature(solanaWitness(t, key, target))

	result, err := e.Verify(context.Background(), unit)
	require.NoError(t, err)
	require.Greater(t, result.Cycles, CostEd25519Verify)
	require.LessOrEqual(t, result.Cycles, unit.CycleBudget)
}

func TestVerifySolanaRejects(t *testing.T) {
	e := NewLocal()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	unit := solanaUnit(t, key)
	target, err := e.BuildMessage(context.Background(), unit)
	require.NoError(t, err)
	good := solanaWitness(t, key, target)

	flip := func(i int) []byte {
		w := append([]byte{}, good...)
		w[i] ^= 0x01
		return w
	}

	tests := []struct {
		name    string
		witness []byte
	}{
		{"signature byte flipped", flip(0)},
		{"pubkey byte flipped", flip(solanaSignatureSize)},
		{"message byte flipped", flip(len(good) - 1)},
		{"blockhash of other target", solanaWitness(t, key, make([]byte, 32))},
		{"other key", solanaWitness(t, other, target)},
		{"too short", good[:solanaSignatureSize+solanaPubkeySize]},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := solanaUnit(t, key)
			u.AttachSignature(tt.witness)
			_, err := e.Verify(context.Background(), u)
			require.ErrorIs(t, err, authharness.ErrEngineRejected)
			require.True(t, authharness.IsEngineError(err))
		})
	}
}

func TestVerifyEthereum(t *testing.T) {
	e := NewLocal()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	fp, err := authharness.FingerprintFromBytes(address[:])
	require.NoError(t, err)
	unit := authharness.NewVerifiableUnit(fp, authharness.AlgorithmEthereum, authharness.EntrySpawn, DefaultCycleBudget)
	target, err := e.BuildMessage(context.Background(), unit)
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash(target), key)
	require.NoError(t, err)

	t.Run("raw recovery id", func(t *testing.T) {
		unit.AttachSignature(sig)
		_, err := e.Verify(context.Background(), unit)
		require.NoError(t, err)
	})

	t.Run("offset recovery id", func(t *testing.T) {
		shifted := append([]byte{}, sig...)
		shifted[64] += 27
		unit.AttachSignature(shifted)
		_, err := e.Verify(context.Background(), unit)
		require.NoError(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		tampered := append([]byte{}, sig...)
		tampered[10] ^= 0xff
		unit.AttachSignature(tampered)
		_, err := e.Verify(context.Background(), unit)
		require.ErrorIs(t, err, authharness.ErrEngineRejected)
	})

	t.Run("bad recovery id", func(t *testing.T) {
		bad := append([]byte{}, sig...)
		bad[64] = 7
		unit.AttachSignature(bad)
		_, err := e.Verify(context.Background(), unit)
		require.ErrorIs(t, err, authharness.ErrEngineRejected)
	})

	t.Run("wrong length", func(t *testing.T) {
		unit.AttachSignature(sig[:64])
		_, err := e.Verify(context.Background(), unit)
		require.ErrorIs(t, err, authharness.ErrEngineRejected)
	})
}

func TestVerifyBudgetExceeded(t *testing.T) {
	e := NewLocal()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	unit := solanaUnit(t, key)
	target, err := e.BuildMessage(context.Background(), unit)
	require.NoError(t, err)
	unit.AttachSignature(solanaWitness(t, key, target))

	tests := []struct {
		name   string
		budget uint64
	}{
		{"below unit load", CostLoadUnit - 1},
		{"below signature check", CostLoadUnit + CostEd25519Verify},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := *unit
			u.CycleBudget = tt.budget
			_, err := e.Verify(context.Background(), &u)
			require.ErrorIs(t, err, authharness.ErrBudgetExceeded)
			require.True(t, authharness.IsEngineError(err))
		})
	}
}

func TestVerifyUnsupportedAlgorithm(t *testing.T) {
	e := NewLocal()
	unit := authharness.NewVerifiableUnit(authharness.Fingerprint{}, authharness.AlgorithmCardano, authharness.EntrySpawn, DefaultCycleBudget)
	unit.AttachSignature([]byte{1})
	_, err := e.Verify(context.Background(), unit)
	require.ErrorIs(t, err, authharness.ErrEngineRejected)
	require.Contains(t, err.Error(), "cardano")
}

func TestSupported(t *testing.T) {
	algs, err := NewLocal().Supported(context.Background())
	require.NoError(t, err)
	require.Equal(t, []authharness.Algorithm{authharness.AlgorithmEthereum, authharness.AlgorithmSolana}, algs)
}
