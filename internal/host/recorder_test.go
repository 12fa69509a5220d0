package host

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIx(program, signer, other solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(program, solana.AccountMetaSlice{
		{PublicKey: signer, IsSigner: true, IsWritable: true},
		{PublicKey: other, IsWritable: true},
	}, []byte{7})
}

func TestRecorder_RecordsInvocation(t *testing.T) {
	caller := solana.NewWallet().PublicKey()
	callee := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	r := NewRecorder(caller)
	err := r.Invoke(context.Background(), signedIx(callee, signer, other), []*AccountInfo{
		{Key: signer, IsSigner: true},
		{Key: other},
	})
	require.NoError(t, err)

	calls := r.Invocations()
	require.Len(t, calls, 1)
	assert.Equal(t, callee, calls[0].ProgramID)
	assert.Equal(t, []byte{7}, calls[0].Data)
	assert.False(t, calls[0].Signed)
}

func TestRecorder_MissingAccount(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	r := NewRecorder(solana.NewWallet().PublicKey())

	err := r.Invoke(context.Background(), signedIx(solana.NewWallet().PublicKey(), signer, solana.NewWallet().PublicKey()),
		[]*AccountInfo{{Key: signer, IsSigner: true}})
	assert.Error(t, err)
	assert.Empty(t, r.Invocations())
}

func TestRecorder_MissingSignature(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	r := NewRecorder(solana.NewWallet().PublicKey())

	err := r.Invoke(context.Background(), signedIx(solana.NewWallet().PublicKey(), signer, other),
		[]*AccountInfo{{Key: signer}, {Key: other}})
	assert.Error(t, err)
}

func TestRecorder_PDASignature(t *testing.T) {
	caller := solana.NewWallet().PublicKey()
	seed := []byte("seed")
	pda, bump, err := solana.FindProgramAddress([][]byte{seed}, caller)
	require.NoError(t, err)
	other := solana.NewWallet().PublicKey()

	r := NewRecorder(caller)
	ix := signedIx(solana.NewWallet().PublicKey(), pda, other)
	accounts := []*AccountInfo{{Key: pda}, {Key: other}}

	require.Error(t, r.Invoke(context.Background(), ix, accounts))
	require.NoError(t, r.InvokeSigned(context.Background(), ix, accounts, [][]byte{seed, {bump}}))

	calls := r.Invocations()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Signed)
}

func TestRecorder_InjectedFailures(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	callee := solana.NewWallet().PublicKey()
	accounts := []*AccountInfo{{Key: signer, IsSigner: true}, {Key: other}}

	boom := errors.New("callee failed")
	r := NewRecorder(solana.NewWallet().PublicKey())
	r.FailAt[1] = boom

	require.NoError(t, r.Invoke(context.Background(), signedIx(callee, signer, other), accounts))
	assert.Same(t, boom, r.Invoke(context.Background(), signedIx(callee, signer, other), accounts))

	r = NewRecorder(solana.NewWallet().PublicKey())
	r.FailPrograms[callee] = boom
	assert.Same(t, boom, r.Invoke(context.Background(), signedIx(callee, signer, other), accounts))
	assert.Empty(t, r.Invocations())
}

func TestRecorder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRecorder(solana.NewWallet().PublicKey())
	err := r.Invoke(ctx, signedIx(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogf_And_MultiLogger(t *testing.T) {
	a := NewRecorder(solana.PublicKey{})
	b := NewRecorder(solana.PublicKey{})
	Logf(MultiLogger{a, nil, b}, "BONO amount in u64: %d", 42)
	Logf(nil, "ignored")

	assert.Equal(t, []string{"BONO amount in u64: 42"}, a.Logs())
	assert.Equal(t, a.Logs(), b.Logs())
}
