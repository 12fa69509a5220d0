package authority

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

var programID = solana.MustPublicKeyFromBase58("82XBkYcPfaevmCNDJwV4EPcDrhWbvonN9iCUJaorfCRj")

func TestDerive_Deterministic(t *testing.T) {
	a1, err := Derive(programID)
	require.NoError(t, err)
	a2, err := Derive(programID)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)

	expected, err := solana.CreateProgramAddress([][]byte{SigningSeed, {a1.Bump}}, programID)
	require.NoError(t, err)
	assert.Equal(t, expected, a1.Address)
}

func TestDerive_DependsOnProgram(t *testing.T) {
	other := solana.NewWallet().PublicKey()

	a, err := Derive(programID)
	require.NoError(t, err)
	b, err := Derive(other)
	require.NoError(t, err)

	assert.NotEqual(t, a.Address, b.Address)
}

func TestVerify(t *testing.T) {
	a, err := Derive(programID)
	require.NoError(t, err)

	got, err := Verify(programID, a.Address)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	for i := 0; i < 5; i++ {
		_, err := Verify(programID, solana.NewWallet().PublicKey())
		assert.ErrorIs(t, err, programerr.ErrInvalidAccountData)
	}

	_, err = Verify(programID, programID)
	assert.ErrorIs(t, err, programerr.ErrInvalidAccountData)
}

func TestSignerSeeds(t *testing.T) {
	a := Authority{Bump: 254}
	assert.Equal(t, [][]byte{[]byte("CREDIT_SIGNING_PDA"), {254}}, a.SignerSeeds())
}
