package authority

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

// SigningSeed is the fixed seed of the program's signing PDA.
var SigningSeed = []byte("CREDIT_SIGNING_PDA")

// Authority is the program-derived signing address and its bump.
type Authority struct {
	Address solana.PublicKey
	Bump    uint8
}

// Derive returns the signing PDA of programID. It is a pure function of the
// seed and programID.
func Derive(programID solana.PublicKey) (Authority, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{SigningSeed}, programID)
	if err != nil {
		return Authority{}, fmt.Errorf("derive signing authority: %w", err)
	}
	return Authority{Address: addr, Bump: bump}, nil
}

// Verify derives the authority of programID and checks that supplied is it.
func Verify(programID, supplied solana.PublicKey) (Authority, error) {
	a, err := Derive(programID)
	if err != nil {
		return Authority{}, programerr.Wrap(programerr.CodeInvalidAccountData, "signing authority", err)
	}
	if !a.Address.Equals(supplied) {
		return Authority{}, programerr.Newf(programerr.CodeInvalidAccountData,
			"signing authority mismatch: expected %s, got %s", a.Address, supplied)
	}
	return a, nil
}

// SignerSeeds returns the seeds that let the program sign for the authority.
func (a Authority) SignerSeeds() [][]byte {
	return [][]byte{SigningSeed, {a.Bump}}
}
