package programerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Wrap(CodeInvalidInstructionData, "swap payload", errors.New("short buffer"))

	assert.ErrorIs(t, err, ErrInvalidInstructionData)
	assert.NotErrorIs(t, err, ErrInvalidAccountData)

	wrapped := fmt.Errorf("dispatch: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidInstructionData)
}

func TestError_Message(t *testing.T) {
	err := Newf(CodeInsufficientFunds, "balance %d below %d", 1, 2)
	assert.Equal(t, "InsufficientFunds: balance 1 below 2", err.Error())

	withCause := Wrap(CodeInvalidAccountData, "whirlpool", errors.New("eof"))
	assert.Equal(t, "InvalidAccountData: whirlpool: eof", withCause.Error())
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("outer: %w", ErrNotEnoughAccountKeys))
	assert.True(t, ok)
	assert.Equal(t, CodeNotEnoughAccountKeys, code)

	_, ok = CodeOf(errors.New("token program rejected approve"))
	assert.False(t, ok)
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "IncorrectProgramId", CodeIncorrectProgramID.String())
	assert.Equal(t, "Code(99)", Code(99).String())
}
