package token

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

// AccountSize is the byte length of an SPL token account.
const AccountSize = 165

// Token-2022 program; accounts of both programs share the base layout.
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// Snapshot is a read-only view of a token account's holdings.
type Snapshot struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           uint8
	DelegatedAmount uint64
}

// ParseSnapshot decodes the base SPL token account layout. Token-2022
// accounts may carry extensions after the first AccountSize bytes.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < AccountSize {
		return nil, programerr.Newf(programerr.CodeInvalidAccountData,
			"token account: expected at least %d bytes, got %d", AccountSize, len(data))
	}

	s, err := decodeSnapshot(bin.NewBinDecoder(data[:AccountSize]))
	if err != nil {
		return nil, programerr.Wrap(programerr.CodeInvalidAccountData, "token account", err)
	}
	if s.State == 0 {
		return nil, programerr.New(programerr.CodeInvalidAccountData, "token account is not initialized")
	}
	return s, nil
}

func decodeSnapshot(dec *bin.Decoder) (*Snapshot, error) {
	var s Snapshot

	mint, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	s.Mint = solana.PublicKeyFromBytes(mint)

	owner, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	s.Owner = solana.PublicKeyFromBytes(owner)

	if s.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}

	delegate, err := readOptionalKey(dec)
	if err != nil {
		return nil, fmt.Errorf("delegate: %w", err)
	}
	s.Delegate = delegate

	if s.State, err = dec.ReadUint8(); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	// is_native: COption<u64>
	if _, err := dec.ReadNBytes(4 + 8); err != nil {
		return nil, fmt.Errorf("is_native: %w", err)
	}

	if s.DelegatedAmount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("delegated_amount: %w", err)
	}

	// close_authority: COption<Pubkey>
	if _, err := readOptionalKey(dec); err != nil {
		return nil, fmt.Errorf("close_authority: %w", err)
	}

	return &s, nil
}

// readOptionalKey reads a COption<Pubkey>: a u32 tag followed by 32 bytes.
func readOptionalKey(dec *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		key := solana.PublicKeyFromBytes(raw)
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}
}

// EncodeSnapshot writes s in the SPL token account layout. Used by tests and
// local fixtures.
func EncodeSnapshot(s Snapshot) []byte {
	out := make([]byte, AccountSize)
	copy(out[0:32], s.Mint[:])
	copy(out[32:64], s.Owner[:])
	binary.LittleEndian.PutUint64(out[64:72], s.Amount)
	if s.Delegate != nil {
		binary.LittleEndian.PutUint32(out[72:76], 1)
		copy(out[76:108], s.Delegate[:])
	}
	state := s.State
	if state == 0 {
		state = 1
	}
	out[108] = state
	binary.LittleEndian.PutUint64(out[121:129], s.DelegatedAmount)
	return out
}
