// Package instruction decodes and encodes the credit program's instruction data.
//
// Wire format: byte 0 is the variant tag, the rest is the Borsh encoding of the
// variant payload (fixed-width little-endian integers).
package instruction

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

// Tag selects the instruction variant.
type Tag uint8

const (
	TagSwap          Tag = 0
	TagReadBonoPrice Tag = 1
)

func (t Tag) String() string {
	switch t {
	case TagSwap:
		return "swap"
	case TagReadBonoPrice:
		return "read_bono_price"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Instruction is one of Swap or ReadBonoPrice.
type Instruction interface {
	Tag() Tag
	Pack() ([]byte, error)
}

// Swap exchanges USDCAmount of the signer's USDC for at least
// BonoAmountThreshold BONO.
type Swap struct {
	USDCAmount          uint64
	BonoAmountThreshold uint64
}

// ReadBonoPrice reports the USDC value of BonoAmount raw BONO units.
type ReadBonoPrice struct {
	BonoAmount uint64
}

type swapPayload struct {
	USDCAmount          uint64
	BonoAmountThreshold uint64
}

type readBonoPricePayload struct {
	BonoAmount uint64
}

func (Swap) Tag() Tag          { return TagSwap }
func (ReadBonoPrice) Tag() Tag { return TagReadBonoPrice }

func (s Swap) Pack() ([]byte, error) {
	return pack(TagSwap, swapPayload{USDCAmount: s.USDCAmount, BonoAmountThreshold: s.BonoAmountThreshold})
}

func (r ReadBonoPrice) Pack() ([]byte, error) {
	return pack(TagReadBonoPrice, readBonoPricePayload{BonoAmount: r.BonoAmount})
}

func pack(tag Tag, payload any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(tag))
	if err := bin.NewBorshEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", tag, err)
	}
	return buf.Bytes(), nil
}

// Unpack decodes raw instruction data. Every malformed input yields an
// InvalidInstructionData error.
func Unpack(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, programerr.Wrap(programerr.CodeInvalidInstructionData, "empty instruction data", nil)
	}

	tag, rest := Tag(data[0]), data[1:]
	switch tag {
	case TagSwap:
		var p swapPayload
		if err := decodeExact(rest, &p); err != nil {
			return nil, programerr.Wrap(programerr.CodeInvalidInstructionData, "invalid data payload for swap", err)
		}
		return Swap{USDCAmount: p.USDCAmount, BonoAmountThreshold: p.BonoAmountThreshold}, nil
	case TagReadBonoPrice:
		var p readBonoPricePayload
		if err := decodeExact(rest, &p); err != nil {
			return nil, programerr.Wrap(programerr.CodeInvalidInstructionData, "invalid data payload for read_bono_price", err)
		}
		return ReadBonoPrice{BonoAmount: p.BonoAmount}, nil
	default:
		return nil, programerr.Newf(programerr.CodeInvalidInstructionData, "unknown instruction tag %d", uint8(tag))
	}
}

// decodeExact decodes v from data and rejects trailing bytes.
func decodeExact(data []byte, v any) error {
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if n := dec.Remaining(); n != 0 {
		return fmt.Errorf("%d unexpected trailing bytes", n)
	}
	return nil
}
