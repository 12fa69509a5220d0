package instruction

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/credit-program/internal/programerr"
)

func TestUnpack_Swap(t *testing.T) {
	data := make([]byte, 17)
	data[0] = 0
	binary.LittleEndian.PutUint64(data[1:9], 1_000_000)
	binary.LittleEndian.PutUint64(data[9:17], 380_000_000)

	ix, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, Swap{USDCAmount: 1_000_000, BonoAmountThreshold: 380_000_000}, ix)
	assert.Equal(t, TagSwap, ix.Tag())
}

func TestUnpack_ReadBonoPrice(t *testing.T) {
	data := make([]byte, 9)
	data[0] = 1
	binary.LittleEndian.PutUint64(data[1:], 2_000_000_000)

	ix, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, ReadBonoPrice{BonoAmount: 2_000_000_000}, ix)
}

func TestUnpack_ReadBonoPriceZero(t *testing.T) {
	ix, err := Unpack([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, ReadBonoPrice{BonoAmount: 0}, ix)
}

func TestUnpack_UnknownTag(t *testing.T) {
	for tag := 2; tag <= math.MaxUint8; tag++ {
		data := append([]byte{byte(tag)}, make([]byte, 16)...)
		_, err := Unpack(data)
		require.Error(t, err, "tag %d", tag)
		assert.ErrorIs(t, err, programerr.ErrInvalidInstructionData)
	}
}

func TestUnpack_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":              {},
		"swap no payload":    {0},
		"swap short":         {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		"swap trailing":      append([]byte{0}, make([]byte, 17)...),
		"read short":         {1, 1, 2, 3},
		"read trailing byte": append([]byte{1}, make([]byte, 9)...),
		"read swap-sized":    append([]byte{1}, make([]byte, 16)...),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			ix, err := Unpack(data)
			assert.Nil(t, ix)
			assert.ErrorIs(t, err, programerr.ErrInvalidInstructionData)
		})
	}
}

func TestPack_RoundTrip(t *testing.T) {
	pairs := [][2]uint64{
		{0, 0},
		{1, math.MaxUint64},
		{math.MaxUint64, 1},
		{1_000_000, 380_000_000},
		{0x0102030405060708, 0x1112131415161718},
	}

	for _, p := range pairs {
		want := Swap{USDCAmount: p[0], BonoAmountThreshold: p[1]}
		data, err := want.Pack()
		require.NoError(t, err)
		require.Len(t, data, 17)
		assert.Equal(t, byte(TagSwap), data[0])

		got, err := Unpack(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	data, err := ReadBonoPrice{BonoAmount: 42}.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 42, 0, 0, 0, 0, 0, 0, 0}, data)
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "swap", TagSwap.String())
	assert.Equal(t, "read_bono_price", TagReadBonoPrice.String())
	assert.Equal(t, "tag(7)", Tag(7).String())
}
