package cmd

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/credit-program/internal/authority"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/processor"
)

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		decodeEncoding = "hex"
		poolsLive = false
		rpcURL = ""
	})

	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func run(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		return nil, err
	}
	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v), string(out))
	return v, nil
}

func runList(t *testing.T, args ...string) []map[string]any {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err)
	var v []map[string]any
	require.NoError(t, json.Unmarshal(out, &v), string(out))
	return v
}

// whirlpoolRPC serves getAccountInfo with w for every address.
func whirlpoolRPC(t *testing.T, w *orca.Whirlpool) *httptest.Server {
	t.Helper()
	data := base64.StdEncoding.EncodeToString(orca.EncodeWhirlpool(w))
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Method != "getAccountInfo" {
			fmt.Fprintf(rw, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"not stubbed"}}`, req.ID)
			return
		}
		fmt.Fprintf(rw, `{"jsonrpc":"2.0","id":%d,"result":{"context":{"slot":1},"value":{"lamports":1,"owner":%q,"executable":false,"rentEpoch":0,"data":[%q,"base64"]}}}`,
			req.ID, orca.WhirlpoolProgramID.String(), data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDecode(t *testing.T) {
	got, err := run(t, "decode", "0100ca9a3b00000000")
	require.NoError(t, err)
	assert.Equal(t, "read_bono_price", got["instruction"])
	assert.EqualValues(t, 1_000_000_000, got["bono_amount"])

	got, err = run(t, "decode", "--encoding", "base64", "AEBCDwAAAAAAZAAAAAAAAAA=")
	require.NoError(t, err)
	assert.Equal(t, "swap", got["instruction"])
	assert.EqualValues(t, 1_000_000, got["usdc_amount"])
	assert.EqualValues(t, 100, got["bono_amount_threshold"])
}

func TestDecode_Invalid(t *testing.T) {
	_, err := run(t, "decode", "02")
	assert.ErrorContains(t, err, "unknown instruction tag")

	_, err = run(t, "decode", "01ff")
	assert.Error(t, err)

	_, err = run(t, "decode", "--encoding", "rot13", "01")
	assert.ErrorContains(t, err, "unknown encoding")
}

func TestAuthority(t *testing.T) {
	want, err := authority.Derive(processor.ProgramID)
	require.NoError(t, err)

	got, err := run(t, "authority")
	require.NoError(t, err)
	assert.Equal(t, processor.ProgramID.String(), got["program_id"])
	assert.Equal(t, want.Address.String(), got["authority"])
	assert.EqualValues(t, want.Bump, got["bump"])
}

func TestPools(t *testing.T) {
	rows := runList(t, "pools")
	require.Len(t, rows, 1)
	assert.Equal(t, orca.BonoUSDCPoolName, rows[0]["name"])
	assert.Equal(t, orca.BonoUSDCPoolAddress, rows[0]["address"])
	assert.NotContains(t, rows[0], "price")
}

func TestPools_Live(t *testing.T) {
	srv := whirlpoolRPC(t, &orca.Whirlpool{
		TokenMintA:       solana.MustPublicKeyFromBase58(orca.BonoMint),
		TokenMintB:       solana.MustPublicKeyFromBase58(orca.USDCMint),
		SqrtPrice:        uint128.From64(922337203685477581),
		Liquidity:        uint128.From64(5000),
		TickCurrentIndex: -59918,
	})

	rows := runList(t, "pools", "--live", "--rpc", srv.URL)
	require.Len(t, rows, 1)
	assert.Equal(t, "2.500000", rows[0]["price"])
	assert.Equal(t, "922337203685477581", rows[0]["sqrt_price"])
	assert.Equal(t, "5000", rows[0]["liquidity"])
	assert.EqualValues(t, -59918, rows[0]["tick_current_index"])
	assert.NotContains(t, rows[0], "error")
}

func TestPools_LiveMintMismatch(t *testing.T) {
	srv := whirlpoolRPC(t, &orca.Whirlpool{
		TokenMintA: solana.NewWallet().PublicKey(),
		TokenMintB: solana.MustPublicKeyFromBase58(orca.USDCMint),
		SqrtPrice:  uint128.From64(922337203685477581),
	})

	rows := runList(t, "pools", "--live", "--rpc", srv.URL)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0]["error"], "do not match registry")
	assert.NotContains(t, rows[0], "price")
}
