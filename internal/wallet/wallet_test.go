package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKey(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	fromBase58, err := parsePrivateKey(base58.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), fromBase58.PublicKey())

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	fromJSON, err := parsePrivateKey(" " + string(raw) + "\n")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), fromJSON.PublicKey())
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	for _, s := range []string{"0OIl", base58.Encode([]byte{1, 2, 3}), "[1,2,3]", "[300]", "[1,"} {
		_, err := parsePrivateKey(s)
		assert.Error(t, err, s)
	}
}

func TestParsePrivateKey_MismatchedHalves(t *testing.T) {
	key := append([]byte{}, solana.NewWallet().PrivateKey...)
	copy(key[32:], solana.NewWallet().PublicKey().Bytes())

	_, err := parsePrivateKey(base58.Encode(key))
	assert.ErrorContains(t, err, "does not match")
}

func TestLoadPrivateKey_File(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	got, err := loadPrivateKey(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), got.PublicKey())

	_, err = loadPrivateKey(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read keypair file")
}

func TestNewWallet_Validation(t *testing.T) {
	_, err := NewWallet(WalletConfig{PrivateKey: "x"})
	assert.ErrorContains(t, err, "RPCURL")

	_, err = NewWallet(WalletConfig{RPCURL: "http://localhost:8899"})
	assert.ErrorContains(t, err, "PrivateKey")
}

// rpcStub answers JSON-RPC calls by method name.
func rpcStub(t *testing.T, answers map[string]func(params []json.RawMessage) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		answer, ok := answers[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"error":{"code":-32601,"message":"method %s not stubbed"}}`, req.Method)
			return
		}
		fmt.Fprint(w, answer(req.Params))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestWallet(t *testing.T, url string) *Wallet {
	t.Helper()
	w, err := NewWallet(WalletConfig{
		RPCURL:       url,
		Timeout:      time.Second,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
		PrivateKey:   base58.Encode(solana.NewWallet().PrivateKey),
	})
	require.NoError(t, err)
	return w
}

func blockhashAnswer(_ []json.RawMessage) string {
	return fmt.Sprintf(`{"result":{"context":{"slot":1},"value":{"blockhash":%q,"lastValidBlockHeight":10}}}`,
		solana.HashFromBytes(make([]byte, 32)).String())
}

func TestWallet_BuildSignSend(t *testing.T) {
	var sendCfg map[string]any
	srv := rpcStub(t, map[string]func([]json.RawMessage) string{
		"getLatestBlockhash": blockhashAnswer,
		"sendTransaction": func(params []json.RawMessage) string {
			require.Len(t, params, 2)
			require.NoError(t, json.Unmarshal(params[1], &sendCfg))
			return `{"result":"5ig"}`
		},
	})
	w := newTestWallet(t, srv.URL)

	ix := solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{solana.Meta(w.PublicKey()).SIGNER()}, []byte("hi"))
	tx, err := w.BuildTransaction(context.Background(), []solana.Instruction{ix})
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), tx.Message.AccountKeys[0])

	require.NoError(t, w.SignTx(tx))
	require.Len(t, tx.Signatures, 1)

	opts := w.SendOptions()
	sig, err := w.SendTx(context.Background(), tx, &opts)
	require.NoError(t, err)
	assert.Equal(t, "5ig", sig)
	assert.Equal(t, "base64", sendCfg["encoding"])
	assert.Equal(t, "processed", sendCfg["preflightCommitment"])
	assert.EqualValues(t, 3, sendCfg["maxRetries"])
}

func TestWallet_SendTx_RPCError(t *testing.T) {
	srv := rpcStub(t, map[string]func([]json.RawMessage) string{
		"getLatestBlockhash": blockhashAnswer,
		"sendTransaction": func([]json.RawMessage) string {
			return `{"error":{"code":-32002,"message":"insufficient funds for fee"}}`
		},
	})
	w := newTestWallet(t, srv.URL)

	tx, err := w.BuildTransaction(context.Background(), []solana.Instruction{
		solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, nil),
	})
	require.NoError(t, err)
	require.NoError(t, w.SignTx(tx))

	_, err = w.SendTx(context.Background(), tx, nil)
	assert.ErrorContains(t, err, "insufficient funds for fee")
}

func TestWallet_SimulateTransaction(t *testing.T) {
	var simCfg map[string]any
	fail := false
	srv := rpcStub(t, map[string]func([]json.RawMessage) string{
		"getLatestBlockhash": blockhashAnswer,
		"simulateTransaction": func(params []json.RawMessage) string {
			require.NoError(t, json.Unmarshal(params[1], &simCfg))
			if fail {
				return `{"result":{"context":{"slot":1},"value":{"err":{"InstructionError":[0,{"Custom":1}]},"logs":["Program log: boom"],"unitsConsumed":7}}}`
			}
			return `{"result":{"context":{"slot":1},"value":{"err":null,"logs":["Program log: ok"],"unitsConsumed":42}}}`
		},
	})
	w := newTestWallet(t, srv.URL)

	tx, err := w.BuildTransaction(context.Background(), []solana.Instruction{
		solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, nil),
	})
	require.NoError(t, err)

	res, err := w.SimulateTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, uint64(42), res.UnitsConsumed)
	assert.Equal(t, []string{"Program log: ok"}, res.Logs)
	assert.Equal(t, false, simCfg["sigVerify"])
	assert.Equal(t, true, simCfg["replaceRecentBlockhash"])

	fail = true
	res, err = w.SimulateTransaction(context.Background(), tx)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Custom")
	assert.Equal(t, []string{"Program log: boom"}, res.Logs)
}

func TestWallet_ConfirmTransaction(t *testing.T) {
	statuses := []string{
		`{"result":{"context":{"slot":1},"value":[null]}}`,
		`{"result":{"context":{"slot":1},"value":[{"slot":5,"err":null,"confirmationStatus":"processed"}]}}`,
		`{"result":{"context":{"slot":1},"value":[{"slot":5,"err":null,"confirmationStatus":"confirmed"}]}}`,
	}
	calls := 0
	srv := rpcStub(t, map[string]func([]json.RawMessage) string{
		"getSignatureStatuses": func([]json.RawMessage) string {
			s := statuses[min(calls, len(statuses)-1)]
			calls++
			return s
		},
	})
	w := newTestWallet(t, srv.URL)

	require.NoError(t, w.ConfirmTransaction(context.Background(), "sig", "confirmed", 10*time.Second))
	assert.Equal(t, 3, calls)
}

func TestWallet_ConfirmTransaction_Failed(t *testing.T) {
	srv := rpcStub(t, map[string]func([]json.RawMessage) string{
		"getSignatureStatuses": func([]json.RawMessage) string {
			return `{"result":{"context":{"slot":1},"value":[{"slot":5,"err":{"InstructionError":[0,{"Custom":6003}]},"confirmationStatus":"confirmed"}]}}`
		},
	})
	w := newTestWallet(t, srv.URL)

	err := w.ConfirmTransaction(context.Background(), "sig", "confirmed", time.Second)
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Contains(t, err.Error(), "6003")
}

func TestWallet_ConfirmTransaction_Timeout(t *testing.T) {
	srv := rpcStub(t, map[string]func([]json.RawMessage) string{
		"getSignatureStatuses": func([]json.RawMessage) string {
			return `{"result":{"context":{"slot":1},"value":[null]}}`
		},
	})
	w := newTestWallet(t, srv.URL)

	err := w.ConfirmTransaction(context.Background(), "sig", "finalized", 200*time.Millisecond)
	assert.ErrorContains(t, err, "not confirmed")
}
