package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/config"
	projectrpc "github.com/aman-zulfiqar/credit-program/internal/rpc"
)

type WalletConfig struct {
	RPCURL       string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	PrivateKey string // base58 64-byte key, solana-keygen JSON array, or path to a keypair .json

	DefaultCommitment   string // e.g. "confirmed"
	SkipPreflight       bool
	PreflightCommitment string // e.g. "processed"

	Logger *logrus.Logger
}

type Wallet struct {
	cfg  WalletConfig
	rpc  *projectrpc.Client
	priv solana.PrivateKey
	pub  solana.PublicKey
}

func NewWallet(cfg WalletConfig) (*Wallet, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("wallet: RPCURL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 1 * time.Second
	}
	if cfg.DefaultCommitment == "" {
		cfg.DefaultCommitment = "confirmed"
	}
	if cfg.PreflightCommitment == "" {
		cfg.PreflightCommitment = "processed"
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, fmt.Errorf("wallet: PrivateKey is required")
	}

	priv, err := loadPrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	rpcClient := projectrpc.NewClient(projectrpc.ClientConfig{
		BaseURL:      cfg.RPCURL,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       cfg.Logger,
	})

	pub := priv.PublicKey()

	return &Wallet{
		cfg:  cfg,
		rpc:  rpcClient,
		priv: priv,
		pub:  pub,
	}, nil
}

// NewWalletFromConfig builds a wallet from the loaded configuration.
func NewWalletFromConfig(cfg *config.Config, logger *logrus.Logger) (*Wallet, error) {
	return NewWallet(WalletConfig{
		RPCURL:            cfg.RPC.URL,
		Timeout:           cfg.RPC.Timeout,
		MaxRetries:        cfg.RPC.MaxRetries,
		RetryBackoff:      cfg.RPC.RetryBackoff,
		PrivateKey:        cfg.Wallet.PrivateKey,
		DefaultCommitment: cfg.Wallet.Commitment,
		Logger:            logger,
	})
}

func (w *Wallet) Address() string             { return w.pub.String() }
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

func (w *Wallet) log() *logrus.Entry {
	if w.cfg.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return w.cfg.Logger.WithField("wallet", w.pub.String())
}

// SendOptions returns DefaultSendOptions adjusted by the wallet config.
func (w *Wallet) SendOptions() SendOptions {
	o := DefaultSendOptions()
	o.SkipPreflight = w.cfg.SkipPreflight
	o.PreflightCommitment = w.cfg.PreflightCommitment
	return o
}

// loadPrivateKey accepts a base58 key, a solana-keygen JSON byte array, or
// the path of a keypair file holding the JSON array.
func loadPrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".json") && !strings.HasPrefix(s, "[") {
		raw, err := os.ReadFile(s)
		if err != nil {
			return nil, fmt.Errorf("wallet: read keypair file: %w", err)
		}
		return parsePrivateKey(string(raw))
	}
	return parsePrivateKey(s)
}

func parsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)

	var raw []byte
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
			}
			raw[i] = byte(v)
		}
	} else {
		var err error
		if raw, err = base58.Decode(s); err != nil {
			return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
		}
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	// the second half of a keypair is its public key
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]).Public().(ed25519.PublicKey)
	if !bytes.Equal(derived, raw[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("wallet: keypair public half does not match its seed")
	}
	return solana.PrivateKey(raw), nil
}
