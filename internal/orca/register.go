package orca

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// Defaults for the BONO/USDC pool the program trades against.
const (
	BonoUSDCPoolName    = "BONO/USDC"
	BonoUSDCPoolAddress = "DBJ5hywaJQKfjyt8Ekng4t6KB1gvqnYFdcJoTppCNikt"
	BonoMint            = "CzYSquESBM4qVQiFas6pSMgeFRG4JLiYyNYHQUcNxudc"
	USDCMint            = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	BonoDecimals        = 9
	USDCDecimals        = 6
)

// PoolConfig represents a pool entry in the JSON or YAML registry file
type PoolConfig struct {
	Name       string   `json:"name" yaml:"name"`
	Address    string   `json:"address" yaml:"address"`
	ProgramID  string   `json:"program_id,omitempty" yaml:"program_id,omitempty"`
	TokenMintA string   `json:"token_mint_a" yaml:"token_mint_a"`
	TokenMintB string   `json:"token_mint_b" yaml:"token_mint_b"`
	DecimalsA  uint8    `json:"decimals_a" yaml:"decimals_a"`
	DecimalsB  uint8    `json:"decimals_b" yaml:"decimals_b"`
	TickArrays []string `json:"tick_arrays,omitempty" yaml:"tick_arrays,omitempty"`
}

// Pool represents a parsed, ready-to-use pool configuration
type Pool struct {
	Name       string
	Address    solana.PublicKey
	ProgramID  solana.PublicKey
	TokenMintA solana.PublicKey
	TokenMintB solana.PublicKey
	DecimalsA  uint8
	DecimalsB  uint8
	// TickArrays are optional defaults for swaps; nil when not configured.
	TickArrays *[3]solana.PublicKey
}

// PoolRegistry holds all configured pools
type PoolRegistry struct {
	pools []Pool
}

// DefaultPoolConfigs returns the built-in registry.
func DefaultPoolConfigs() []PoolConfig {
	return []PoolConfig{{
		Name:       BonoUSDCPoolName,
		Address:    BonoUSDCPoolAddress,
		TokenMintA: BonoMint,
		TokenMintB: USDCMint,
		DecimalsA:  BonoDecimals,
		DecimalsB:  USDCDecimals,
	}}
}

// NewPoolRegistry loads pools from path, or the built-in registry when path is empty.
func NewPoolRegistry(path string) (*PoolRegistry, error) {
	configs := DefaultPoolConfigs()
	if path != "" {
		var err error
		if configs, err = LoadPoolConfigs(path); err != nil {
			return nil, fmt.Errorf("failed to load pools: %w", err)
		}
	}
	return NewPoolRegistryFromConfigs(configs)
}

// NewPoolRegistryFromConfigs validates configs and builds a registry.
func NewPoolRegistryFromConfigs(configs []PoolConfig) (*PoolRegistry, error) {
	pools := make([]Pool, 0, len(configs))
	seen := make(map[string]bool, len(configs))
	for i, cfg := range configs {
		pool, err := parsePoolConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): %w", i, cfg.Name, err)
		}
		if seen[pool.Name] {
			return nil, fmt.Errorf("pool %d: duplicate name %q", i, pool.Name)
		}
		seen[pool.Name] = true
		pools = append(pools, pool)
	}
	return &PoolRegistry{pools: pools}, nil
}

// LoadPoolConfigs reads a registry file. .yaml and .yml files are parsed as
// YAML, anything else as JSON.
func LoadPoolConfigs(path string) ([]PoolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var configs []PoolConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configs); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &configs); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	return configs, nil
}

func parseKey(field, s string) (solana.PublicKey, error) {
	k, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", field, err)
	}
	return k, nil
}

// parsePoolConfig converts a config struct to a Pool with validation
func parsePoolConfig(cfg PoolConfig) (Pool, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return Pool{}, fmt.Errorf("name is required")
	}

	pool := Pool{
		Name:      cfg.Name,
		ProgramID: WhirlpoolProgramID,
		DecimalsA: cfg.DecimalsA,
		DecimalsB: cfg.DecimalsB,
	}

	var err error
	if pool.Address, err = parseKey("address", cfg.Address); err != nil {
		return Pool{}, err
	}
	if pool.TokenMintA, err = parseKey("token_mint_a", cfg.TokenMintA); err != nil {
		return Pool{}, err
	}
	if pool.TokenMintB, err = parseKey("token_mint_b", cfg.TokenMintB); err != nil {
		return Pool{}, err
	}
	if cfg.ProgramID != "" {
		if pool.ProgramID, err = parseKey("program_id", cfg.ProgramID); err != nil {
			return Pool{}, err
		}
	}

	switch len(cfg.TickArrays) {
	case 0:
	case 3:
		var ticks [3]solana.PublicKey
		for i, s := range cfg.TickArrays {
			if ticks[i], err = parseKey(fmt.Sprintf("tick_arrays[%d]", i), s); err != nil {
				return Pool{}, err
			}
		}
		pool.TickArrays = &ticks
	default:
		return Pool{}, fmt.Errorf("tick_arrays: expected 3 entries, got %d", len(cfg.TickArrays))
	}

	return pool, nil
}

// FindPoolByName searches for a pool by its name
func (r *PoolRegistry) FindPoolByName(name string) (*Pool, error) {
	for i := range r.pools {
		if r.pools[i].Name == name {
			return &r.pools[i], nil
		}
	}
	return nil, fmt.Errorf("pool not found: %s", name)
}

// GetAllPools returns all registered pools
func (r *PoolRegistry) GetAllPools() []Pool {
	return r.pools
}

// PoolCount returns the number of registered pools
func (r *PoolRegistry) PoolCount() int {
	return len(r.pools)
}
