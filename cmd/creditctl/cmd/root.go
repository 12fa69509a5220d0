package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/credit-program/internal/cache"
	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/config"
	"github.com/aman-zulfiqar/credit-program/internal/flags"
	"github.com/aman-zulfiqar/credit-program/internal/metrics"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/rpc"
	"github.com/aman-zulfiqar/credit-program/internal/wallet"
)

var (
	cfgFile  string
	rpcURL   string
	useRedis bool

	cfg       *config.Config
	logger    *logrus.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "creditctl",
	Short: "Client for the BONO credit program",
	Long: `creditctl builds, simulates and sends credit program instructions.

It provides commands for:
- Deriving the program's signing authority
- Reading the BONO price of a whirlpool
- Swapping USDC for BONO through the program
- Decoding raw instruction data`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if rpcURL != "" {
			c.RPC.URL = rpcURL
		}
		cfg = c

		logger, logCloser, err = cfg.Log.NewLogger()
		if err != nil {
			return err
		}
		logger.SetOutput(cmd.ErrOrStderr())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./credit.yaml or $HOME/credit.yaml)")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "Solana RPC endpoint, overrides rpc.url")
	rootCmd.PersistentFlags().BoolVar(&useRedis, "redis", false, "record quotes and honour swap flags in Redis")
}

// deps holds the clients shared by the subcommands.
type deps struct {
	rpc       *rpc.Client
	pools     *orca.PoolRegistry
	orca      *orca.Client
	builder   *client.Builder
	metrics   *metrics.Metrics
	simulator *client.Simulator
}

func newDeps() (*deps, error) {
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPC.URL,
		Timeout:      cfg.RPC.Timeout,
		MaxRetries:   cfg.RPC.MaxRetries,
		RetryBackoff: cfg.RPC.RetryBackoff,
		Logger:       logger,
	})
	pools, err := orca.NewPoolRegistry(cfg.Pools.Path)
	if err != nil {
		return nil, err
	}
	builder, err := client.NewBuilder(cfg.ProgramID())
	if err != nil {
		return nil, err
	}
	m := metrics.New(nil, nil)
	return &deps{
		rpc:       rpcClient,
		pools:     pools,
		orca:      orca.NewClient(rpcClient),
		builder:   builder,
		metrics:   m,
		simulator: client.NewSimulator(rpcClient, m, logger),
	}, nil
}

// executor builds an Executor around the configured wallet. With --redis the
// swap flags gate submissions, results are recorded in the cache and the
// daily USDC limit is counted per signer in Redis. The returned func releases
// the Redis connection.
func (d *deps) executor(ctx context.Context, remoteSim bool) (*client.Executor, func(), error) {
	w, err := wallet.NewWalletFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	riskCfg := client.RiskConfig{
		MaxUSDCAmount:  cfg.Risk.MaxUSDCAmount,
		DailyLimitUSDC: cfg.Risk.DailyLimitUSDC,
		MaxSlippageBps: cfg.Risk.MaxSlippageBps,
	}
	opts := []client.ExecutorOption{
		client.WithExecutorMetrics(d.metrics),
		client.WithExecutorLogger(logger),
	}
	cleanup := func() {}

	if useRedis {
		rc := redis.NewClient(cache.RedisOptions(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx).Err(); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		store, err := flags.NewStore(rc)
		if err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		pc, err := cache.NewPriceCache(rc, cfg.Redis.QuoteTTL)
		if err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		usage, err := cache.NewRiskUsage(rc, w.PublicKey().String())
		if err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		opts = append(opts,
			client.WithSwapGate(store),
			client.WithRecorder(cache.NewSink(pc, cache.NewPubSubManager(rc, logger), nil)),
			client.WithRiskManager(client.NewRiskManagerWithStore(riskCfg, usage)),
		)
		cleanup = func() { _ = rc.Close() }
	} else {
		if riskCfg.DailyLimitUSDC > 0 {
			logger.Warn("risk.daily_limit_usdc only counts swaps of this run without --redis")
		}
		opts = append(opts, client.WithRiskManager(client.NewRiskManager(riskCfg)))
	}

	exec := client.NewExecutor(w, d.rpc, d.pools, d.orca, d.builder, client.ExecutorConfig{
		Commitment:       cfg.Wallet.Commitment,
		RemoteSimulation: remoteSim,
		SendOptions:      w.SendOptions(),
	}, opts...)
	return exec, cleanup, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
