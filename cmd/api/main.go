package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/cache"
	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/config"
	"github.com/aman-zulfiqar/credit-program/internal/flags"
	"github.com/aman-zulfiqar/credit-program/internal/metrics"
	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/rpc"
	"github.com/aman-zulfiqar/credit-program/internal/server"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
	"github.com/aman-zulfiqar/credit-program/internal/stream"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	boot := logrus.New()

	// load .env BEFORE anything reads os.Getenv
	loadEnv(boot)

	cfg, err := config.Load(os.Getenv("CREDIT_CONFIG"))
	if err != nil {
		boot.WithError(err).Fatal("invalid configuration")
	}

	logger, logCloser, err := cfg.Log.NewLogger()
	if err != nil {
		boot.WithError(err).Fatal("failed to configure logging")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPC.URL,
		Timeout:      cfg.RPC.Timeout,
		MaxRetries:   cfg.RPC.MaxRetries,
		RetryBackoff: cfg.RPC.RetryBackoff,
		Logger:       logger,
	})

	pools, err := orca.NewPoolRegistry(cfg.Pools.Path)
	if err != nil {
		logger.WithError(err).Fatal("failed to load pool registry")
	}

	builder, err := client.NewBuilder(cfg.ProgramID())
	if err != nil {
		logger.WithError(err).Fatal("failed to derive program authority")
	}

	m := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	h := &server.Handlers{
		Pools:     pools,
		Orca:      orca.NewClient(rpcClient),
		Builder:   builder,
		Simulator: client.NewSimulator(rpcClient, m, logger),
		Metrics:   m,
		DevMode:   cfg.API.DevMode,
		Timeout:   cfg.API.RequestTimeout,
		Logger:    logger,
	}

	// Redis backs the quote cache, the pub/sub feed and feature flags. The
	// server still answers price queries without it.
	var (
		priceCache *cache.PriceCache
		pubsub     *cache.PubSubManager
	)
	rclient := redis.NewClient(cache.RedisOptions(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := rclient.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, cache and flags disabled")
		_ = rclient.Close()
	} else {
		defer rclient.Close()
		if priceCache, err = cache.NewPriceCache(rclient, cfg.Redis.QuoteTTL); err != nil {
			logger.WithError(err).Fatal("failed to create price cache")
		}
		pubsub = cache.NewPubSubManager(rclient, logger)
		flagStore, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create flags store")
		}
		h.Cache = priceCache
		h.Flags = flagStore
	}
	cancel()

	var history storage.QuoteStore
	if cfg.ClickHouse.Addr != "" {
		s, err := cache.NewQuoteStore(cfg.ClickHouse, logger)
		if err != nil {
			logger.WithError(err).Warn("clickhouse unavailable, quote history disabled")
		} else if err := s.CreateTables(ctx); err != nil {
			logger.WithError(err).Warn("failed to create clickhouse tables")
			_ = s.Close()
		} else {
			history = s
			h.History = s
			defer s.Close()
		}
	}

	if priceCache != nil || history != nil {
		h.Recorder = cache.NewSink(priceCache, pubsub, history)
	}

	if h.Recorder != nil && cfg.API.QuoteRefresh > 0 {
		poller := stream.NewQuotePoller(stream.QuotePollerConfig{
			Pools:        pools.GetAllPools(),
			Builder:      builder,
			Simulator:    h.Simulator,
			PollInterval: cfg.API.QuoteRefresh,
			Logger:       logger,
		})
		go func() {
			err := poller.Start(ctx, func(q *models.PriceQuote) {
				m.ObserveQuote(q.Pool, q.Source)
				if err := h.Recorder.RecordQuote(ctx, q); err != nil {
					logger.WithError(err).Warn("failed to record quote")
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("quote poller stopped")
			}
		}()
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:      cfg.API.Addr,
			DevMode:   cfg.API.DevMode,
			APIKey:    cfg.API.Key,
			RateLimit: cfg.API.RateLimit,
			RateBurst: cfg.API.RateBurst,
		},
		Gatherer: m.Gatherer,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{
		"addr":       cfg.API.Addr,
		"program_id": builder.ProgramID().String(),
		"pools":      pools.PoolCount(),
	}).Info("api server starting")

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		logger.WithError(err).Warn("server did not close cleanly")
	}
}
