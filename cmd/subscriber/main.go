// ============================================================================
// cmd/subscriber/main.go - Quote and swap feed subscriber (consumer)
// ============================================================================
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/credit-program/internal/cache"
	"github.com/aman-zulfiqar/credit-program/internal/config"
	"github.com/aman-zulfiqar/credit-program/internal/constants"
	"github.com/aman-zulfiqar/credit-program/internal/models"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CREDIT_CONFIG"))
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger, closer, err := cfg.Log.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rclient := redis.NewClient(cache.RedisOptions(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	defer rclient.Close()
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	pubsub := cache.NewPubSubManager(rclient, logger)

	channels := []string{constants.PubSubChannelQuotes}
	channels = append(channels, os.Args[1:]...)
	for _, ch := range channels {
		if _, err := cache.ChannelFeed(ch); err != nil {
			logger.WithError(err).Fatal("cannot subscribe")
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, ch := range channels {
		g.Go(func() error {
			return pubsub.Subscribe(ctx, ch,
				func(q *models.PriceQuote) {
					logger.WithFields(logrus.Fields{
						"channel":     ch,
						"pool":        q.Pool,
						"price":       q.Price,
						"bono_amount": q.BonoAmount,
						"usdc_value":  q.USDCValue,
						"source":      q.Source,
					}).Info("quote")
				},
				func(s *models.SwapSubmission) {
					logger.WithFields(logrus.Fields{
						"channel":      ch,
						"execution_id": s.ExecutionID,
						"pool":         s.Pool,
						"signer":       s.Signer,
						"usdc_amount":  s.USDCAmount,
						"success":      s.Success,
						"signature":    s.Signature,
						"error":        s.Error,
					}).Info("swap")
				})
		})
	}

	logger.WithField("channels", channels).Info("subscriber running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("subscriber failed")
	}
	logger.Info("shutting down subscriber")
}
