package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
)

// DefaultBonoAmount is the quoted amount, one whole BONO.
const DefaultBonoAmount = 1_000_000_000

// QuotePoller periodically runs ReadBonoPrice locally for every pool and
// hands the resulting quotes to a handler.
type QuotePoller struct {
	pools        []orca.Pool
	builder      *client.Builder
	simulator    *client.Simulator
	bonoAmount   uint64
	pollInterval time.Duration
	logger       *logrus.Logger

	mu      sync.Mutex
	running bool
}

// QuotePollerConfig holds configuration for the quote poller
type QuotePollerConfig struct {
	Pools        []orca.Pool
	Builder      *client.Builder
	Simulator    *client.Simulator
	BonoAmount   uint64
	PollInterval time.Duration
	Logger       *logrus.Logger
}

// NewQuotePoller creates a new quote poller
func NewQuotePoller(cfg QuotePollerConfig) *QuotePoller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.BonoAmount == 0 {
		cfg.BonoAmount = DefaultBonoAmount
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}

	return &QuotePoller{
		pools:        cfg.Pools,
		builder:      cfg.Builder,
		simulator:    cfg.Simulator,
		bonoAmount:   cfg.BonoAmount,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}
}

// Start polls until ctx is done. The first poll runs immediately.
func (p *QuotePoller) Start(ctx context.Context, handler storage.QuoteHandler) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	p.logger.WithFields(logrus.Fields{
		"interval": p.pollInterval,
		"pools":    len(p.pools),
	}).Info("starting quote polling")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		p.Poll(ctx, handler)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll quotes every pool once. Failures are logged and skipped.
func (p *QuotePoller) Poll(ctx context.Context, handler storage.QuoteHandler) {
	for i := range p.pools {
		pool := &p.pools[i]
		log := p.logger.WithField("pool", pool.Name)

		ix, err := p.builder.ReadBonoPrice(pool.Address, p.bonoAmount)
		if err != nil {
			log.WithError(err).Error("build read price instruction")
			continue
		}
		sim, err := p.simulator.Simulate(ctx, ix)
		if err != nil {
			log.WithError(err).Warn("poll error")
			continue
		}
		if !sim.Success || sim.Report == nil {
			log.WithField("error", sim.Error).Warn("price query failed")
			continue
		}

		q := client.LocalQuote(pool, sim.Report)
		log.WithField("price", q.Price).Debug("quote refreshed")
		handler(q)
	}
}
