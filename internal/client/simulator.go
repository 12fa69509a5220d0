package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/credit-program/internal/host"
	"github.com/aman-zulfiqar/credit-program/internal/metrics"
	"github.com/aman-zulfiqar/credit-program/internal/processor"
	"github.com/aman-zulfiqar/credit-program/internal/rpc"
	"github.com/aman-zulfiqar/credit-program/internal/schema"
)

// MultiAccountFetcher reads accounts in request order, nil for missing ones.
// *rpc.Client implements it.
type MultiAccountFetcher interface {
	GetMultipleAccounts(ctx context.Context, addresses []solana.PublicKey, commitment string) ([]*rpc.Account, error)
}

const (
	defaultFetchChunk       = 8
	defaultFetchConcurrency = 4
)

// Simulator runs credit program instructions locally against live account
// state. Cross-program calls are recorded, not executed.
type Simulator struct {
	fetcher     MultiAccountFetcher
	metrics     *metrics.Metrics
	log         *logrus.Logger
	chunk       int
	concurrency int
}

// NewSimulator returns a Simulator reading accounts through fetcher. m and
// logger may be nil.
func NewSimulator(fetcher MultiAccountFetcher, m *metrics.Metrics, logger *logrus.Logger) *Simulator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Simulator{
		fetcher:     fetcher,
		metrics:     m,
		log:         logger,
		chunk:       defaultFetchChunk,
		concurrency: defaultFetchConcurrency,
	}
}

// Simulation is the outcome of a local run.
type Simulation struct {
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	Err         error                  `json:"-"`
	Logs        []string               `json:"logs"`
	Invocations []host.Invocation      `json:"invocations"`
	Report      *processor.PriceReport `json:"report,omitempty"`
	Duration    time.Duration          `json:"duration"`
}

// Simulate fetches every account ix references and executes it. A program
// failure is reported in the Simulation; the error return is reserved for
// failures to fetch state.
func (s *Simulator) Simulate(ctx context.Context, ix solana.Instruction) (*Simulation, error) {
	start := time.Now()

	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("instruction data: %w", err)
	}
	metas := ix.Accounts()

	state, err := s.fetch(ctx, metas)
	if err != nil {
		return nil, err
	}
	accounts := schema.Infos(metas, func(key solana.PublicKey) *host.AccountInfo {
		return state[key]
	})

	rec := host.NewRecorder(ix.ProgramID())
	opts := []processor.Option{processor.WithLogger(s.log)}
	if s.metrics != nil {
		opts = append(opts, processor.WithMetrics(s.metrics))
	}
	res, execErr := processor.New(rec, rec, opts...).Execute(ctx, ix.ProgramID(), accounts, data)

	sim := &Simulation{
		Success:     execErr == nil,
		Err:         execErr,
		Logs:        rec.Logs(),
		Invocations: rec.Invocations(),
		Duration:    time.Since(start),
	}
	if execErr != nil {
		sim.Error = execErr.Error()
	} else {
		sim.Report = res.Report
	}
	return sim, nil
}

// fetch loads the distinct keys of metas in concurrent chunks.
func (s *Simulator) fetch(ctx context.Context, metas []*solana.AccountMeta) (map[solana.PublicKey]*host.AccountInfo, error) {
	seen := make(map[solana.PublicKey]bool, len(metas))
	keys := make([]solana.PublicKey, 0, len(metas))
	for _, m := range metas {
		if !seen[m.PublicKey] {
			seen[m.PublicKey] = true
			keys = append(keys, m.PublicKey)
		}
	}

	results := make([][]*rpc.Account, (len(keys)+s.chunk-1)/s.chunk)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range results {
		lo := i * s.chunk
		hi := min(lo+s.chunk, len(keys))
		g.Go(func() error {
			accs, err := s.fetcher.GetMultipleAccounts(gctx, keys[lo:hi], "confirmed")
			if err != nil {
				return fmt.Errorf("fetch accounts: %w", err)
			}
			if len(accs) != hi-lo {
				return fmt.Errorf("fetch accounts: expected %d, got %d", hi-lo, len(accs))
			}
			results[i] = accs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := make(map[solana.PublicKey]*host.AccountInfo, len(keys))
	for i, chunk := range results {
		for j, acc := range chunk {
			if acc == nil {
				continue
			}
			state[keys[i*s.chunk+j]] = &host.AccountInfo{
				Executable: acc.Executable,
				Owner:      acc.Owner,
				Lamports:   acc.Lamports,
				Data:       []byte(acc.Data),
			}
		}
	}
	return state, nil
}
