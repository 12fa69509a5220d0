package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/metrics"
	"github.com/aman-zulfiqar/credit-program/internal/models"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/processor"
	"github.com/aman-zulfiqar/credit-program/internal/wallet"
)

// DefaultSlippageBps matches the 1% tolerance of the reference client.
const DefaultSlippageBps = 100

// ErrSwapDisabled is returned when the swap gate rejects a pool.
var ErrSwapDisabled = errors.New("swaps disabled for pool")

// TxSender builds, signs and submits transactions. *wallet.Wallet
// implements it.
type TxSender interface {
	PublicKey() solana.PublicKey
	BuildTransaction(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*wallet.SimulationResult, error)
	SignTx(tx *solana.Transaction) error
	SendTx(ctx context.Context, tx *solana.Transaction, opts *wallet.SendOptions) (string, error)
	ConfirmTransaction(ctx context.Context, signature, commitment string, timeout time.Duration) error
}

// LogFetcher reads the log lines of a confirmed transaction.
type LogFetcher interface {
	GetTransactionLogs(ctx context.Context, signature string) ([]string, error)
}

// SwapGate decides whether swaps may be sent on a pool.
type SwapGate interface {
	SwapEnabled(ctx context.Context, pool string) (bool, error)
}

// QuoteRecorder receives every quote and submission the executor produces.
type QuoteRecorder interface {
	RecordQuote(ctx context.Context, q *models.PriceQuote) error
	RecordSubmission(ctx context.Context, s *models.SwapSubmission) error
}

// ExecutorConfig holds submission settings.
type ExecutorConfig struct {
	Commitment     string
	ConfirmTimeout time.Duration
	// RemoteSimulation runs simulateTransaction before sending.
	RemoteSimulation bool
	SendOptions      wallet.SendOptions
}

// Executor quotes, builds and submits credit program transactions.
type Executor struct {
	sender  TxSender
	logs    LogFetcher
	pools   *orca.PoolRegistry
	orca    *orca.Client
	builder *Builder
	gate    SwapGate
	risk    *RiskManager
	rec     QuoteRecorder
	metrics *metrics.Metrics
	cfg     ExecutorConfig
	log     *logrus.Entry
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithSwapGate checks g before every swap.
func WithSwapGate(g SwapGate) ExecutorOption {
	return func(e *Executor) { e.gate = g }
}

// WithRiskManager checks rm before every swap and records confirmed ones.
func WithRiskManager(rm *RiskManager) ExecutorOption {
	return func(e *Executor) { e.risk = rm }
}

// WithRecorder stores quotes and submissions in r.
func WithRecorder(r QuoteRecorder) ExecutorOption {
	return func(e *Executor) { e.rec = r }
}

func WithExecutorMetrics(m *metrics.Metrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

func WithExecutorLogger(l *logrus.Logger) ExecutorOption {
	return func(e *Executor) { e.log = l.WithField("component", "executor") }
}

// NewExecutor wires an Executor.
func NewExecutor(
	sender TxSender,
	logs LogFetcher,
	pools *orca.PoolRegistry,
	orcaClient *orca.Client,
	builder *Builder,
	cfg ExecutorConfig,
	opts ...ExecutorOption,
) *Executor {
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 60 * time.Second
	}
	if cfg.SendOptions.PreflightCommitment == "" {
		cfg.SendOptions = wallet.DefaultSendOptions()
	}
	e := &Executor{
		sender:  sender,
		logs:    logs,
		pools:   pools,
		orca:    orcaClient,
		builder: builder,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.StandardLogger().WithField("component", "executor")
	}
	return e
}

// SwapParams are the caller's inputs to a swap.
type SwapParams struct {
	PoolName    string
	USDCAmount  uint64
	SlippageBps uint16
	// Threshold overrides the quoted minimum BONO output when set.
	Threshold  *uint64
	TickArrays *[3]solana.PublicKey
}

// Quote is the expected outcome of swapping USDCAmount on a pool.
type Quote struct {
	PoolName     string    `json:"pool"`
	USDCAmount   uint64    `json:"usdc_amount"`
	ExpectedBono uint64    `json:"expected_bono"`
	MinBono      uint64    `json:"min_bono"`
	SlippageBps  uint16    `json:"slippage_bps"`
	QuotedAt     time.Time `json:"quoted_at"`
}

// PreparedSwap is a built, unsigned Swap instruction and its quote.
type PreparedSwap struct {
	State       *orca.PoolState
	Quote       *Quote
	Threshold   uint64
	Instruction solana.Instruction
}

// SwapResult is the final result returned to the caller.
type SwapResult struct {
	Submission *models.SwapSubmission `json:"submission,omitempty"`
	Quote      *Quote                 `json:"quote,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
}

// PriceResult carries a ReadBonoPrice outcome read back from the chain.
type PriceResult struct {
	Signature string             `json:"signature"`
	Logs      []string           `json:"logs"`
	Quote     *models.PriceQuote `json:"quote,omitempty"`
}

func (e *Executor) pool(name string) (*orca.Pool, error) {
	return e.pools.FindPoolByName(name)
}

// State fetches the current state of a registered pool.
func (e *Executor) State(ctx context.Context, poolName string) (*orca.PoolState, error) {
	pool, err := e.pool(poolName)
	if err != nil {
		return nil, err
	}
	return orca.RefreshPoolState(ctx, e.orca, pool)
}

// PrepareSwap fetches the pool, quotes the swap and builds the instruction
// signed by the executor's wallet.
func (e *Executor) PrepareSwap(ctx context.Context, params SwapParams) (*PreparedSwap, error) {
	if params.USDCAmount == 0 {
		return nil, fmt.Errorf("usdc amount must be > 0")
	}
	state, err := e.State(ctx, params.PoolName)
	if err != nil {
		return nil, err
	}

	expected, minOut, err := state.QuoteBToA(params.USDCAmount, params.SlippageBps)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	quote := &Quote{
		PoolName:     state.Pool.Name,
		USDCAmount:   params.USDCAmount,
		ExpectedBono: expected,
		MinBono:      minOut,
		SlippageBps:  params.SlippageBps,
		QuotedAt:     time.Now(),
	}

	threshold := minOut
	if params.Threshold != nil {
		threshold = *params.Threshold
	}

	keys, err := e.builder.SwapKeys(state, SwapRequest{
		Signer:              e.sender.PublicKey(),
		USDCAmount:          params.USDCAmount,
		BonoAmountThreshold: threshold,
		TickArrays:          params.TickArrays,
	})
	if err != nil {
		return nil, err
	}
	ix, err := e.builder.Swap(keys, params.USDCAmount, threshold)
	if err != nil {
		return nil, err
	}

	return &PreparedSwap{State: state, Quote: quote, Threshold: threshold, Instruction: ix}, nil
}

// ExecuteSwap prepares, signs and submits a Swap, waits for confirmation
// and reads the program logs back.
func (e *Executor) ExecuteSwap(ctx context.Context, params SwapParams) (*SwapResult, error) {
	start := time.Now()

	if e.gate != nil {
		enabled, err := e.gate.SwapEnabled(ctx, params.PoolName)
		if err != nil {
			return &SwapResult{Success: false, Error: err.Error()}, err
		}
		if !enabled {
			err := fmt.Errorf("%w: %s", ErrSwapDisabled, params.PoolName)
			return &SwapResult{Success: false, Error: err.Error()}, err
		}
	}

	if e.risk != nil {
		check, err := e.risk.CheckSwap(ctx, params)
		if err != nil {
			return &SwapResult{Success: false, Error: err.Error()}, err
		}
		if !check.Allowed {
			err := fmt.Errorf("%w: %s", ErrRiskRejected, check.Reason)
			return &SwapResult{Success: false, Error: err.Error()}, err
		}
	}

	prepared, err := e.PrepareSwap(ctx, params)
	if err != nil {
		return &SwapResult{Success: false, Error: err.Error()}, err
	}

	sub := &models.SwapSubmission{
		ExecutionID:         uuid.NewString(),
		Pool:                prepared.State.Pool.Name,
		Signer:              e.sender.PublicKey().String(),
		USDCAmount:          params.USDCAmount,
		BonoAmountThreshold: prepared.Threshold,
		ExpectedBono:        prepared.Quote.ExpectedBono,
		SlippageBps:         params.SlippageBps,
		SubmittedAt:         start,
	}
	log := e.log.WithFields(logrus.Fields{
		"execution_id": sub.ExecutionID,
		"pool":         sub.Pool,
		"usdc_amount":  sub.USDCAmount,
		"threshold":    sub.BonoAmountThreshold,
	})

	fail := func(err error) (*SwapResult, error) {
		sub.Success = false
		sub.Error = err.Error()
		sub.Duration = time.Since(start)
		e.record(ctx, sub)
		log.WithError(err).Warn("swap failed")
		return &SwapResult{Submission: sub, Quote: prepared.Quote, Success: false, Error: err.Error()}, err
	}

	sig, logs, err := e.submit(ctx, prepared.Instruction)
	sub.Signature = sig
	sub.Logs = logs
	if err != nil {
		return fail(err)
	}

	sub.Success = true
	sub.Duration = time.Since(start)
	if e.risk != nil {
		if err := e.risk.RecordSwap(ctx, params.USDCAmount); err != nil {
			log.WithError(err).Warn("failed to record daily usage")
		}
	}
	e.record(ctx, sub)
	log.WithField("signature", sig).Info("swap confirmed")

	return &SwapResult{Submission: sub, Quote: prepared.Quote, Success: true}, nil
}

// ReadBonoPrice sends a ReadBonoPrice transaction and parses the report out
// of its logs.
func (e *Executor) ReadBonoPrice(ctx context.Context, poolName string, bonoAmount uint64) (*PriceResult, error) {
	pool, err := e.pool(poolName)
	if err != nil {
		return nil, err
	}
	ix, err := e.builder.ReadBonoPrice(pool.Address, bonoAmount)
	if err != nil {
		return nil, err
	}

	sig, logs, err := e.submit(ctx, ix)
	if err != nil {
		return &PriceResult{Signature: sig, Logs: logs}, err
	}

	q, err := ParsePriceLogs(logs)
	if err != nil {
		return &PriceResult{Signature: sig, Logs: logs}, err
	}
	q.ID = uuid.NewString()
	q.Pool = pool.Name
	q.Address = pool.Address.String()
	q.Source = models.SourceChain
	q.Signature = sig
	q.QuotedAt = time.Now().UTC()

	e.metrics.ObserveQuote(pool.Name, models.SourceChain)
	if e.rec != nil {
		if err := e.rec.RecordQuote(ctx, q); err != nil {
			e.log.WithError(err).Warn("failed to record quote")
		}
	}
	return &PriceResult{Signature: sig, Logs: logs, Quote: q}, nil
}

// submit builds, signs and sends ix, waits for confirmation and returns the
// transaction logs. The signature is returned once known, even on failure.
func (e *Executor) submit(ctx context.Context, ix solana.Instruction) (string, []string, error) {
	tx, err := e.sender.BuildTransaction(ctx, []solana.Instruction{ix})
	if err != nil {
		return "", nil, err
	}

	if e.cfg.RemoteSimulation {
		sim, err := e.sender.SimulateTransaction(ctx, tx)
		if err != nil {
			var logs []string
			if sim != nil {
				logs = sim.Logs
			}
			return "", logs, err
		}
	}

	if err := e.sender.SignTx(tx); err != nil {
		return "", nil, err
	}

	opts := e.cfg.SendOptions
	sig, err := e.sender.SendTx(ctx, tx, &opts)
	if err != nil {
		return "", nil, err
	}

	if err := e.sender.ConfirmTransaction(ctx, sig, e.cfg.Commitment, e.cfg.ConfirmTimeout); err != nil {
		logs, _ := e.logs.GetTransactionLogs(ctx, sig)
		return sig, logs, err
	}

	logs, err := e.logs.GetTransactionLogs(ctx, sig)
	if err != nil {
		return sig, nil, fmt.Errorf("read logs of %s: %w", sig, err)
	}
	return sig, logs, nil
}

func (e *Executor) record(ctx context.Context, sub *models.SwapSubmission) {
	if e.rec == nil {
		return
	}
	if err := e.rec.RecordSubmission(ctx, sub); err != nil {
		e.log.WithError(err).Warn("failed to record submission")
	}
}

// LocalQuote converts a locally computed report into a quote.
func LocalQuote(pool *orca.Pool, report *processor.PriceReport) *models.PriceQuote {
	return &models.PriceQuote{
		ID:           uuid.NewString(),
		Pool:         pool.Name,
		Address:      pool.Address.String(),
		SqrtPriceX64: report.SqrtPriceX64.String(),
		Price:        report.PriceLine(),
		BonoAmount:   report.BonoAmount,
		USDCValue:    report.ValueLine(),
		Source:       models.SourceLocal,
		QuotedAt:     time.Now().UTC(),
	}
}
