// Package processor is the credit program: it decodes an instruction, binds
// its accounts and runs either the swap or the price query.
package processor

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/host"
	"github.com/aman-zulfiqar/credit-program/internal/instruction"
	"github.com/aman-zulfiqar/credit-program/internal/metrics"
)

// ProgramID is the deployed address of the credit program.
var ProgramID = solana.MustPublicKeyFromBase58("82XBkYcPfaevmCNDJwV4EPcDrhWbvonN9iCUJaorfCRj")

// Processor executes credit program instructions against a host.
type Processor struct {
	invoker host.Invoker
	logger  host.Logger
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics records instruction and invocation outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithLogger sets the structured logger for step diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Processor) {
		p.log = logrus.NewEntry(l).WithField("component", "processor")
	}
}

// New returns a Processor issuing calls through invoker and writing program
// logs to logger.
func New(invoker host.Invoker, logger host.Logger, opts ...Option) *Processor {
	p := &Processor{
		invoker: invoker,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logrus.NewEntry(logrus.StandardLogger()).WithField("component", "processor")
	}
	return p
}

// Result is the outcome of one instruction. Report is set for ReadBonoPrice.
type Result struct {
	Instruction instruction.Instruction
	Report      *PriceReport
}

// ProcessInstruction is the program entrypoint.
func (p *Processor) ProcessInstruction(ctx context.Context, programID solana.PublicKey, accounts []*host.AccountInfo, data []byte) error {
	_, err := p.Execute(ctx, programID, accounts, data)
	return err
}

// Execute runs one instruction and returns what it produced.
func (p *Processor) Execute(ctx context.Context, programID solana.PublicKey, accounts []*host.AccountInfo, data []byte) (*Result, error) {
	started := time.Now()
	host.Logf(p.logger, "process_instruction: %s: %d accounts, data=%s", programID, len(accounts), formatBytes(data))

	ix, err := instruction.Unpack(data)
	if err != nil {
		p.metrics.ObserveInstruction("unknown", started, err)
		return nil, err
	}

	log := p.log.WithFields(logrus.Fields{
		"instruction": ix.Tag().String(),
		"accounts":    len(accounts),
	})

	res := &Result{Instruction: ix}
	switch v := ix.(type) {
	case instruction.Swap:
		err = p.swap(ctx, programID, accounts, v)
	case instruction.ReadBonoPrice:
		res.Report, err = p.readBonoPrice(accounts, v)
	}

	p.metrics.ObserveInstruction(ix.Tag().String(), started, err)
	if err != nil {
		log.WithError(err).Warn("instruction failed")
		return nil, err
	}
	log.WithField("elapsed", time.Since(started)).Debug("instruction processed")
	return res, nil
}

// formatBytes renders data as a bracketed, comma separated list of bytes.
func formatBytes(data []byte) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range data {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	b.WriteByte(']')
	return b.String()
}
