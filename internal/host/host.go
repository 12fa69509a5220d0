// Package host models the execution environment the credit program runs in:
// the accounts handed to an invocation, cross-program invocation and program
// logging. Atomicity, compute metering and signature checks belong to the
// environment and are not implemented here.
package host

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// AccountInfo is one account passed to an invocation.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	Executable bool
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
}

// Invoker performs synchronous cross-program invocations. Both calls block
// until the callee completes and return its failure unchanged.
type Invoker interface {
	Invoke(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo) error
	// InvokeSigned lets the calling program sign for the PDAs derived from
	// signerSeeds.
	InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// Logger receives program log lines.
type Logger interface {
	Log(msg string)
}

// Logf formats and writes a program log line.
func Logf(l Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.Log(fmt.Sprintf(format, args...))
}

// LogrusLogger forwards program log lines to logrus at info level.
type LogrusLogger struct {
	Entry *logrus.Entry
}

// NewLogrusLogger returns a Logger tagged with the program id.
func NewLogrusLogger(logger *logrus.Logger, programID solana.PublicKey) *LogrusLogger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusLogger{Entry: logger.WithField("program", programID.String())}
}

func (l *LogrusLogger) Log(msg string) {
	l.Entry.Info(msg)
}

// MultiLogger fans a log line out to several loggers.
type MultiLogger []Logger

func (m MultiLogger) Log(msg string) {
	for _, l := range m {
		if l != nil {
			l.Log(msg)
		}
	}
}
