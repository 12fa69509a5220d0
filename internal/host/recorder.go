package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Invocation is a recorded cross-program invocation.
type Invocation struct {
	ProgramID   solana.PublicKey
	Accounts    []*solana.AccountMeta
	Data        []byte
	Signed      bool
	SignerSeeds [][][]byte
}

// Recorder is an in-memory Invoker and Logger. It checks what the runtime
// would check before a call (every referenced account is supplied, every
// required signer is a signer or a PDA of Caller) and records the call.
// Failures can be injected per callee program or per call index.
type Recorder struct {
	// Caller is the invoking program; used to validate PDA signatures.
	Caller solana.PublicKey

	FailPrograms map[solana.PublicKey]error
	FailAt       map[int]error

	mu          sync.Mutex
	invocations []Invocation
	logs        []string
}

// NewRecorder returns a Recorder for programs invoked by caller.
func NewRecorder(caller solana.PublicKey) *Recorder {
	return &Recorder{
		Caller:       caller,
		FailPrograms: make(map[solana.PublicKey]error),
		FailAt:       make(map[int]error),
	}
}

func (r *Recorder) Invoke(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo) error {
	return r.record(ctx, ix, accounts, nil)
}

func (r *Recorder) InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error {
	return r.record(ctx, ix, accounts, signerSeeds)
}

func (r *Recorder) record(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo, seeds [][][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("instruction data: %w", err)
	}
	metas := ix.Accounts()

	if err := r.checkAccounts(ix.ProgramID(), metas, accounts, seeds); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.invocations)
	if err, ok := r.FailAt[idx]; ok {
		return err
	}
	if err, ok := r.FailPrograms[ix.ProgramID()]; ok {
		return err
	}

	r.invocations = append(r.invocations, Invocation{
		ProgramID:   ix.ProgramID(),
		Accounts:    metas,
		Data:        data,
		Signed:      seeds != nil,
		SignerSeeds: seeds,
	})
	return nil
}

func (r *Recorder) checkAccounts(programID solana.PublicKey, metas []*solana.AccountMeta, accounts []*AccountInfo, seeds [][][]byte) error {
	supplied := make(map[solana.PublicKey]*AccountInfo, len(accounts))
	for _, a := range accounts {
		supplied[a.Key] = a
	}

	pdas := make(map[solana.PublicKey]bool, len(seeds))
	for _, s := range seeds {
		pda, err := solana.CreateProgramAddress(s, r.Caller)
		if err != nil {
			return fmt.Errorf("invalid signer seeds: %w", err)
		}
		pdas[pda] = true
	}

	for _, m := range metas {
		info, ok := supplied[m.PublicKey]
		if !ok && !m.PublicKey.Equals(programID) {
			return fmt.Errorf("account %s required by %s was not supplied", m.PublicKey, programID)
		}
		if m.IsSigner && !pdas[m.PublicKey] && (info == nil || !info.IsSigner) {
			return fmt.Errorf("account %s must sign the call to %s", m.PublicKey, programID)
		}
	}
	return nil
}

// Log records a program log line.
func (r *Recorder) Log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, msg)
}

// Invocations returns the successful invocations in call order.
func (r *Recorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Invocation, len(r.invocations))
	copy(out, r.invocations)
	return out
}

// Logs returns the recorded program log lines.
func (r *Recorder) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	copy(out, r.logs)
	return out
}
