package flags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aman-zulfiqar/credit-program/internal/constants"
)

// SwapFlagKey returns the flag that switches swaps on pool. Letters, digits,
// '.' and '-' are kept; every other byte, '_' included, is written as '_'
// followed by two hex digits, so distinct pool names never share a key.
func SwapFlagKey(pool string) string {
	var b strings.Builder
	b.WriteString(constants.FlagSwapEnabledPrefix)
	for i := 0; i < len(pool); i++ {
		c := pool[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	return b.String()
}

// SwapEnabled reports whether swaps may be sent on pool. A pool without a
// flag is enabled.
func (s *Store) SwapEnabled(ctx context.Context, pool string) (bool, error) {
	f, err := s.Get(ctx, SwapFlagKey(pool))
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return f.Value, nil
}

// SetSwapEnabled switches swaps on pool.
func (s *Store) SetSwapEnabled(ctx context.Context, pool string, enabled bool) (*Flag, error) {
	return s.Upsert(ctx, SwapFlagKey(pool), enabled)
}
