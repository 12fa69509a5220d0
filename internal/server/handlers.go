package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/flags"
	"github.com/aman-zulfiqar/credit-program/internal/metrics"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
	"github.com/aman-zulfiqar/credit-program/internal/storage"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Pools     *orca.PoolRegistry   // Registered pools
	Orca      *orca.Client         // Whirlpool account reader
	Builder   *client.Builder      // Credit program instruction builder
	Simulator *client.Simulator    // Local program runs against live accounts
	Cache     storage.QuoteCache   // Optional Redis-backed quote cache
	History   storage.QuoteStore   // Optional ClickHouse quote history
	Recorder  client.QuoteRecorder // Optional quote sink (Redis, pub/sub, ClickHouse)
	Flags     *flags.Store         // Optional Redis-backed feature flags store
	Metrics   *metrics.Metrics
	DevMode   bool           // Enable detailed error responses in development
	Timeout   time.Duration  // Upstream call timeout, 10s when zero
	Logger    *logrus.Logger // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (h *Handlers) log() *logrus.Entry {
	if h.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.NewEntry(h.Logger)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Authority returns the signing PDA of the credit program
func (h *Handlers) Authority(c echo.Context) error {
	a := h.Builder.Authority()
	return c.JSON(http.StatusOK, AuthorityResponse{
		ProgramID: h.Builder.ProgramID().String(),
		Authority: a.Address.String(),
		Bump:      a.Bump,
	})
}

// poolSlug is the URL form of a pool name, e.g. BONO-USDC.
func poolSlug(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}

// lookupPool resolves a path parameter by name, slug or address.
func (h *Handlers) lookupPool(param string) (*orca.Pool, bool) {
	pools := h.Pools.GetAllPools()
	for i := range pools {
		p := &pools[i]
		if strings.EqualFold(p.Name, param) || strings.EqualFold(poolSlug(p.Name), param) || p.Address.String() == param {
			return p, true
		}
	}
	return nil, false
}

// ListPools lists the registered pools with their swap switch
func (h *Handlers) ListPools(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	pools := h.Pools.GetAllPools()
	items := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		item := PoolResponse{
			Name:       p.Name,
			Slug:       poolSlug(p.Name),
			Address:    p.Address.String(),
			ProgramID:  p.ProgramID.String(),
			TokenMintA: p.TokenMintA.String(),
			TokenMintB: p.TokenMintB.String(),
			DecimalsA:  p.DecimalsA,
			DecimalsB:  p.DecimalsB,
		}
		if p.TickArrays != nil {
			for _, t := range p.TickArrays {
				item.TickArrays = append(item.TickArrays, t.String())
			}
		}
		if h.Flags != nil {
			if enabled, err := h.Flags.SwapEnabled(ctx, p.Name); err == nil {
				item.SwapEnabled = &enabled
			}
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// parseLimit reads the limit query parameter (default: 20, range: 1-100)
func parseLimit(c echo.Context) (int, bool) {
	limitStr := c.QueryParam("limit")
	if limitStr == "" {
		return 20, true
	}
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 || n > 100 {
		return 0, false
	}
	return n, true
}

// RecentQuotes returns the most recent cached quotes
func (h *Handlers) RecentQuotes(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "cache is not configured", nil)
	}
	limit, ok := parseLimit(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.RecentQuotes(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get quotes", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// RecentSwaps returns the most recent swap submissions
func (h *Handlers) RecentSwaps(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "cache is not configured", nil)
	}
	limit, ok := parseLimit(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.RecentSwaps(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get swaps", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// QuoteHistory returns stored quotes of one pool, newest first
func (h *Handlers) QuoteHistory(c echo.Context) error {
	if h.History == nil {
		return h.err(c, http.StatusServiceUnavailable, "history store is not configured", nil)
	}
	pool, ok := h.lookupPool(c.Param("name"))
	if !ok {
		return h.err(c, http.StatusNotFound, "pool not found", nil)
	}
	limit, ok := parseLimit(c)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.History.QuoteHistory(ctx, pool.Name, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get history", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func parseKey(s string) (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(strings.TrimSpace(s))
}
