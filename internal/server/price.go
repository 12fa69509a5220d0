package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/models"
)

// defaultBonoAmount is one BONO in raw units.
const defaultBonoAmount = 1_000_000_000

// Price runs ReadBonoPrice locally against the pool's current account
// Accepts amount query parameter in raw BONO units (default: 1 BONO)
func (h *Handlers) Price(c echo.Context) error {
	pool, ok := h.lookupPool(c.Param("name"))
	if !ok {
		return h.err(c, http.StatusNotFound, "pool not found", nil)
	}

	amount := uint64(defaultBonoAmount)
	if v := strings.TrimSpace(c.QueryParam("amount")); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be uint64"})
		}
		amount = n
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if h.Cache != nil {
		q, err := h.Cache.GetLatestQuote(ctx, pool.Name)
		if err != nil {
			h.log().WithError(err).Warn("quote cache lookup failed")
		}
		hit := err == nil && q != nil && q.BonoAmount == amount
		h.Metrics.ObserveCacheLookup(hit)
		if hit {
			return c.JSON(http.StatusOK, PriceResponse{Quote: q, Cached: true})
		}
	}

	ix, err := h.Builder.ReadBonoPrice(pool.Address, amount)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to build instruction", map[string]any{"err": err.Error()})
	}
	sim, err := h.Simulator.Simulate(ctx, ix)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to fetch pool", map[string]any{"err": err.Error()})
	}
	if !sim.Success {
		return h.err(c, http.StatusBadGateway, "price query failed", map[string]any{"err": sim.Error, "logs": sim.Logs})
	}

	q := client.LocalQuote(pool, sim.Report)
	h.Metrics.ObserveQuote(pool.Name, models.SourceLocal)
	if h.Recorder != nil {
		if err := h.Recorder.RecordQuote(ctx, q); err != nil {
			h.log().WithError(err).WithField("pool", pool.Name).Warn("failed to record quote")
		}
	}

	return c.JSON(http.StatusOK, PriceResponse{Quote: q, Logs: sim.Logs})
}
