package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/credit-program/internal/constants"
	"github.com/aman-zulfiqar/credit-program/internal/flags"
)

const flagTimeout = 3 * time.Second

// flagError maps store errors to responses.
func (h *Handlers) flagError(c echo.Context, err error, op string) error {
	switch {
	case errors.Is(err, flags.ErrInvalidKey):
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": err.Error()})
	case errors.Is(err, flags.ErrNotFound):
		return h.err(c, http.StatusNotFound, "flag not found", nil)
	default:
		h.log().WithError(err).Errorf("failed to %s flag", op)
		return h.err(c, http.StatusInternalServerError, "failed to "+op+" flag", nil)
	}
}

func (h *Handlers) noFlags(c echo.Context) error {
	return h.err(c, http.StatusServiceUnavailable, "flags are not configured", nil)
}

// setFlag writes a flag and logs swap switch changes.
func (h *Handlers) setFlag(c echo.Context, key string, value bool) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), flagTimeout)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, value)
	if err != nil {
		return h.flagError(c, err, "set")
	}
	if strings.HasPrefix(key, constants.FlagSwapEnabledPrefix) {
		h.log().WithFields(logrus.Fields{"flag": key, "enabled": value}).Info("swap switch changed")
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpsert creates or updates the flag named in the body
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	return h.setFlag(c, req.Key, req.Value)
}

// FlagsUpdate sets the flag named in the path
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	return h.setFlag(c, c.Param("key"), req.Value)
}

// FlagsGet returns one flag, 404 when unset
func (h *Handlers) FlagsGet(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), flagTimeout)
	defer cancel()

	out, err := h.Flags.Get(ctx, c.Param("key"))
	if err != nil {
		return h.flagError(c, err, "get")
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all flags ordered by key
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), flagTimeout)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.flagError(c, err, "list")
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a flag. 204 on success, 404 when it was not set.
func (h *Handlers) FlagsDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), flagTimeout)
	defer cancel()

	if err := h.Flags.Delete(ctx, c.Param("key")); err != nil {
		return h.flagError(c, err, "delete")
	}
	return c.NoContent(http.StatusNoContent)
}

// SetPoolSwap turns swaps on a registered pool on or off
func (h *Handlers) SetPoolSwap(c echo.Context) error {
	if h.Flags == nil {
		return h.noFlags(c)
	}
	pool, ok := h.lookupPool(c.Param("name"))
	if !ok {
		return h.err(c, http.StatusNotFound, "pool not found", nil)
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	return h.setFlag(c, flags.SwapFlagKey(pool.Name), req.Value)
}
