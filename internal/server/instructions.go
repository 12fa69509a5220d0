package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/credit-program/internal/client"
	"github.com/aman-zulfiqar/credit-program/internal/orca"
)

func instructionResponse(ix solana.Instruction) (*InstructionResponse, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	metas := ix.Accounts()
	accounts := make([]AccountMetaResponse, len(metas))
	for i, m := range metas {
		accounts[i] = AccountMetaResponse{
			Pubkey:     m.PublicKey.String(),
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
		}
	}
	return &InstructionResponse{
		ProgramID: ix.ProgramID().String(),
		Accounts:  accounts,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

// SwapInstruction quotes a swap on the pool and returns the unsigned Swap
// instruction for the signer
func (h *Handlers) SwapInstruction(c echo.Context) error {
	var req SwapInstructionRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	pool, ok := h.lookupPool(req.Pool)
	if !ok {
		return h.err(c, http.StatusNotFound, "pool not found", nil)
	}
	signer, err := parseKey(req.Signer)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid signer", map[string]any{"signer": err.Error()})
	}
	if req.USDCAmount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid usdc_amount", map[string]any{"usdc_amount": "must be > 0"})
	}
	slippage := uint16(client.DefaultSlippageBps)
	if req.SlippageBps != nil {
		if *req.SlippageBps > 10_000 {
			return h.err(c, http.StatusBadRequest, "invalid slippage_bps", map[string]any{"slippage_bps": "max 10000"})
		}
		slippage = *req.SlippageBps
	}

	swapReq := client.SwapRequest{Signer: signer, USDCAmount: req.USDCAmount}
	if req.SignerUSDC != "" {
		if swapReq.SignerUSDC, err = parseKey(req.SignerUSDC); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid signer_usdc", map[string]any{"signer_usdc": err.Error()})
		}
	}
	if len(req.TickArrays) > 0 {
		if len(req.TickArrays) != 3 {
			return h.err(c, http.StatusBadRequest, "invalid tick_arrays", map[string]any{"tick_arrays": "exactly 3 required"})
		}
		var ticks [3]solana.PublicKey
		for i, s := range req.TickArrays {
			if ticks[i], err = parseKey(s); err != nil {
				return h.err(c, http.StatusBadRequest, "invalid tick_arrays", map[string]any{"tick_arrays": err.Error()})
			}
		}
		swapReq.TickArrays = &ticks
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if h.Flags != nil {
		enabled, err := h.Flags.SwapEnabled(ctx, pool.Name)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to read swap flag", nil)
		}
		if !enabled {
			return h.err(c, http.StatusForbidden, "swaps disabled for pool", nil)
		}
	}

	state, err := orca.RefreshPoolState(ctx, h.Orca, pool)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to fetch pool", map[string]any{"err": err.Error()})
	}
	expected, minOut, err := state.QuoteBToA(req.USDCAmount, slippage)
	if err != nil {
		return h.err(c, http.StatusUnprocessableEntity, "failed to quote swap", map[string]any{"err": err.Error()})
	}
	threshold := minOut
	if req.BonoAmountThreshold != nil {
		threshold = *req.BonoAmountThreshold
	}
	swapReq.BonoAmountThreshold = threshold

	keys, err := h.Builder.SwapKeys(state, swapReq)
	if errors.Is(err, client.ErrNoTickArrays) {
		return h.err(c, http.StatusBadRequest, "tick_arrays required", nil)
	}
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to derive accounts", map[string]any{"err": err.Error()})
	}
	ix, err := h.Builder.Swap(keys, req.USDCAmount, threshold)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to build instruction", map[string]any{"err": err.Error()})
	}

	resp, err := instructionResponse(ix)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to encode instruction", nil)
	}
	resp.Quote = &client.Quote{
		PoolName:     pool.Name,
		USDCAmount:   req.USDCAmount,
		ExpectedBono: expected,
		MinBono:      minOut,
		SlippageBps:  slippage,
		QuotedAt:     time.Now().UTC(),
	}

	if req.Simulate && h.Simulator != nil {
		sim, err := h.Simulator.Simulate(ctx, ix)
		if err != nil {
			return h.err(c, http.StatusBadGateway, "failed to simulate", map[string]any{"err": err.Error()})
		}
		resp.Simulation = sim
	}

	return c.JSON(http.StatusOK, resp)
}

// ReadPriceInstruction returns the unsigned ReadBonoPrice instruction for a pool
func (h *Handlers) ReadPriceInstruction(c echo.Context) error {
	var req ReadPriceInstructionRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	pool, ok := h.lookupPool(req.Pool)
	if !ok {
		return h.err(c, http.StatusNotFound, "pool not found", nil)
	}

	ix, err := h.Builder.ReadBonoPrice(pool.Address, req.BonoAmount)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to build instruction", nil)
	}
	resp, err := instructionResponse(ix)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to encode instruction", nil)
	}
	return c.JSON(http.StatusOK, resp)
}
