package httphandler

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custody-daemon/internal/core/application/escrow"
)

func (h *Handler) makeEscrow(c *gin.Context) {
	maker, ok := caller(c)
	if !ok {
		return
	}
	var req makeEscrowRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireKeys(c, map[string]solana.PublicKey{
		"token_a": req.TokenA, "token_b": req.TokenB,
	}) {
		return
	}

	info, err := h.escrowSvc.Make(c.Request.Context(), maker, escrow.MakeArgs{
		Seed:    req.Seed,
		TokenA:  req.TokenA,
		TokenB:  req.TokenB,
		AmountA: req.AmountA,
		AmountB: req.AmountB,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) takeEscrow(c *gin.Context) {
	taker, ok := caller(c)
	if !ok {
		return
	}
	var req escrowRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireKeys(c, map[string]solana.PublicKey{"maker": req.Maker}) {
		return
	}

	receipt, err := h.escrowSvc.Take(
		c.Request.Context(), taker, req.Maker, req.Seed,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReceiptResponse(receipt))
}

func (h *Handler) refundEscrow(c *gin.Context) {
	signer, ok := caller(c)
	if !ok {
		return
	}
	var req escrowRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Maker.IsZero() {
		req.Maker = signer
	}

	receipt, err := h.escrowSvc.Refund(
		c.Request.Context(), signer, req.Maker, req.Seed,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReceiptResponse(receipt))
}

func (h *Handler) getEscrow(c *gin.Context) {
	maker, ok := parseKeyParam(c, "maker")
	if !ok {
		return
	}
	seed, ok := parseSeedParam(c)
	if !ok {
		return
	}

	info, err := h.escrowSvc.GetEscrow(c.Request.Context(), maker, seed)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) listEscrows(c *gin.Context) {
	maker, ok := parseKeyQuery(c, "maker")
	if !ok {
		return
	}

	escrows, err := h.escrowSvc.ListEscrows(c.Request.Context(), maker)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escrows": escrows})
}

func (h *Handler) listReceipts(c *gin.Context) {
	maker, ok := parseKeyQuery(c, "maker")
	if !ok {
		return
	}

	receipts, err := h.escrowSvc.ListReceipts(c.Request.Context(), maker)
	if err != nil {
		fail(c, err)
		return
	}
	list := make([]ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		list = append(list, newReceiptResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"receipts": list})
}
