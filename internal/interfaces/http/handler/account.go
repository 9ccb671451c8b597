package httphandler

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

func (h *Handler) getAccount(c *gin.Context) {
	address, ok := parseKeyParam(c, "address")
	if !ok {
		return
	}

	info, err := h.accountSvc.GetAccount(c.Request.Context(), address)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) getTokenBalance(c *gin.Context) {
	owner, ok := parseKeyParam(c, "address")
	if !ok {
		return
	}
	mint, ok := parseKeyParam(c, "mint")
	if !ok {
		return
	}

	amount, err := h.accountSvc.TokenBalance(c.Request.Context(), owner, mint)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenBalanceResponse{owner, mint, amount})
}

func (h *Handler) airdrop(c *gin.Context) {
	signer, ok := caller(c)
	if !ok {
		return
	}
	var req airdropRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Address.IsZero() {
		req.Address = signer
	}

	balance, err := h.accountSvc.Airdrop(
		c.Request.Context(), req.Address, req.Lamports,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AirdropResponse{req.Address, balance})
}

func (h *Handler) mintTo(c *gin.Context) {
	signer, ok := caller(c)
	if !ok {
		return
	}
	var req mintRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireKeys(c, map[string]solana.PublicKey{"mint": req.Mint}) {
		return
	}
	if req.Owner.IsZero() {
		req.Owner = signer
	}

	tokenAccount, err := h.accountSvc.MintTo(
		c.Request.Context(), req.Mint, req.Owner, req.Amount,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MintResponse{tokenAccount})
}
