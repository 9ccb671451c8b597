package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initializeVault(c *gin.Context) {
	owner, ok := caller(c)
	if !ok {
		return
	}

	info, err := h.vaultSvc.Initialize(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newVaultResponse(info))
}

func (h *Handler) deposit(c *gin.Context) {
	owner, ok := caller(c)
	if !ok {
		return
	}
	var req amountRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.vaultSvc.Deposit(c.Request.Context(), owner, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newVaultResponse(info))
}

// withdraw lets the signer withdraw from the vault of the given owner, their
// own by default. The service rejects any signer other than the owner.
func (h *Handler) withdraw(c *gin.Context) {
	signer, ok := caller(c)
	if !ok {
		return
	}
	var req withdrawRequest
	if !bindJSON(c, &req) {
		return
	}
	owner := signer
	if req.Owner != nil {
		owner = *req.Owner
	}

	info, err := h.vaultSvc.Withdraw(
		c.Request.Context(), signer, owner, req.Amount,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newVaultResponse(info))
}

func (h *Handler) getVault(c *gin.Context) {
	owner, ok := parseKeyParam(c, "owner")
	if !ok {
		return
	}

	info, err := h.vaultSvc.GetVault(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newVaultResponse(info))
}
