package httphandler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custody-daemon/internal/core/application/account"
	"github.com/tdex-network/custody-daemon/internal/core/application/escrow"
	"github.com/tdex-network/custody-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/custody-daemon/internal/core/application/vault"
)

// Handler serves the JSON operation surface of the daemon.
type Handler struct {
	vaultSvc   *vault.Service
	escrowSvc  *escrow.Service
	accountSvc *account.Service
	pubsubSvc  *pubsub.Service
}

func NewHandler(
	vaultSvc *vault.Service, escrowSvc *escrow.Service,
	accountSvc *account.Service, pubsubSvc *pubsub.Service,
) (*Handler, error) {
	if vaultSvc == nil {
		return nil, fmt.Errorf("missing vault service")
	}
	if escrowSvc == nil {
		return nil, fmt.Errorf("missing escrow service")
	}
	if accountSvc == nil {
		return nil, fmt.Errorf("missing account service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	return &Handler{vaultSvc, escrowSvc, accountSvc, pubsubSvc}, nil
}

// RegisterRoutes mounts the /v1 routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")

	v1.POST("/vault/initialize", h.initializeVault)
	v1.POST("/vault/deposit", h.deposit)
	v1.POST("/vault/withdraw", h.withdraw)
	v1.GET("/vault/:owner", h.getVault)

	v1.POST("/escrow/make", h.makeEscrow)
	v1.POST("/escrow/take", h.takeEscrow)
	v1.POST("/escrow/refund", h.refundEscrow)
	v1.GET("/escrow/:maker/:seed", h.getEscrow)
	v1.GET("/escrows", h.listEscrows)
	v1.GET("/receipts", h.listReceipts)

	v1.GET("/accounts/:address", h.getAccount)
	v1.GET("/accounts/:address/tokens/:mint", h.getTokenBalance)
	v1.POST("/faucet/airdrop", h.airdrop)
	v1.POST("/faucet/mint", h.mintTo)

	v1.POST("/webhooks", h.addWebhook)
	v1.DELETE("/webhooks/:id", h.removeWebhook)
	v1.GET("/webhooks", h.listWebhooks)
}
