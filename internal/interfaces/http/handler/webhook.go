package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custody-daemon/internal/core/application/pubsub"
)

func (h *Handler) addWebhook(c *gin.Context) {
	var req webhookRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.pubsubSvc.AddWebhook(c.Request.Context(), pubsub.Webhook{
		Event:    req.Event,
		Endpoint: req.Endpoint,
		Secret:   req.Secret,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AddWebhookResponse{id})
}

func (h *Handler) removeWebhook(c *gin.Context) {
	if err := h.pubsubSvc.RemoveWebhook(
		c.Request.Context(), c.Param("id"),
	); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listWebhooks(c *gin.Context) {
	hooks, err := h.pubsubSvc.ListWebhooks(c.Request.Context(), c.Query("event"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": hooks})
}
