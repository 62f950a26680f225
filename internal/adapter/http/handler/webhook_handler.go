package handler

import (
	"io"
	"net/http"

	"digital-payment-service/internal/core/ports"
	"digital-payment-service/pkg/apperror"
	"digital-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment gateway webhooks.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Handle handles POST /api/v1/webhooks/gateway. Processing failures answer
// non-2xx so the gateway redelivers the event.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.ErrInvalidInput("cannot read request body"))
		return
	}

	if err := h.webhookSvc.Handle(c.Request.Context(), body); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
