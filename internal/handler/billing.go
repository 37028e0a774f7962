package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBodyBytes   = 65536
)

type BillingHandler struct {
	billing  *service.BillingService
	webhooks *service.WebhookService
	logger   *zap.Logger
}

func NewBillingHandler(billing *service.BillingService, webhooks *service.WebhookService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		billing:  billing,
		webhooks: webhooks,
		logger:   logger.Named("BillingHandler"),
	}
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	var req dto.SubscriptionCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	resp, err := h.billing.SubscriptionCheckout(c.Request.Context(), middleware.GetUserID(c), req.Plan)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) Portal(c *gin.Context) {
	resp, err := h.billing.Portal(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StripeWebhook must see the body exactly as Stripe sent it, so nothing may
// bind or rewrite it before this handler.
func (h *BillingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: unreadable body", ierr.ErrValidation))
		return
	}

	if err := h.webhooks.HandleStripe(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
