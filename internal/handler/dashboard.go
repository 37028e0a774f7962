package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	walletService  *service.WalletService
	billingService *service.BillingService
	logger         *zap.Logger
}

func NewDashboardHandler(walletService *service.WalletService, billingService *service.BillingService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		walletService:  walletService,
		billingService: billingService,
		logger:         logger.Named("DashboardHandler"),
	}
}

// GetSummary godoc
// @Summary      Developer dashboard
// @Description  Wallet balance, keys and recent metered calls. Creates the wallet on first visit.
// @Tags         developer
// @Produce      json
// @Success      200 {object} dto.DeveloperDashboardResponse
// @Failure      401 {object} dto.APIErrorResponse
// @Router       /developer/dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.walletService.Dashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.logger.Error("Failed to get developer dashboard from service", zap.Error(err))
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	resp, err := h.billingService.TopUpCheckout(c.Request.Context(), middleware.GetUserID(c), req.AmountCents)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
