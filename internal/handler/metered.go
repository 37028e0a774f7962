package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

const (
	nicheListRequestKey     = "nicheListRequest"
	opportunitiesRequestKey = "opportunitiesRequest"
	rankingsRequestKey      = "rankingsRequest"
)

// MeteredHandler serves /api/v1. Every route behind it has already been
// authenticated, rate limited and charged.
type MeteredHandler struct {
	service *service.ContentService
	logger  *zap.Logger
}

func NewMeteredHandler(service *service.ContentService, logger *zap.Logger) *MeteredHandler {
	return &MeteredHandler{
		service: service,
		logger:  logger.Named("MeteredHandler"),
	}
}

// ValidateNicheList binds the query before the charge middleware runs.
func (h *MeteredHandler) ValidateNicheList(c *gin.Context) {
	var req dto.ListNichesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RejectInvalidRequest(c, invalidInput(err))
		return
	}
	c.Set(nicheListRequestKey, req)
	c.Next()
}

func (h *MeteredHandler) ListNiches(c *gin.Context) {
	req, _ := c.MustGet(nicheListRequestKey).(dto.ListNichesRequest)

	resp, err := h.service.APIListNiches(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetCreditHeaders(c)
	c.JSON(http.StatusOK, resp)
}

func (h *MeteredHandler) GetNiche(c *gin.Context) {
	resp, err := h.service.APIGetNiche(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetCreditHeaders(c)
	c.JSON(http.StatusOK, resp)
}

func (h *MeteredHandler) ValidateOpportunities(c *gin.Context) {
	var req dto.OpportunitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RejectInvalidRequest(c, invalidInput(err))
		return
	}
	c.Set(opportunitiesRequestKey, req)
	c.Next()
}

func (h *MeteredHandler) Opportunities(c *gin.Context) {
	req, _ := c.MustGet(opportunitiesRequestKey).(dto.OpportunitiesRequest)

	resp, err := h.service.Opportunities(c.Request.Context(), req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetCreditHeaders(c)
	c.JSON(http.StatusOK, gin.H{"opportunities": resp})
}

// ValidateRankings runs ahead of the charge middleware so a request missing
// both filters is rejected without a debit.
func (h *MeteredHandler) ValidateRankings(c *gin.Context) {
	var req dto.RankingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RejectInvalidRequest(c, invalidInput(err))
		return
	}
	if err := service.ValidateRankings(req); err != nil {
		h.logger.Debug("Rejected rankings request without filters")
		middleware.RejectInvalidRequest(c, err)
		return
	}
	c.Set(rankingsRequestKey, req)
	c.Next()
}

func (h *MeteredHandler) Rankings(c *gin.Context) {
	req, _ := c.MustGet(rankingsRequestKey).(dto.RankingsRequest)

	resp, err := h.service.Rankings(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetCreditHeaders(c)
	c.JSON(http.StatusOK, resp)
}

func (h *MeteredHandler) Categories(c *gin.Context) {
	resp, err := h.service.Categories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetCreditHeaders(c)
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}
