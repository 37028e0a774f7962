package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

type ValidationHandler struct {
	service *service.ValidationService
	logger  *zap.Logger
}

func NewValidationHandler(service *service.ValidationService, logger *zap.Logger) *ValidationHandler {
	return &ValidationHandler{
		service: service,
		logger:  logger.Named("ValidationHandler"),
	}
}

func (h *ValidationHandler) Create(c *gin.Context) {
	var req dto.CreateValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	resp, err := h.service.Validate(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ValidationHandler) List(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
