package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

type APIKeyHandler struct {
	service *service.APIKeyService
	logger  *zap.Logger
}

func NewAPIKeyHandler(service *service.APIKeyService, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		service: service,
		logger:  logger.Named("APIKeyHandler"),
	}
}

// Create godoc
// @Summary      Generate an API key
// @Description  Returns the raw key once. At most five keys may be active at a time.
// @Tags         developer
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateAPIKeyRequest false "Key name"
// @Success      201 {object} dto.CreateAPIKeyResponse
// @Failure      401 {object} dto.APIErrorResponse
// @Failure      409 {object} dto.APIErrorResponse "Active key limit reached"
// @Router       /developer/keys [post]
func (h *APIKeyHandler) Create(c *gin.Context) {
	var req dto.CreateAPIKeyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("Failed to bind create api key request", zap.Error(err))
			_ = c.Error(invalidInput(err))
			return
		}
	}

	userID := middleware.GetUserID(c)
	respDTO, err := h.service.CreateAPIKey(c.Request.Context(), userID, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("API Key created via handler", zap.String("id", respDTO.ID.String()))
	c.JSON(http.StatusCreated, respDTO)
}

func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.service.ListAPIKeys(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.logger.Error("Service failed to list api keys", zap.Error(err))
		_ = c.Error(err)
		return
	}

	h.logger.Debug("API Keys listed successfully via handler", zap.Int("count", len(keys)))
	c.JSON(http.StatusOK, keys)
}

func (h *APIKeyHandler) Revoke(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid UUID format for revoke api key", zap.String("id_param", idStr), zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: invalid api key id format", ierr.ErrValidation))
		return
	}

	if err := h.service.RevokeAPIKey(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("API Key revoked successfully via handler", zap.String("id", id.String()))
	c.Status(http.StatusNoContent)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ierr.ErrValidation, err)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid %s", ierr.ErrValidation, name))
		return uuid.Nil, false
	}
	return id, true
}
