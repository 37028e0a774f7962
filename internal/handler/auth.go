package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *service.AccountService
	cookie  config.AuthConfig
	logger  *zap.Logger
}

func NewAuthHandler(service *service.AccountService, cookie config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		logger:  logger.Named("AuthHandler"),
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind signup request", zap.Error(err))
		_ = c.Error(invalidInput(err))
		return
	}

	acc, err := h.service.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.startSession(c, acc.ID) {
		return
	}
	c.JSON(http.StatusCreated, dto.UserResponse{ID: acc.ID, Email: acc.Email, CreatedAt: acc.CreatedAt})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind login request", zap.Error(err))
		_ = c.Error(invalidInput(err))
		return
	}

	acc, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.startSession(c, acc.ID) {
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", acc.ID.String()))
	c.JSON(http.StatusOK, dto.UserResponse{ID: acc.ID, Email: acc.Email, CreatedAt: acc.CreatedAt})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", h.cookie.CookieDomain, h.cookie.CookieSecure, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(c *gin.Context) {
	resp, err := h.service.Session(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ForgotPassword answers 200 whether or not the address is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) startSession(c *gin.Context, userID uuid.UUID) bool {
	token, expires, err := h.service.IssueToken(userID)
	if err != nil {
		_ = c.Error(err)
		return false
	}
	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, token, maxAge, "/", h.cookie.CookieDomain, h.cookie.CookieSecure, true)
	return true
}
