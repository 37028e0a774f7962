package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/handler/dto"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"go.uber.org/zap"
)

type ContentHandler struct {
	content     *service.ContentService
	subscribers *service.SubscriberService
	logger      *zap.Logger
}

func NewContentHandler(content *service.ContentService, subscribers *service.SubscriberService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		content:     content,
		subscribers: subscribers,
		logger:      logger.Named("ContentHandler"),
	}
}

// ListNiches godoc
// @Summary      Public niche catalog
// @Description  Premium niches are returned locked unless the session belongs to a subscriber.
// @Tags         content
// @Produce      json
// @Param        category query string false "Category filter"
// @Param        country  query string false "Country filter"
// @Success      200 {object} dto.NicheListResponse
// @Router       /niches [get]
func (h *ContentHandler) ListNiches(c *gin.Context) {
	var req dto.ListNichesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	resp, err := h.content.ListNiches(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) GetNiche(c *gin.Context) {
	resp, err := h.content.GetNiche(c.Request.Context(), middleware.GetUserID(c), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) ListPosts(c *gin.Context) {
	var req dto.ListBlogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	posts, err := h.content.ListPosts(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *ContentHandler) GetPost(c *gin.Context) {
	post, err := h.content.GetPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidInput(err))
		return
	}

	resp, err := h.subscribers.Subscribe(c.Request.Context(), req.Email, req.Source)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
