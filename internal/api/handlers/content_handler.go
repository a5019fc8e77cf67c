package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"chapamarket/backend/internal/services"
)

// ContentHandler serves public editorial content: published stories and the
// active homepage banner.
type ContentHandler struct {
	storyService    services.IStoryService
	bannerService   services.IBannerService
	settingsService services.ISettingsService
}

func NewContentHandler(storyService services.IStoryService, bannerService services.IBannerService, settingsService services.ISettingsService) *ContentHandler {
	return &ContentHandler{
		storyService:    storyService,
		bannerService:   bannerService,
		settingsService: settingsService,
	}
}

// ListStories handles GET /v1/story
func (h *ContentHandler) ListStories(c *gin.Context) {
	stories, err := h.storyService.FindPublished(c.Request.Context(), parseLimit(c, 20))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stories})
}

// GetStory handles GET /v1/story/:id
func (h *ContentHandler) GetStory(c *gin.Context) {
	story, err := h.storyService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch story"})
		}
		return
	}
	c.JSON(http.StatusOK, story)
}

// ActiveBanner handles GET /v1/banner/active
// Returns 204 when no banner is active.
func (h *ContentHandler) ActiveBanner(c *gin.Context) {
	banner, err := h.bannerService.FindActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.Status(http.StatusNoContent)
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banner"})
		}
		return
	}
	c.JSON(http.StatusOK, banner)
}

// PaymentConfig handles GET /v1/payment-config
// Exposes the wallet details buyers use for premium upgrades.
func (h *ContentHandler) PaymentConfig(c *gin.Context) {
	cfg, err := h.settingsService.GetPaymentConfig(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payments are not configured"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment config"})
		}
		return
	}
	if !cfg.Enabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payments are disabled"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
