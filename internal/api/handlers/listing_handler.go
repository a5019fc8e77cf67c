package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"chapamarket/backend/internal/api/middleware"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/models"
	"chapamarket/backend/internal/services"
	"chapamarket/backend/internal/storage"
	"chapamarket/backend/internal/tasks"
)

// IAsynqClient abstracts the asynq client for testability.
type IAsynqClient interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ListingHandler handles public browsing and seller-side listing management.
type ListingHandler struct {
	cfg            *config.Config
	listingService services.IListingService
	storageService storage.IS3Storage
	taskClient     IAsynqClient
}

func NewListingHandler(cfg *config.Config, listingService services.IListingService, storageService storage.IS3Storage, taskClient IAsynqClient) *ListingHandler {
	return &ListingHandler{
		cfg:            cfg,
		listingService: listingService,
		storageService: storageService,
		taskClient:     taskClient,
	}
}

// parseLimit reads the limit query param, clamping to sane bounds.
func parseLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 || limit > 200 {
		return def
	}
	return limit
}

// Search handles GET /v1/listing/search
func (h *ListingHandler) Search(c *gin.Context) {
	query := c.Query("q")
	category := c.Query("category")
	limit := parseLimit(c, 50)

	// Public search only surfaces approved listings.
	listings, err := h.listingService.Search(c.Request.Context(), query, category, true, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// GetByID handles GET /v1/listing/:id
func (h *ListingHandler) GetByID(c *gin.Context) {
	listing, err := h.listingService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GetBySeller handles GET /v1/user/:id/listing
func (h *ListingHandler) GetBySeller(c *gin.Context) {
	listings, err := h.listingService.FindBySeller(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seller listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// Create handles POST /v1/listing (authenticated sellers)
func (h *ListingHandler) Create(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var in models.NewListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), sess.UserID, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

type uploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// RequestUploadURL handles POST /v1/listing/:id/image-url
// Returns a presigned PUT URL for the client to upload the raw image directly.
func (h *ListingHandler) RequestUploadURL(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	listingID := c.Param("id")

	listing, err := h.listingService.FindByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}
	if listing.SellerID != sess.UserID && !sess.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	url, key, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), sess.UserID, listingID, req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": url, "key": key})
}

type confirmUploadRequest struct {
	Key string `json:"key" binding:"required"`
}

// ConfirmUpload handles POST /v1/listing/:id/image
// Enqueues background processing of the uploaded raw image.
func (h *ListingHandler) ConfirmUpload(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	listingID := c.Param("id")

	listing, err := h.listingService.FindByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}
	if listing.SellerID != sess.UserID && !sess.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your listing"})
		return
	}

	var req confirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := tasks.EnqueueImageProcess(h.taskClient, req.Key, listingID); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue image processing"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
}
