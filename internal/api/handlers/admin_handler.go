package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"chapamarket/backend/internal/api/middleware"
	"chapamarket/backend/internal/auth"
	"chapamarket/backend/internal/models"
	"chapamarket/backend/internal/notify"
	"chapamarket/backend/internal/services"
)

// AdminHandler serves the admin dashboard: aggregated stats, entity lists and
// the moderation actions. Every moderation endpoint follows the same shape:
// perform the action, re-fetch the entity for the response, and send exactly
// one notification whether the action succeeded or failed.
type AdminHandler struct {
	statsService    services.IStatsService
	profileService  services.IProfileService
	listingService  services.IListingService
	orderService    services.IOrderService
	messageService  services.IMessageService
	storyService    services.IStoryService
	bannerService   services.IBannerService
	settingsService services.ISettingsService
	notifier        notify.Notifier
	recentLimit     int
}

func NewAdminHandler(
	statsService services.IStatsService,
	profileService services.IProfileService,
	listingService services.IListingService,
	orderService services.IOrderService,
	messageService services.IMessageService,
	storyService services.IStoryService,
	bannerService services.IBannerService,
	settingsService services.ISettingsService,
	notifier notify.Notifier,
	recentLimit int,
) *AdminHandler {
	return &AdminHandler{
		statsService:    statsService,
		profileService:  profileService,
		listingService:  listingService,
		orderService:    orderService,
		messageService:  messageService,
		storyService:    storyService,
		bannerService:   bannerService,
		settingsService: settingsService,
		notifier:        notifier,
		recentLimit:     recentLimit,
	}
}

// session pulls the admin session from context. AdminMiddleware guarantees it
// exists on these routes.
func (h *AdminHandler) session(c *gin.Context) auth.Session {
	sess, _ := middleware.GetSession(c)
	return sess
}

// notifyOnce sends the single notification for a moderation outcome. Delivery
// failures are logged, not surfaced: the HTTP response reflects the action,
// not the notification.
func (h *AdminHandler) notifyOnce(c *gin.Context, severity notify.Severity, title, description string) {
	if h.notifier == nil {
		return
	}
	n := notify.Notification{Title: title, Description: description, Severity: severity}
	if err := h.notifier.Notify(c.Request.Context(), n); err != nil {
		log.Printf("Warning: failed to send admin notification %q: %v", title, err)
	}
}

// failModeration maps service errors to HTTP responses. A failed moderation
// action produces the same single notification a successful one does, with
// error severity.
func (h *AdminHandler) failModeration(c *gin.Context, err error, entity string) {
	h.notifyOnce(c, notify.SeverityError, entity+" action failed", err.Error())
	switch {
	case errors.Is(err, auth.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Administrator privileges required"})
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Moderation action failed"})
	}
}

// --- Dashboard ---

// Dashboard handles GET /v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats := h.statsService.CachedStats(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}

// DashboardLive handles GET /v1/admin/dashboard/live
// Bypasses the cache for a fresh aggregation.
func (h *AdminHandler) DashboardLive(c *gin.Context) {
	stats := h.statsService.ComputeStats(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}

// --- Entity lists ---

// ListUsers handles GET /v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("q")
	limit := parseLimit(c, h.recentLimit)

	var (
		profiles []models.Profile
		err      error
	)
	if query != "" {
		profiles, err = h.profileService.Search(ctx, query, limit)
	} else {
		profiles, err = h.profileService.FindRecent(ctx, limit)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

// GetUser handles GET /v1/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	profile, err := h.profileService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListListings handles GET /v1/admin/listings
// ?pending=true restricts to listings awaiting approval.
func (h *AdminHandler) ListListings(c *gin.Context) {
	ctx := c.Request.Context()
	limit := parseLimit(c, h.recentLimit)

	var (
		listings []models.Listing
		err      error
	)
	switch {
	case c.Query("pending") == "true":
		listings, err = h.listingService.FindPending(ctx, limit)
	case c.Query("q") != "":
		listings, err = h.listingService.Search(ctx, c.Query("q"), c.Query("category"), false, limit)
	default:
		listings, err = h.listingService.FindRecent(ctx, limit)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// ListOrders handles GET /v1/admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.FindRecent(c.Request.Context(), parseLimit(c, h.recentLimit))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// ListMessages handles GET /v1/admin/messages
func (h *AdminHandler) ListMessages(c *gin.Context) {
	messages, err := h.messageService.FindRecent(c.Request.Context(), parseLimit(c, h.recentLimit))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// --- User moderation ---

// SuspendUser handles POST /v1/admin/users/:id/suspend
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.profileService.Suspend(c.Request.Context(), h.session(c), userID); err != nil {
		h.failModeration(c, err, "User")
		return
	}
	profile, err := h.profileService.FindByID(c.Request.Context(), userID)
	if err != nil {
		h.failModeration(c, err, "User")
		return
	}
	h.notifyOnce(c, notify.SeverityError, "User suspended", fmt.Sprintf("%s %s (%s) was suspended", profile.FirstName, profile.LastName, profile.Email))
	c.JSON(http.StatusOK, profile)
}

// ActivateUser handles POST /v1/admin/users/:id/activate
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.profileService.Activate(c.Request.Context(), h.session(c), userID); err != nil {
		h.failModeration(c, err, "User")
		return
	}
	profile, err := h.profileService.FindByID(c.Request.Context(), userID)
	if err != nil {
		h.failModeration(c, err, "User")
		return
	}
	h.notifyOnce(c, notify.SeveritySuccess, "User activated", fmt.Sprintf("%s %s (%s) was reactivated", profile.FirstName, profile.LastName, profile.Email))
	c.JSON(http.StatusOK, profile)
}

// GrantPremium handles POST /v1/admin/users/:id/premium
func (h *AdminHandler) GrantPremium(c *gin.Context) {
	userID := c.Param("id")
	if err := h.profileService.GrantPremium(c.Request.Context(), h.session(c), userID); err != nil {
		h.failModeration(c, err, "User")
		return
	}
	profile, err := h.profileService.FindByID(c.Request.Context(), userID)
	if err != nil {
		h.failModeration(c, err, "User")
		return
	}
	h.notifyOnce(c, notify.SeveritySuccess, "Premium granted", fmt.Sprintf("%s is now premium until %v", profile.Email, profile.PremiumExpiresAt))
	c.JSON(http.StatusOK, profile)
}

// RevokePremium handles DELETE /v1/admin/users/:id/premium
func (h *AdminHandler) RevokePremium(c *gin.Context) {
	userID := c.Param("id")
	if err := h.profileService.RevokePremium(c.Request.Context(), h.session(c), userID); err != nil {
		h.failModeration(c, err, "User")
		return
	}
	profile, err := h.profileService.FindByID(c.Request.Context(), userID)
	if err != nil {
		h.failModeration(c, err, "User")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Premium revoked", fmt.Sprintf("Premium removed from %s", profile.Email))
	c.JSON(http.StatusOK, profile)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetUserRole handles PUT /v1/admin/users/:id/role
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	userID := c.Param("id")

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	role := models.Role(req.Role)
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if err := h.profileService.SetRole(c.Request.Context(), h.session(c), userID, role); err != nil {
		h.failModeration(c, err, "User")
		return
	}
	profile, err := h.profileService.FindByID(c.Request.Context(), userID)
	if err != nil {
		h.failModeration(c, err, "User")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Role changed", fmt.Sprintf("%s is now a %s", profile.Email, profile.Role))
	c.JSON(http.StatusOK, profile)
}

// DeleteUser handles DELETE /v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.profileService.Delete(c.Request.Context(), h.session(c), userID); err != nil {
		h.failModeration(c, err, "User")
		return
	}
	h.notifyOnce(c, notify.SeverityError, "User deleted", fmt.Sprintf("Account %s was deleted", userID))
	c.JSON(http.StatusOK, gin.H{"deleted": userID})
}

// --- Listing moderation ---

// ApproveListing handles POST /v1/admin/listings/:id/approve
func (h *AdminHandler) ApproveListing(c *gin.Context) {
	listingID := c.Param("id")
	if err := h.listingService.Approve(c.Request.Context(), h.session(c), listingID); err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	listing, err := h.listingService.FindByID(c.Request.Context(), listingID)
	if err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	h.notifyOnce(c, notify.SeveritySuccess, "Listing approved", fmt.Sprintf("%q is now live", listing.Name))
	c.JSON(http.StatusOK, listing)
}

// RejectListing handles POST /v1/admin/listings/:id/reject
func (h *AdminHandler) RejectListing(c *gin.Context) {
	listingID := c.Param("id")
	if err := h.listingService.Reject(c.Request.Context(), h.session(c), listingID); err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	listing, err := h.listingService.FindByID(c.Request.Context(), listingID)
	if err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	h.notifyOnce(c, notify.SeverityError, "Listing rejected", fmt.Sprintf("%q was rejected", listing.Name))
	c.JSON(http.StatusOK, listing)
}

// ToggleListingFeatured handles POST /v1/admin/listings/:id/feature
func (h *AdminHandler) ToggleListingFeatured(c *gin.Context) {
	listingID := c.Param("id")
	if err := h.listingService.ToggleFeatured(c.Request.Context(), h.session(c), listingID); err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	listing, err := h.listingService.FindByID(c.Request.Context(), listingID)
	if err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Listing featured flag toggled", fmt.Sprintf("%q featured=%t", listing.Name, listing.Featured))
	c.JSON(http.StatusOK, listing)
}

// DeleteListing handles DELETE /v1/admin/listings/:id
func (h *AdminHandler) DeleteListing(c *gin.Context) {
	listingID := c.Param("id")
	if err := h.listingService.Delete(c.Request.Context(), h.session(c), listingID); err != nil {
		h.failModeration(c, err, "Listing")
		return
	}
	h.notifyOnce(c, notify.SeverityError, "Listing deleted", fmt.Sprintf("Listing %s was removed", listingID))
	c.JSON(http.StatusOK, gin.H{"deleted": listingID})
}

// --- Stories ---

type storyRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	AuthorName  string `json:"author_name"`
	AuthorImage string `json:"author_image"`
}

// CreateStory handles POST /v1/admin/stories
func (h *AdminHandler) CreateStory(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	story, err := h.storyService.Create(c.Request.Context(), h.session(c), req.Title, req.Content, req.AuthorName, req.AuthorImage)
	if err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	h.notifyOnce(c, notify.SeveritySuccess, "Story created", fmt.Sprintf("%q saved as a draft", story.Title))
	c.JSON(http.StatusCreated, story)
}

// UpdateStory handles PUT /v1/admin/stories/:id
func (h *AdminHandler) UpdateStory(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	story, err := h.storyService.Update(c.Request.Context(), h.session(c), c.Param("id"), updates)
	if err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Story updated", fmt.Sprintf("%q was edited", story.Title))
	c.JSON(http.StatusOK, story)
}

// ListStories handles GET /v1/admin/stories (drafts included)
func (h *AdminHandler) ListStories(c *gin.Context) {
	stories, err := h.storyService.FindRecent(c.Request.Context(), parseLimit(c, h.recentLimit))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stories})
}

// PublishStory handles POST /v1/admin/stories/:id/publish
func (h *AdminHandler) PublishStory(c *gin.Context) {
	storyID := c.Param("id")
	if err := h.storyService.Publish(c.Request.Context(), h.session(c), storyID); err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	story, err := h.storyService.FindByID(c.Request.Context(), storyID)
	if err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	h.notifyOnce(c, notify.SeveritySuccess, "Story published", fmt.Sprintf("%q is now public", story.Title))
	c.JSON(http.StatusOK, story)
}

// ToggleStoryFeatured handles POST /v1/admin/stories/:id/feature
func (h *AdminHandler) ToggleStoryFeatured(c *gin.Context) {
	storyID := c.Param("id")
	if err := h.storyService.ToggleFeatured(c.Request.Context(), h.session(c), storyID); err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	story, err := h.storyService.FindByID(c.Request.Context(), storyID)
	if err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Story featured flag toggled", fmt.Sprintf("%q featured=%t", story.Title, story.Featured))
	c.JSON(http.StatusOK, story)
}

// DeleteStory handles DELETE /v1/admin/stories/:id
func (h *AdminHandler) DeleteStory(c *gin.Context) {
	storyID := c.Param("id")
	if err := h.storyService.Delete(c.Request.Context(), h.session(c), storyID); err != nil {
		h.failModeration(c, err, "Story")
		return
	}
	h.notifyOnce(c, notify.SeverityError, "Story deleted", fmt.Sprintf("Story %s was removed", storyID))
	c.JSON(http.StatusOK, gin.H{"deleted": storyID})
}

// --- Banners ---

type bannerRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageKey    string `json:"image_key"`
}

// CreateBanner handles POST /v1/admin/banners
func (h *AdminHandler) CreateBanner(c *gin.Context) {
	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	banner, err := h.bannerService.Create(c.Request.Context(), h.session(c), req.Title, req.Description, req.ImageKey)
	if err != nil {
		h.failModeration(c, err, "Banner")
		return
	}
	h.notifyOnce(c, notify.SeveritySuccess, "Banner created", fmt.Sprintf("%q added, inactive until activated", banner.Title))
	c.JSON(http.StatusCreated, banner)
}

// UpdateBanner handles PUT /v1/admin/banners/:id
func (h *AdminHandler) UpdateBanner(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	banner, err := h.bannerService.Update(c.Request.Context(), h.session(c), c.Param("id"), updates)
	if err != nil {
		h.failModeration(c, err, "Banner")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Banner updated", fmt.Sprintf("%q was edited", banner.Title))
	c.JSON(http.StatusOK, banner)
}

// ListBanners handles GET /v1/admin/banners
func (h *AdminHandler) ListBanners(c *gin.Context) {
	banners, err := h.bannerService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": banners})
}

// ActivateBanner handles POST /v1/admin/banners/:id/activate
// At most one banner is active at a time; activating one deactivates the rest.
func (h *AdminHandler) ActivateBanner(c *gin.Context) {
	bannerID := c.Param("id")
	if err := h.bannerService.Activate(c.Request.Context(), h.session(c), bannerID); err != nil {
		h.failModeration(c, err, "Banner")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Banner activated", fmt.Sprintf("Banner %s is now live on the homepage", bannerID))
	c.JSON(http.StatusOK, gin.H{"active": bannerID})
}

// DeactivateBanner handles POST /v1/admin/banners/:id/deactivate
func (h *AdminHandler) DeactivateBanner(c *gin.Context) {
	bannerID := c.Param("id")
	if err := h.bannerService.Deactivate(c.Request.Context(), h.session(c), bannerID); err != nil {
		h.failModeration(c, err, "Banner")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Banner deactivated", fmt.Sprintf("Banner %s removed from the homepage", bannerID))
	c.JSON(http.StatusOK, gin.H{"deactivated": bannerID})
}

// DeleteBanner handles DELETE /v1/admin/banners/:id
func (h *AdminHandler) DeleteBanner(c *gin.Context) {
	bannerID := c.Param("id")
	if err := h.bannerService.Delete(c.Request.Context(), h.session(c), bannerID); err != nil {
		h.failModeration(c, err, "Banner")
		return
	}
	h.notifyOnce(c, notify.SeverityError, "Banner deleted", fmt.Sprintf("Banner %s was removed", bannerID))
	c.JSON(http.StatusOK, gin.H{"deleted": bannerID})
}

// --- Settings ---

// GetSettings handles GET /v1/admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

type setSettingRequest struct {
	Value interface{} `json:"value" binding:"required"`
}

// SetSetting handles PUT /v1/admin/settings/:key
func (h *AdminHandler) SetSetting(c *gin.Context) {
	key := c.Param("key")

	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.settingsService.Set(c.Request.Context(), h.session(c), key, req.Value); err != nil {
		h.failModeration(c, err, "Setting")
		return
	}
	h.notifyOnce(c, notify.SeverityInfo, "Setting updated", fmt.Sprintf("Setting %q changed by %s", key, h.session(c).Email))
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
