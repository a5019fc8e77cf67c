package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"chapamarket/backend/internal/api/middleware"
	"chapamarket/backend/internal/services"
)

// OrderHandler handles buyer-side order placement and history.
type OrderHandler struct {
	orderService   services.IOrderService
	listingService services.IListingService
}

func NewOrderHandler(orderService services.IOrderService, listingService services.IListingService) *OrderHandler {
	return &OrderHandler{orderService: orderService, listingService: listingService}
}

type createOrderRequest struct {
	ListingID     string `json:"listing_id" binding:"required"`
	TotalAmount   string `json:"total_amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// Create handles POST /v1/order
func (h *OrderHandler) Create(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listing, err := h.listingService.FindByID(c.Request.Context(), req.ListingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}
	if listing.SellerID == sess.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot order your own listing"})
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), sess.UserID, listing.SellerID, listing.ID, req.TotalAmount, req.PaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// MyOrders handles GET /v1/order
func (h *OrderHandler) MyOrders(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	orders, err := h.orderService.FindByBuyer(c.Request.Context(), sess.UserID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}
