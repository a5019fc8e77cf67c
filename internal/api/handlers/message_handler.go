package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chapamarket/backend/internal/api/middleware"
	"chapamarket/backend/internal/services"
)

// MessageHandler handles buyer/seller messaging around listings.
type MessageHandler struct {
	messageService services.IMessageService
}

func NewMessageHandler(messageService services.IMessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	ListingID  string `json:"listing_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// Send handles POST /v1/message
func (h *MessageHandler) Send(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), sess.UserID, req.ReceiverID, req.ListingID, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// Conversations handles GET /v1/message/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	convos, err := h.messageService.ConversationsForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": convos})
}

// Thread handles GET /v1/message/thread?peer_id=...&listing_id=...
func (h *MessageHandler) Thread(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	peerID := c.Query("peer_id")
	listingID := c.Query("listing_id")
	if peerID == "" || listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "peer_id and listing_id are required"})
		return
	}

	msgs, err := h.messageService.ConversationThread(c.Request.Context(), sess.UserID, peerID, listingID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch thread"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs})
}
