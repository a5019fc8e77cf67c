package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chapamarket/backend/internal/auth"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/models"
	"chapamarket/backend/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	cfg            *config.Config
	profileService services.IProfileService
}

func NewAuthHandler(cfg *config.Config, profileService services.IProfileService) *AuthHandler {
	return &AuthHandler{cfg: cfg, profileService: profileService}
}

type registerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = models.RoleBuyer
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	profile, err := h.profileService.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Phone, req.Location, req.Password, role)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register account"})
		return
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email, string(profile.Role), profile.Role == models.RoleAdmin, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": profile})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	profile, err := h.profileService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if profile.Status == models.StatusSuspended {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
		return
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email, string(profile.Role), profile.Role == models.RoleAdmin, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": profile})
}
