package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chapamarket/backend/internal/api/middleware"
	"chapamarket/backend/internal/auth"
)

const testJwtSecret = "test-secret"

func setupAuthEngine(adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := []gin.HandlerFunc{middleware.AuthMiddleware(testJwtSecret)}
	if adminOnly {
		handlers = append(handlers, middleware.AdminMiddleware())
	}
	handlers = append(handlers, func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session")
			return
		}
		c.String(http.StatusOK, sess.UserID)
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := setupAuthEngine(false)

	token, err := auth.GenerateJWT("user-1", "asha@example.com", "seller", false, testJwtSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupAuthEngine(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := setupAuthEngine(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "NotBearer token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router := setupAuthEngine(false)

	token, err := auth.GenerateJWT("user-1", "asha@example.com", "seller", false, "other-secret", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	router := setupAuthEngine(false)

	token, err := auth.GenerateJWT("user-1", "asha@example.com", "seller", false, testJwtSecret, -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware_NonAdminForbidden(t *testing.T) {
	router := setupAuthEngine(true)

	token, err := auth.GenerateJWT("user-1", "asha@example.com", "seller", false, testJwtSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminMiddleware_AdminAllowed(t *testing.T) {
	router := setupAuthEngine(true)

	token, err := auth.GenerateJWT("admin-1", "admin@example.com", "admin", true, testJwtSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", w.Body.String())
}
