package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chapamarket/backend/internal/api/handlers"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/models"
	"chapamarket/backend/internal/services"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JwtSecret: "test-secret",
		JwtTTL:    time.Hour,
	}
}

func newAuthRouter(h *handlers.AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/auth/register", h.Register)
	r.POST("/v1/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	profile := &models.Profile{
		ID:        "user-1",
		FirstName: "Asha",
		LastName:  "Mrema",
		Email:     "asha@example.com",
		Role:      models.RoleSeller,
		Status:    models.StatusActive,
	}
	mockProfileSvc.On("Register", mock.Anything, "Asha", "Mrema", "asha@example.com", "", "", "password123", models.RoleSeller).
		Return(profile, nil)

	w := postJSON(t, r, "/v1/auth/register", gin.H{
		"first_name": "Asha",
		"last_name":  "Mrema",
		"email":      "asha@example.com",
		"password":   "password123",
		"role":       "seller",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "token")
	assert.Contains(t, resp, "user")
	mockProfileSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_DefaultsToBuyer(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	profile := &models.Profile{ID: "user-2", Email: "b@example.com", Role: models.RoleBuyer}
	mockProfileSvc.On("Register", mock.Anything, "B", "B", "b@example.com", "", "", "password123", models.RoleBuyer).
		Return(profile, nil)

	w := postJSON(t, r, "/v1/auth/register", gin.H{
		"first_name": "B",
		"last_name":  "B",
		"email":      "b@example.com",
		"password":   "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	mockProfileSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_EmailConflict(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	mockProfileSvc.On("Register", mock.Anything, "Asha", "Mrema", "asha@example.com", "", "", "password123", models.RoleBuyer).
		Return(nil, services.ErrEmailExists)

	w := postJSON(t, r, "/v1/auth/register", gin.H{
		"first_name": "Asha",
		"last_name":  "Mrema",
		"email":      "asha@example.com",
		"password":   "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	mockProfileSvc.AssertExpectations(t)
}

func TestAuthHandler_Register_InvalidRole(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	w := postJSON(t, r, "/v1/auth/register", gin.H{
		"first_name": "Asha",
		"last_name":  "Mrema",
		"email":      "asha@example.com",
		"password":   "password123",
		"role":       "superuser",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockProfileSvc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	w := postJSON(t, r, "/v1/auth/register", gin.H{
		"first_name": "Asha",
		"last_name":  "Mrema",
		"email":      "asha@example.com",
		"password":   "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockProfileSvc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	profile := &models.Profile{
		ID:     "user-1",
		Email:  "asha@example.com",
		Role:   models.RoleSeller,
		Status: models.StatusActive,
	}
	mockProfileSvc.On("Authenticate", mock.Anything, "asha@example.com", "password123").Return(profile, nil)

	w := postJSON(t, r, "/v1/auth/login", gin.H{
		"email":    "asha@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "token")
	mockProfileSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	mockProfileSvc.On("Authenticate", mock.Anything, "asha@example.com", "wrong").
		Return(nil, services.ErrInvalidCredentials)

	w := postJSON(t, r, "/v1/auth/login", gin.H{
		"email":    "asha@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockProfileSvc.AssertExpectations(t)
}

func TestAuthHandler_Login_SuspendedAccount(t *testing.T) {
	mockProfileSvc := new(MockProfileService)
	h := handlers.NewAuthHandler(authTestConfig(), mockProfileSvc)
	r := newAuthRouter(h)

	profile := &models.Profile{
		ID:     "user-1",
		Email:  "asha@example.com",
		Role:   models.RoleSeller,
		Status: models.StatusSuspended,
	}
	mockProfileSvc.On("Authenticate", mock.Anything, "asha@example.com", "password123").Return(profile, nil)

	w := postJSON(t, r, "/v1/auth/login", gin.H{
		"email":    "asha@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockProfileSvc.AssertExpectations(t)
}
