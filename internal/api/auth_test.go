package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/api"
	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/testhelpers"
)

type nopEmailService struct{}

func (nopEmailService) SendConfirmationEmail(*models.User, string) error { return nil }
func (nopEmailService) SendPasswordResetEmail(*models.User, string) error {
	return nil
}
func (nopEmailService) SendEmail(string, string, string) error { return nil }

func setupAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLiteDB(t)
	auth := service.NewAuthService(db, "test-jwt-secret", nopEmailService{})

	router := gin.New()
	api.NewAuthHandler(auth).RegisterRoutes(router.Group("/api/v1"))
	return router, db
}

func postJSON(t *testing.T, router http.Handler, path string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := postJSON(t, router, "/api/v1/auth/register", gin.H{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// Duplicate email conflicts.
	w = postJSON(t, router, "/api/v1/auth/register", gin.H{
		"name":     "Again",
		"email":    "new@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	router, _ := setupAuthRouter(t)

	cases := []gin.H{
		{"email": "new@example.com", "password": "password123"}, // no name
		{"name": "X", "email": "not-an-email", "password": "password123"},
		{"name": "X", "email": "new@example.com", "password": "short"},
	}
	for _, body := range cases {
		w := postJSON(t, router, "/api/v1/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	router, db := setupAuthRouter(t)
	testhelpers.CreateTestUser(t, db, "login@example.com")

	w := postJSON(t, router, "/api/v1/auth/login", gin.H{
		"email":    "login@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	w = postJSON(t, router, "/api/v1/auth/login", gin.H{
		"email":    "login@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConfirmEmailEndpoint(t *testing.T) {
	router, db := setupAuthRouter(t)

	w := postJSON(t, router, "/api/v1/auth/register", gin.H{
		"name":     "Confirm Me",
		"email":    "confirm@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "confirm@example.com").Error)
	require.NotEmpty(t, user.ConfirmToken)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/confirm?token="+user.ConfirmToken, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/confirm?token=bogus", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	router, db := setupAuthRouter(t)
	testhelpers.CreateTestUser(t, db, "reset@example.com")

	// The answer never reveals whether the account exists.
	known := postJSON(t, router, "/api/v1/auth/password-reset", gin.H{"email": "reset@example.com"})
	unknown := postJSON(t, router, "/api/v1/auth/password-reset", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	var reset models.PasswordReset
	require.NoError(t, db.First(&reset).Error)

	w := postJSON(t, router, "/api/v1/auth/password-reset/confirm", gin.H{
		"token":    reset.Token,
		"password": "brandnewpass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, "/api/v1/auth/login", gin.H{
		"email":    "reset@example.com",
		"password": "brandnewpass",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, "/api/v1/auth/password-reset/confirm", gin.H{
		"token":    reset.Token,
		"password": "anotherpass1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "reset tokens are single-use")
}
