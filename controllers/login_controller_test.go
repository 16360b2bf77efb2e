package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adriannogy/TFG/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authTestRouter mounts the auth handlers without the login rate limiter so
// tests can call them freely.
func authTestRouter(server *Server) *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/register", server.Register)
	r.POST("/api/auth/login", server.Login)
	r.GET("/api/auth/verify", server.VerifyEmail)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLoginFlow(t *testing.T) {
	server := setupTestServer(t)
	r := authTestRouter(server)

	w := postJSON(t, r, "/api/auth/register", map[string]string{
		"username": "ana",
		"email":    "ana@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	registered := responseField(t, w).(map[string]interface{})
	assert.Equal(t, "ana", registered["username"])
	// Credentials never leak into responses
	_, hasPassword := registered["password"]
	assert.False(t, hasPassword)

	// Unverified accounts cannot log in yet
	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Verify through the emailed token
	var stored models.User
	require.NoError(t, server.DB.Where("email = ?", "ana@example.com").Take(&stored).Error)
	req, _ := http.NewRequest(http.MethodGet, "/api/auth/verify?token="+stored.VerificationToken, nil)
	verifyRec := httptest.NewRecorder()
	r.ServeHTTP(verifyRec, req)
	require.Equal(t, http.StatusOK, verifyRec.Code)

	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	logged := responseField(t, w).(map[string]interface{})
	assert.NotEmpty(t, logged["token"])

	// Wrong password
	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server := setupTestServer(t)
	r := authTestRouter(server)

	body := map[string]string{
		"username": "ana",
		"email":    "ana@example.com",
		"password": "password123",
	}
	w := postJSON(t, r, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	body["username"] = "otra"
	w = postJSON(t, r, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
