package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adriannogy/TFG/auth"
	"github.com/adriannogy/TFG/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer wires the whole stack over an in-memory database.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("API_SECRET", "testsecret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Relation{},
		&models.Restaurant{},
		&models.Review{},
		&models.Photo{},
		&models.Favorite{},
	)
	require.NoError(t, err)

	server := &Server{DB: db}
	server.WireServices()
	server.Router = gin.New()
	server.initializeRoutes()
	return server
}

func newTestUser(t *testing.T, server *Server, username string, private bool) (*models.User, string) {
	t.Helper()

	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		IsPrivate: private,
		Verified:  true,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, server.DB.Create(&user).Error)
	if !private {
		require.NoError(t, server.DB.Model(&user).Update("is_private", false).Error)
	}

	token, err := auth.CreateToken(user.ID)
	require.NoError(t, err)
	return &user, token
}

func doRequest(t *testing.T, server *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	return w
}

func responseField(t *testing.T, w *httptest.ResponseRecorder) interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["response"]
}
