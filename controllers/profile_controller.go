package controllers

import (
	"net/http"

	"github.com/adriannogy/TFG/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// MyProfile returns the caller's own profile with counts and reviews
func (server *Server) MyProfile(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := server.Profiles.OwnProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": profile,
	})
}

// ViewProfile returns another user's profile, with details hidden when the
// visibility policy denies them
func (server *Server) ViewProfile(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := server.Profiles.ViewProfile(c.Request.Context(), userID, c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": profile,
	})
}
