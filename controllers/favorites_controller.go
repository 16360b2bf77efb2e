package controllers

import (
	"net/http"
	"strconv"

	"github.com/adriannogy/TFG/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// ListFavorites pages through the caller's favorite restaurants
func (server *Server) ListFavorites(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	favorites, err := server.Favorites.List(c.Request.Context(), userID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": favorites,
	})
}

// AddFavorite marks a restaurant as favorite, idempotently
func (server *Server) AddFavorite(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	restaurantID, err := strconv.ParseUint(c.Param("restaurant_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant ID"})
		return
	}

	if err := server.Favorites.Add(c.Request.Context(), userID, uint(restaurantID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Added to favorites",
	})
}

// RemoveFavorite unmarks a favorite, idempotently
func (server *Server) RemoveFavorite(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	restaurantID, err := strconv.ParseUint(c.Param("restaurant_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant ID"})
		return
	}

	if err := server.Favorites.Remove(c.Request.Context(), userID, uint(restaurantID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Removed from favorites",
	})
}
