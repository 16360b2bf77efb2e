package controllers

import (
	"net/http"
	"strconv"

	"github.com/adriannogy/TFG/services"
	"github.com/adriannogy/TFG/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// GetFeed returns one page of reviews by the caller's accepted followees
func (server *Server) GetFeed(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	feed, err := server.Feed.BuildFeed(c.Request.Context(), userID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": feed,
	})
}

// CreateReview stores a review, importing the restaurant from OSM if needed
func (server *Server) CreateReview(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	review, err := server.Reviews.Create(c.Request.Context(), userID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": review,
	})
}

// DeleteReview removes the caller's review of a restaurant
func (server *Server) DeleteReview(c *gin.Context) {
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

	if err := server.Reviews.Delete(c.Request.Context(), userID, uint(restaurantID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Review deleted",
	})
}

// RestaurantReviews lists the reviews of one restaurant
func (server *Server) RestaurantReviews(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant ID"})
		return
	}

	reviews, err := server.Reviews.ByRestaurant(c.Request.Context(), uint(restaurantID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": reviews,
	})
}
