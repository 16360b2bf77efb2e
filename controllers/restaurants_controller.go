package controllers

import (
	"net/http"
	"strconv"

	"github.com/adriannogy/TFG/services"

	"github.com/gin-gonic/gin"
)

// SearchRestaurants pages through the local catalogue with optional filters
func (server *Server) SearchRestaurants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	results, err := server.Restaurants.Search(
		c.Request.Context(),
		c.Query("nombre"),
		c.Query("ciudad"),
		c.Query("tipoCocina"),
		c.Query("direccion"),
		page, size,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": results,
	})
}

// GetRestaurant fetches one restaurant by id
func (server *Server) GetRestaurant(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant ID"})
		return
	}

	restaurant, err := server.Restaurants.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": restaurant,
	})
}

// SearchExternalRestaurants queries OpenStreetMap for restaurants in a city
func (server *Server) SearchExternalRestaurants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	results, err := server.Restaurants.SearchExternal(
		c.Request.Context(),
		c.Query("ciudad"),
		c.Query("nombre"),
		c.Query("tipoCocina"),
		c.Query("direccion"),
		page, size,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": results,
	})
}

// ImportRestaurant persists one OSM element chosen by the client
func (server *Server) ImportRestaurant(c *gin.Context) {
	var req services.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	restaurant, err := server.Restaurants.Import(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": restaurant,
	})
}

// SyncCity imports every OSM restaurant of a city not yet stored locally
func (server *Server) SyncCity(c *gin.Context) {
	var body struct {
		City string `json:"city"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	created, err := server.Restaurants.SyncCity(c.Request.Context(), body.City)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": gin.H{"imported": created},
	})
}
