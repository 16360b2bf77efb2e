package controllers

import (
	"log"
	"net/http"

	"github.com/adriannogy/TFG/services"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status. Untyped errors are
// internal: logged in full, reported vaguely.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong, please try again later"

	switch services.CodeOf(err) {
	case services.CodeBadRequest:
		status = http.StatusBadRequest
		message = err.Error()
	case services.CodeNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case services.CodeConflict:
		status = http.StatusConflict
		message = err.Error()
	case services.CodeForbidden:
		status = http.StatusForbidden
		message = err.Error()
	case services.CodeUnauthorized:
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{"error": message})
}
