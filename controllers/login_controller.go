package controllers

import (
	"net/http"

	"github.com/adriannogy/TFG/models"

	"github.com/gin-gonic/gin"
)

// Register handles user registration
func (server *Server) Register(c *gin.Context) {
	var user models.User

	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	created, err := server.Users.Register(c.Request.Context(), &user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": publicUser(created),
	})
}

// Login exchanges email and password for a bearer token
func (server *Server) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	token, user, err := server.Users.Login(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"token": token,
			"user":  publicUser(user),
		},
	})
}

// VerifyEmail consumes the token from the verification email
func (server *Server) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if err := server.Users.VerifyEmail(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Account verified, you can log in now",
	})
}

// ForgotPassword issues a reset token by email
func (server *Server) ForgotPassword(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	if err := server.Users.RequestPasswordReset(c.Request.Context(), body.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "If the email exists, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets the new password
func (server *Server) ResetPassword(c *gin.Context) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	if err := server.Users.ResetPassword(c.Request.Context(), body.Token, body.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Password updated",
	})
}
