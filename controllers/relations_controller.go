package controllers

import (
	"net/http"

	"github.com/adriannogy/TFG/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// RequestFollow sends a follow request to the user named in the path
func (server *Server) RequestFollow(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := server.Relations.RequestFollow(c.Request.Context(), userID, c.Param("handle")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Follow request sent",
	})
}

// AcceptRequest accepts a pending follow request from the named user
func (server *Server) AcceptRequest(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := server.Relations.AcceptRequest(c.Request.Context(), userID, c.Param("handle")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Follow request accepted",
	})
}

// RejectRequest rejects a follow request from the named user
func (server *Server) RejectRequest(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := server.Relations.RejectRequest(c.Request.Context(), userID, c.Param("handle")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Follow request rejected",
	})
}

// Unfollow stops following the named user
func (server *Server) Unfollow(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := server.Relations.Unfollow(c.Request.Context(), userID, c.Param("handle")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Unfollowed",
	})
}

// RemoveFollower removes the named user from the caller's followers
func (server *Server) RemoveFollower(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := server.Relations.RemoveFollower(c.Request.Context(), userID, c.Param("handle")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Follower removed",
	})
}

// MyFollowers lists the caller's accepted followers
func (server *Server) MyFollowers(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	followers, err := server.Relations.MyFollowers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": followers,
	})
}

// FollowersOf lists the accepted followers of the named user
func (server *Server) FollowersOf(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	followers, err := server.Relations.FollowersOf(c.Request.Context(), userID, c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": followers,
	})
}

// MyFollowing lists who the caller follows
func (server *Server) MyFollowing(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	following, err := server.Relations.MyFollowing(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": following,
	})
}

// FollowingOf lists who the named user follows
func (server *Server) FollowingOf(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	following, err := server.Relations.FollowingOf(c.Request.Context(), userID, c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": following,
	})
}

// PendingRequests lists the follow requests waiting on the caller
func (server *Server) PendingRequests(c *gin.Context) {
	userID, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pending, err := server.Relations.PendingRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": pending,
	})
}
