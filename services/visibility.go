package services

import "github.com/adriannogy/TFG/models"

// CanViewDetails decides whether a viewer may see the detailed parts of a
// profile (counts, reviews, relationship lists). Owners always see their own
// profile, public profiles are open to everyone, and private profiles require
// an accepted follow edge from the viewer. A pending request grants nothing.
func CanViewDetails(viewerID uint, owner *models.User, relationState *string) bool {
	if viewerID == owner.ID {
		return true
	}
	if !owner.IsPrivate {
		return true
	}
	return relationState != nil && *relationState == models.RelationAccepted
}
