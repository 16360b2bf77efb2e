package services

import (
	"context"
	"errors"
	"log"

	"github.com/adriannogy/TFG/cache"
	"github.com/adriannogy/TFG/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSummary is the public slice of a user exposed in relationship lists.
type UserSummary struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// RelationService is the follow-graph state machine. Every mutation runs in a
// single transaction against the store and ends by evicting the cached read
// views it may have staled. Uniqueness per ordered pair is enforced by the
// composite primary key, not by engine-side locking.
type RelationService struct {
	DB *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{DB: db}
}

// RequestFollow creates a PENDING edge from followerID to the user named by
// targetHandle. An edge in any state for the pair is a conflict; the error
// deliberately does not say whether it was pending or accepted.
func (s *RelationService) RequestFollow(ctx context.Context, followerID uint, targetHandle string) error {
	follower, err := s.userByID(ctx, followerID)
	if err != nil {
		return err
	}
	target, err := s.userByHandle(ctx, targetHandle)
	if err != nil {
		return err
	}

	if follower.ID == target.ID {
		return badRequestf("a user cannot follow themselves")
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		relation := models.Relation{
			FollowerID: follower.ID,
			FollowedID: target.ID,
			State:      models.RelationPending,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&relation)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("a follow request already exists or the users already follow each other")
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidatePendingRequests(ctx, target.ID)
	log.Printf("user %q requested to follow %q", follower.Username, target.Username)
	return nil
}

// AcceptRequest transitions the edge (requester -> accepter) to ACCEPTED.
// Accepting an already-accepted edge is a no-op success.
func (s *RelationService) AcceptRequest(ctx context.Context, accepterID uint, requesterHandle string) error {
	accepter, err := s.userByID(ctx, accepterID)
	if err != nil {
		return err
	}
	requester, err := s.userByHandle(ctx, requesterHandle)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var relation models.Relation
		if err := tx.Where("follower_id = ? AND followed_id = ?", requester.ID, accepter.ID).
			Take(&relation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("follow request from %q not found", requesterHandle)
			}
			return err
		}
		if relation.State == models.RelationAccepted {
			return nil
		}
		return tx.Model(&models.Relation{}).
			Where("follower_id = ? AND followed_id = ?", requester.ID, accepter.ID).
			Update("state", models.RelationAccepted).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateRelationViews(ctx, requester.ID, accepter.ID)
	log.Printf("user %q accepted follow request from %q", accepter.Username, requester.Username)
	return nil
}

// RejectRequest deletes the edge (requester -> accepter). The edge is removed
// whatever its state, so rejecting an accepted relation severs it too.
func (s *RelationService) RejectRequest(ctx context.Context, accepterID uint, requesterHandle string) error {
	accepter, err := s.userByID(ctx, accepterID)
	if err != nil {
		return err
	}
	requester, err := s.userByHandle(ctx, requesterHandle)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var relation models.Relation
		if err := tx.Where("follower_id = ? AND followed_id = ?", requester.ID, accepter.ID).
			Take(&relation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("follow request from %q not found", requesterHandle)
			}
			return err
		}
		return tx.Where("follower_id = ? AND followed_id = ?", requester.ID, accepter.ID).
			Delete(&models.Relation{}).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateRelationViews(ctx, requester.ID, accepter.ID)
	log.Printf("user %q rejected follow request from %q", accepter.Username, requester.Username)
	return nil
}

// Unfollow deletes the edge (follower -> followee). Deleting a nonexistent
// edge is a silent no-op; only a missing user is an error.
func (s *RelationService) Unfollow(ctx context.Context, followerID uint, followeeHandle string) error {
	follower, err := s.userByID(ctx, followerID)
	if err != nil {
		return err
	}
	followee, err := s.userByHandle(ctx, followeeHandle)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", follower.ID, followee.ID).
		Delete(&models.Relation{}).Error
	if err != nil {
		return err
	}

	cache.InvalidateRelationViews(ctx, follower.ID, followee.ID)
	log.Printf("user %q unfollowed %q", follower.Username, followee.Username)
	return nil
}

// RemoveFollower forcibly deletes an ACCEPTED edge (follower -> followee) on
// the followee's initiative. Unlike Unfollow it is strict: a missing or
// still-pending edge is a conflict.
func (s *RelationService) RemoveFollower(ctx context.Context, followeeID uint, followerHandle string) error {
	followee, err := s.userByID(ctx, followeeID)
	if err != nil {
		return err
	}
	follower, err := s.userByHandle(ctx, followerHandle)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var relation models.Relation
		if err := tx.Where("follower_id = ? AND followed_id = ?", follower.ID, followee.ID).
			Take(&relation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflictf("no relation exists with follower %q", followerHandle)
			}
			return err
		}
		if relation.State != models.RelationAccepted {
			return conflictf("cannot remove a follower that has not been accepted")
		}
		return tx.Where("follower_id = ? AND followed_id = ?", follower.ID, followee.ID).
			Delete(&models.Relation{}).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateRelationViews(ctx, follower.ID, followee.ID)
	log.Printf("user %q removed follower %q", followee.Username, follower.Username)
	return nil
}

// MyFollowers lists the accepted followers of the authenticated user.
func (s *RelationService) MyFollowers(ctx context.Context, userID uint) ([]UserSummary, error) {
	if _, err := s.userByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.FollowersKey(userID), func() ([]UserSummary, error) {
		return s.followersOf(ctx, userID)
	})
}

// FollowersOf lists the accepted followers of another user, gated by the
// visibility policy. Existence is checked before permission, so an unknown
// handle is NotFound rather than Forbidden.
func (s *RelationService) FollowersOf(ctx context.Context, viewerID uint, handle string) ([]UserSummary, error) {
	owner, err := s.userByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeListAccess(ctx, viewerID, owner); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.FollowersKey(owner.ID), func() ([]UserSummary, error) {
		return s.followersOf(ctx, owner.ID)
	})
}

// MyFollowing lists the users the authenticated user follows (accepted only).
func (s *RelationService) MyFollowing(ctx context.Context, userID uint) ([]UserSummary, error) {
	if _, err := s.userByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.FollowingKey(userID), func() ([]UserSummary, error) {
		return s.followingOf(ctx, userID)
	})
}

// FollowingOf lists who another user follows, gated like FollowersOf.
func (s *RelationService) FollowingOf(ctx context.Context, viewerID uint, handle string) ([]UserSummary, error) {
	owner, err := s.userByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeListAccess(ctx, viewerID, owner); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.FollowingKey(owner.ID), func() ([]UserSummary, error) {
		return s.followingOf(ctx, owner.ID)
	})
}

// PendingRequests lists users with an outstanding PENDING request to userID.
func (s *RelationService) PendingRequests(ctx context.Context, userID uint) ([]UserSummary, error) {
	if _, err := s.userByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.RequestsKey(userID), func() ([]UserSummary, error) {
		return s.relatedUsers(ctx,
			"relations.followed_id = ? AND relations.state = ?",
			[]interface{}{userID, models.RelationPending},
			"users.id = relations.follower_id",
		)
	})
}

// RelationState returns the state of the edge (followerID -> followedID), or
// nil when no edge exists.
func (s *RelationService) RelationState(ctx context.Context, followerID, followedID uint) (*string, error) {
	var relation models.Relation
	err := s.DB.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Take(&relation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &relation.State, nil
}

func (s *RelationService) followersOf(ctx context.Context, userID uint) ([]UserSummary, error) {
	return s.relatedUsers(ctx,
		"relations.followed_id = ? AND relations.state = ?",
		[]interface{}{userID, models.RelationAccepted},
		"users.id = relations.follower_id",
	)
}

func (s *RelationService) followingOf(ctx context.Context, userID uint) ([]UserSummary, error) {
	return s.relatedUsers(ctx,
		"relations.follower_id = ? AND relations.state = ?",
		[]interface{}{userID, models.RelationAccepted},
		"users.id = relations.followed_id",
	)
}

func (s *RelationService) relatedUsers(ctx context.Context, whereClause string, whereArgs []interface{}, joinClause string) ([]UserSummary, error) {
	var rows []UserSummary
	err := s.DB.WithContext(ctx).Table("relations").
		Select("users.username, users.avatar_url").
		Joins("JOIN users ON "+joinClause).
		Where(whereClause, whereArgs...).
		Order("relations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []UserSummary{}
	}
	return rows, nil
}

func (s *RelationService) cachedList(ctx context.Context, key string, load func() ([]UserSummary, error)) ([]UserSummary, error) {
	var cached []UserSummary
	if cache.GetView(ctx, key, &cached) {
		return cached, nil
	}
	list, err := load()
	if err != nil {
		return nil, err
	}
	cache.SetView(ctx, key, list)
	return list, nil
}

// authorizeListAccess applies the profile-detail visibility rule to the list
// owner: self always, public always, otherwise only accepted followers.
func (s *RelationService) authorizeListAccess(ctx context.Context, viewerID uint, owner *models.User) error {
	state, err := s.RelationState(ctx, viewerID, owner.ID)
	if err != nil {
		return err
	}
	if !CanViewDetails(viewerID, owner, state) {
		return forbiddenf("you do not have permission to view this information")
	}
	return nil
}

func (s *RelationService) userByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RelationService) userByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", handle).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user not found: %s", handle)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
