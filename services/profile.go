package services

import (
	"context"
	"errors"
	"time"

	"github.com/adriannogy/TFG/models"

	"gorm.io/gorm"
)

// ProfileReview is a review as shown inside a profile page.
type ProfileReview struct {
	RestaurantID   uint      `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	City           string    `json:"city"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
	Photos         []string  `json:"photos"`
}

// Profile is a user profile as seen by a viewer. When the visibility policy
// hides the details, the counts and review list are null, never zero: a
// hidden profile and an empty one must not look alike.
type Profile struct {
	Username      string           `json:"username"`
	AvatarURL     string           `json:"avatar_url"`
	IsPrivate     bool             `json:"is_private"`
	RelationState *string          `json:"relation_state"`
	Followers     *int64           `json:"followers"`
	Following     *int64           `json:"following"`
	Pending       *int64           `json:"pending_requests,omitempty"`
	Reviews       *[]ProfileReview `json:"reviews"`
}

// ProfileService assembles profile views, applying the visibility policy for
// third-party lookups.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// OwnProfile returns the authenticated user's profile with the pending
// request count only the owner sees.
func (s *ProfileService) OwnProfile(ctx context.Context, userID uint) (*Profile, error) {
	owner, err := s.ownerByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Username:  owner.Username,
		AvatarURL: owner.AvatarURL,
		IsPrivate: owner.IsPrivate,
	}
	if err := s.fillDetails(ctx, owner, profile); err != nil {
		return nil, err
	}

	pending, err := s.countRelations(ctx, "followed_id = ? AND state = ?", owner.ID, models.RelationPending)
	if err != nil {
		return nil, err
	}
	profile.Pending = &pending
	return profile, nil
}

// ViewProfile returns another user's profile as seen by viewerID. Hidden
// profiles still reveal the handle, avatar and the viewer's relation state.
func (s *ProfileService) ViewProfile(ctx context.Context, viewerID uint, handle string) (*Profile, error) {
	var owner models.User
	err := s.DB.WithContext(ctx).Where("username = ?", handle).Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user not found: %s", handle)
	}
	if err != nil {
		return nil, err
	}

	var relationState *string
	var relation models.Relation
	err = s.DB.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", viewerID, owner.ID).
		Take(&relation).Error
	if err == nil {
		relationState = &relation.State
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := &Profile{
		Username:      owner.Username,
		AvatarURL:     owner.AvatarURL,
		IsPrivate:     owner.IsPrivate,
		RelationState: relationState,
	}

	if !CanViewDetails(viewerID, &owner, relationState) {
		return profile, nil
	}
	if err := s.fillDetails(ctx, &owner, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) fillDetails(ctx context.Context, owner *models.User, profile *Profile) error {
	followers, err := s.countRelations(ctx, "followed_id = ? AND state = ?", owner.ID, models.RelationAccepted)
	if err != nil {
		return err
	}
	following, err := s.countRelations(ctx, "follower_id = ? AND state = ?", owner.ID, models.RelationAccepted)
	if err != nil {
		return err
	}

	var reviews []models.Review
	err = s.DB.WithContext(ctx).
		Where("user_id = ?", owner.ID).
		Order("created_at DESC").
		Preload("Photos").
		Find(&reviews).Error
	if err != nil {
		return err
	}

	restaurantIDs := make([]uint, 0, len(reviews))
	for _, review := range reviews {
		restaurantIDs = append(restaurantIDs, review.RestaurantID)
	}
	restaurantsByID := map[uint]models.Restaurant{}
	if len(restaurantIDs) > 0 {
		var restaurants []models.Restaurant
		if err := s.DB.WithContext(ctx).Where("id IN ?", restaurantIDs).Find(&restaurants).Error; err != nil {
			return err
		}
		for _, restaurant := range restaurants {
			restaurantsByID[restaurant.ID] = restaurant
		}
	}

	items := make([]ProfileReview, 0, len(reviews))
	for _, review := range reviews {
		restaurant := restaurantsByID[review.RestaurantID]
		photos := make([]string, 0, len(review.Photos))
		for _, photo := range review.Photos {
			photos = append(photos, photo.URL)
		}
		items = append(items, ProfileReview{
			RestaurantID:   restaurant.ID,
			RestaurantName: restaurant.Name,
			City:           restaurant.City,
			Rating:         review.Rating,
			Comment:        review.Comment,
			CreatedAt:      review.CreatedAt,
			Photos:         photos,
		})
	}

	profile.Followers = &followers
	profile.Following = &following
	profile.Reviews = &items
	return nil
}

func (s *ProfileService) countRelations(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Relation{}).Where(query, args...).Count(&count).Error
	return count, err
}

func (s *ProfileService) ownerByID(ctx context.Context, id uint) (*models.User, error) {
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
