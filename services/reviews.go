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

// ReviewInput is a review as submitted by a client. The restaurant is named,
// not referenced by id: unknown ones are imported from OSM on the fly.
type ReviewInput struct {
	RestaurantName string   `json:"restaurant_name" binding:"required"`
	City           string   `json:"city" binding:"required"`
	Rating         int      `json:"rating" binding:"required"`
	Comment        string   `json:"comment"`
	PhotoURLs      []string `json:"photo_urls"`
}

// ReviewService creates and removes reviews. A user reviews a restaurant at
// most once; writing stales the cached feeds of everyone following the
// author.
type ReviewService struct {
	DB          *gorm.DB
	Restaurants *RestaurantService
}

func NewReviewService(db *gorm.DB, restaurants *RestaurantService) *ReviewService {
	return &ReviewService{DB: db, Restaurants: restaurants}
}

// Create stores a review for the named restaurant, resolving or importing it
// first. A second review for the same (user, restaurant) pair is a conflict.
func (s *ReviewService) Create(ctx context.Context, userID uint, input *ReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, badRequestf("rating must be between 1 and 5")
	}

	restaurant, err := s.Restaurants.ResolveByName(ctx, input.City, input.RestaurantName)
	if err != nil {
		return nil, err
	}

	review := models.Review{
		UserID:       userID,
		RestaurantID: restaurant.ID,
		Rating:       input.Rating,
		Comment:      input.Comment,
	}
	for _, url := range input.PhotoURLs {
		review.Photos = append(review.Photos, models.Photo{URL: url})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit("Photos").Clauses(clause.OnConflict{DoNothing: true}).Create(&review)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("you already reviewed %q", restaurant.Name)
		}
		for i := range review.Photos {
			review.Photos[i].ReviewUserID = review.UserID
			review.Photos[i].ReviewRestaurantID = review.RestaurantID
			if err := tx.Create(&review.Photos[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.staleFollowerFeeds(ctx, userID)
	log.Printf("user %d reviewed restaurant %q", userID, restaurant.Name)
	return &review, nil
}

// Delete removes the author's review of a restaurant, photos included.
func (s *ReviewService) Delete(ctx context.Context, userID, restaurantID uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
			Take(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("review not found")
			}
			return err
		}
		if err := tx.Where("review_user_id = ? AND review_restaurant_id = ?", userID, restaurantID).
			Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
			Delete(&models.Review{}).Error
	})
	if err != nil {
		return err
	}

	s.staleFollowerFeeds(ctx, userID)
	return nil
}

// ByRestaurant lists the reviews of one restaurant, newest first.
func (s *ReviewService) ByRestaurant(ctx context.Context, restaurantID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Preload("Photos").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// staleFollowerFeeds evicts the cached feeds of everyone who follows the
// author, since their feeds now show different content.
func (s *ReviewService) staleFollowerFeeds(ctx context.Context, authorID uint) {
	var followerIDs []uint
	err := s.DB.WithContext(ctx).Model(&models.Relation{}).
		Where("followed_id = ? AND state = ?", authorID, models.RelationAccepted).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		log.Printf("could not list followers of %d for feed eviction: %v", authorID, err)
		return
	}
	cache.InvalidateFeeds(ctx, followerIDs)
}
