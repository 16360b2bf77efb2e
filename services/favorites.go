package services

import (
	"context"
	"errors"

	"github.com/adriannogy/TFG/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteService manages each user's saved restaurants. Both add and remove
// are idempotent; repeating them is never an error.
type FavoriteService struct {
	DB *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{DB: db}
}

// Add marks a restaurant as favorite. Adding it twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, userID, restaurantID uint) error {
	var restaurant models.Restaurant
	if err := s.DB.WithContext(ctx).Where("id = ?", restaurantID).Take(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("restaurant not found: %d", restaurantID)
		}
		return err
	}

	favorite := models.Favorite{UserID: userID, RestaurantID: restaurantID}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&favorite).Error
}

// Remove unmarks a favorite. Removing one that was never added is a no-op.
func (s *FavoriteService) Remove(ctx context.Context, userID, restaurantID uint) error {
	return s.DB.WithContext(ctx).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Delete(&models.Favorite{}).Error
}

// List pages through the user's favorite restaurants, most recently added
// first.
func (s *FavoriteService) List(ctx context.Context, userID uint, page, size int) (*RestaurantPage, error) {
	page, size = normalizePage(page, size)

	base := s.DB.WithContext(ctx).Table("favorites").
		Where("favorites.user_id = ?", userID)

	result := &RestaurantPage{Content: []models.Restaurant{}, Page: page, Size: size}
	if err := base.Count(&result.TotalElements).Error; err != nil {
		return nil, err
	}
	result.TotalPages = totalPages(result.TotalElements, size)

	err := s.DB.WithContext(ctx).Table("favorites").
		Select("restaurants.*").
		Joins("JOIN restaurants ON restaurants.id = favorites.restaurant_id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.added_at DESC").
		Limit(size).
		Offset(page * size).
		Scan(&result.Content).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}
