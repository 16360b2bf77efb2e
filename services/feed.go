package services

import (
	"context"
	"time"

	"github.com/adriannogy/TFG/cache"
	"github.com/adriannogy/TFG/models"

	"gorm.io/gorm"
)

const (
	defaultFeedSize = 10
	maxFeedSize     = 50
)

// FeedItem is one review in a user's feed, flattened with its author and
// restaurant so clients render it without extra lookups.
type FeedItem struct {
	Username       string    `json:"username"`
	AvatarURL      string    `json:"avatar_url"`
	RestaurantID   uint      `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	City           string    `json:"city"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
	Photos         []string  `json:"photos"`
}

// FeedPage is a page of feed items with the usual pagination envelope.
type FeedPage struct {
	Content       []FeedItem `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int64      `json:"total_elements"`
	TotalPages    int        `json:"total_pages"`
}

// FeedService aggregates the reviews written by a user's accepted followees,
// newest first. Pagination happens in the store, never in memory.
type FeedService struct {
	DB *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{DB: db}
}

// BuildFeed returns one page of the viewer's feed. A viewer following nobody
// gets an empty page without touching the review store at all.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID uint, page, size int) (*FeedPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultFeedSize
	}
	if size > maxFeedSize {
		size = maxFeedSize
	}

	var cached FeedPage
	if cache.GetView(ctx, cache.FeedKey(viewerID, page, size), &cached) {
		return &cached, nil
	}

	var followeeIDs []uint
	err := s.DB.WithContext(ctx).Model(&models.Relation{}).
		Where("follower_id = ? AND state = ?", viewerID, models.RelationAccepted).
		Pluck("followed_id", &followeeIDs).Error
	if err != nil {
		return nil, err
	}

	result := &FeedPage{Content: []FeedItem{}, Page: page, Size: size}
	if len(followeeIDs) == 0 {
		cache.SetView(ctx, cache.FeedKey(viewerID, page, size), result)
		return result, nil
	}

	if err := s.DB.WithContext(ctx).Model(&models.Review{}).
		Where("user_id IN ?", followeeIDs).
		Count(&result.TotalElements).Error; err != nil {
		return nil, err
	}
	result.TotalPages = int((result.TotalElements + int64(size) - 1) / int64(size))

	var reviews []models.Review
	err = s.DB.WithContext(ctx).
		Where("user_id IN ?", followeeIDs).
		Order("created_at DESC").
		Limit(size).
		Offset(page * size).
		Preload("Photos").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	items, err := s.hydrate(ctx, reviews)
	if err != nil {
		return nil, err
	}
	result.Content = items

	cache.SetView(ctx, cache.FeedKey(viewerID, page, size), result)
	return result, nil
}

// hydrate joins the page of reviews with their authors and restaurants.
func (s *FeedService) hydrate(ctx context.Context, reviews []models.Review) ([]FeedItem, error) {
	items := []FeedItem{}
	if len(reviews) == 0 {
		return items, nil
	}

	userIDs := make([]uint, 0, len(reviews))
	restaurantIDs := make([]uint, 0, len(reviews))
	for _, review := range reviews {
		userIDs = append(userIDs, review.UserID)
		restaurantIDs = append(restaurantIDs, review.RestaurantID)
	}

	var users []models.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	var restaurants []models.Restaurant
	if err := s.DB.WithContext(ctx).Where("id IN ?", restaurantIDs).Find(&restaurants).Error; err != nil {
		return nil, err
	}
	restaurantsByID := make(map[uint]models.Restaurant, len(restaurants))
	for _, restaurant := range restaurants {
		restaurantsByID[restaurant.ID] = restaurant
	}

	for _, review := range reviews {
		author := usersByID[review.UserID]
		restaurant := restaurantsByID[review.RestaurantID]
		photos := make([]string, 0, len(review.Photos))
		for _, photo := range review.Photos {
			photos = append(photos, photo.URL)
		}
		items = append(items, FeedItem{
			Username:       author.Username,
			AvatarURL:      author.AvatarURL,
			RestaurantID:   restaurant.ID,
			RestaurantName: restaurant.Name,
			City:           restaurant.City,
			Rating:         review.Rating,
			Comment:        review.Comment,
			CreatedAt:      review.CreatedAt,
			Photos:         photos,
		})
	}
	return items, nil
}
