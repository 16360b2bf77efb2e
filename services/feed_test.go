package services

import (
	"context"
	"testing"
	"time"

	"github.com/adriannogy/TFG/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedReview(t *testing.T, db *gorm.DB, userID, restaurantID uint, rating int, at time.Time) {
	t.Helper()
	review := models.Review{
		UserID:       userID,
		RestaurantID: restaurantID,
		Rating:       rating,
		Comment:      "nice place",
		CreatedAt:    at,
	}
	require.NoError(t, db.Create(&review).Error)
}

func TestBuildFeed_EmptyWithoutFollowees(t *testing.T) {
	db := setupDB(t)
	relations := NewRelationService(db)
	feed := NewFeedService(db)

	viewer := createUser(t, db, "viewer", true)
	author := createUser(t, db, "author", true)
	place := createRestaurant(t, db, "Casa Paco", "Madrid")
	seedReview(t, db, author.ID, place.ID, 5, time.Now())

	// Nobody followed yet: empty page, total 0
	page, err := feed.BuildFeed(context.Background(), viewer.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Zero(t, page.TotalElements)

	// A pending follow does not feed anything either
	require.NoError(t, relations.RequestFollow(context.Background(), viewer.ID, "author"))
	page, err = feed.BuildFeed(context.Background(), viewer.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}

func TestBuildFeed_OnlyAcceptedFolloweesNewestFirst(t *testing.T) {
	db := setupDB(t)
	relations := NewRelationService(db)
	feed := NewFeedService(db)

	viewer := createUser(t, db, "viewer", true)
	ana := createUser(t, db, "ana", true)
	luis := createUser(t, db, "luis", true)
	stranger := createUser(t, db, "stranger", true)

	paco := createRestaurant(t, db, "Casa Paco", "Madrid")
	lola := createRestaurant(t, db, "Bar Lola", "Madrid")

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seedReview(t, db, ana.ID, paco.ID, 5, base)
	seedReview(t, db, luis.ID, paco.ID, 3, base.Add(2*time.Hour))
	seedReview(t, db, luis.ID, lola.ID, 4, base.Add(time.Hour))
	seedReview(t, db, stranger.ID, lola.ID, 1, base.Add(3*time.Hour))

	require.NoError(t, relations.RequestFollow(context.Background(), viewer.ID, "ana"))
	require.NoError(t, relations.AcceptRequest(context.Background(), ana.ID, "viewer"))
	require.NoError(t, relations.RequestFollow(context.Background(), viewer.ID, "luis"))
	require.NoError(t, relations.AcceptRequest(context.Background(), luis.ID, "viewer"))

	page, err := feed.BuildFeed(context.Background(), viewer.ID, 0, 10)
	require.NoError(t, err)

	require.Len(t, page.Content, 3)
	assert.Equal(t, int64(3), page.TotalElements)
	// Newest first, the stranger's review absent
	assert.Equal(t, "luis", page.Content[0].Username)
	assert.Equal(t, "Casa Paco", page.Content[0].RestaurantName)
	assert.Equal(t, "luis", page.Content[1].Username)
	assert.Equal(t, "Bar Lola", page.Content[1].RestaurantName)
	assert.Equal(t, "ana", page.Content[2].Username)
}

func TestBuildFeed_Pagination(t *testing.T) {
	db := setupDB(t)
	relations := NewRelationService(db)
	feed := NewFeedService(db)

	viewer := createUser(t, db, "viewer", true)
	author := createUser(t, db, "author", true)
	require.NoError(t, relations.RequestFollow(context.Background(), viewer.ID, "author"))
	require.NoError(t, relations.AcceptRequest(context.Background(), author.ID, "viewer"))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		place := createRestaurant(t, db, "Place", "Madrid")
		seedReview(t, db, author.ID, place.ID, 4, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := feed.BuildFeed(context.Background(), viewer.ID, 0, 2)
	require.NoError(t, err)
	assert.Len(t, first.Content, 2)
	assert.Equal(t, int64(5), first.TotalElements)
	assert.Equal(t, 3, first.TotalPages)

	last, err := feed.BuildFeed(context.Background(), viewer.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, last.Content, 1)

	beyond, err := feed.BuildFeed(context.Background(), viewer.ID, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Content)
}
