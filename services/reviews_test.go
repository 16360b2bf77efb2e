package services

import (
	"context"
	"testing"

	"github.com/adriannogy/TFG/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview_ResolvesLocalRestaurant(t *testing.T) {
	db := setupDB(t)
	restaurants := NewRestaurantService(db, nil)
	svc := NewReviewService(db, restaurants)

	ana := createUser(t, db, "ana", true)
	place := createRestaurant(t, db, "Casa Paco", "Madrid")

	review, err := svc.Create(context.Background(), ana.ID, &ReviewInput{
		RestaurantName: "Casa Paco",
		City:           "Madrid",
		Rating:         4,
		Comment:        "muy rico",
		PhotoURLs:      []string{"https://example.com/p1.jpg", "https://example.com/p2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, place.ID, review.RestaurantID)

	var photos int64
	db.Model(&models.Photo{}).Where("review_user_id = ?", ana.ID).Count(&photos)
	assert.Equal(t, int64(2), photos)
}

func TestCreateReview_ImportsFromOSMOnMiss(t *testing.T) {
	client, shutdown := fakeOSM(t,
		`[{"osm_id": 1, "osm_type": "relation"}]`,
		`{"elements": [{"id": 55, "lat": 40.0, "lon": -3.0, "tags": {"name": "Bar Nuevo"}}]}`,
	)
	defer shutdown()

	db := setupDB(t)
	restaurants := NewRestaurantService(db, client)
	svc := NewReviewService(db, restaurants)
	ana := createUser(t, db, "ana", true)

	review, err := svc.Create(context.Background(), ana.ID, &ReviewInput{
		RestaurantName: "Bar Nuevo",
		City:           "Madrid",
		Rating:         5,
	})
	require.NoError(t, err)

	var imported models.Restaurant
	require.NoError(t, db.Where("id = ?", review.RestaurantID).Take(&imported).Error)
	require.NotNil(t, imported.OsmID)
	assert.Equal(t, int64(55), *imported.OsmID)
}

func TestCreateReview_DuplicateConflicts(t *testing.T) {
	db := setupDB(t)
	svc := NewReviewService(db, NewRestaurantService(db, nil))

	ana := createUser(t, db, "ana", true)
	createRestaurant(t, db, "Casa Paco", "Madrid")

	input := &ReviewInput{RestaurantName: "Casa Paco", City: "Madrid", Rating: 4}
	_, err := svc.Create(context.Background(), ana.ID, input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ana.ID, input)
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestCreateReview_RatingBounds(t *testing.T) {
	db := setupDB(t)
	svc := NewReviewService(db, NewRestaurantService(db, nil))
	ana := createUser(t, db, "ana", true)
	createRestaurant(t, db, "Casa Paco", "Madrid")

	_, err := svc.Create(context.Background(), ana.ID, &ReviewInput{
		RestaurantName: "Casa Paco", City: "Madrid", Rating: 0,
	})
	assert.Equal(t, CodeBadRequest, CodeOf(err))

	_, err = svc.Create(context.Background(), ana.ID, &ReviewInput{
		RestaurantName: "Casa Paco", City: "Madrid", Rating: 6,
	})
	assert.Equal(t, CodeBadRequest, CodeOf(err))
}

func TestDeleteReview_RemovesPhotos(t *testing.T) {
	db := setupDB(t)
	svc := NewReviewService(db, NewRestaurantService(db, nil))

	ana := createUser(t, db, "ana", true)
	place := createRestaurant(t, db, "Casa Paco", "Madrid")

	_, err := svc.Create(context.Background(), ana.ID, &ReviewInput{
		RestaurantName: "Casa Paco",
		City:           "Madrid",
		Rating:         4,
		PhotoURLs:      []string{"https://example.com/p1.jpg"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), ana.ID, place.ID))

	var reviews, photos int64
	db.Model(&models.Review{}).Count(&reviews)
	db.Model(&models.Photo{}).Count(&photos)
	assert.Zero(t, reviews)
	assert.Zero(t, photos)

	// Deleting again: the review is gone
	err = svc.Delete(context.Background(), ana.ID, place.ID)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestByRestaurant_ListsReviews(t *testing.T) {
	db := setupDB(t)
	svc := NewReviewService(db, NewRestaurantService(db, nil))

	ana := createUser(t, db, "ana", true)
	luis := createUser(t, db, "luis", true)
	createRestaurant(t, db, "Casa Paco", "Madrid")

	input := &ReviewInput{RestaurantName: "Casa Paco", City: "Madrid", Rating: 4}
	first, err := svc.Create(context.Background(), ana.ID, input)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), luis.ID, input)
	require.NoError(t, err)

	reviews, err := svc.ByRestaurant(context.Background(), first.RestaurantID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
