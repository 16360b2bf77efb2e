package services

import (
	"context"
	"testing"
	"time"

	"github.com/adriannogy/TFG/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewProfile_HiddenProfileHasNullDetails(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileService(db)

	viewer := createUser(t, db, "viewer", true)
	owner := createUser(t, db, "owner", true)
	place := createRestaurant(t, db, "Casa Paco", "Madrid")
	seedReview(t, db, owner.ID, place.ID, 5, time.Now())

	profile, err := profiles.ViewProfile(context.Background(), viewer.ID, "owner")
	require.NoError(t, err)

	assert.Equal(t, "owner", profile.Username)
	assert.True(t, profile.IsPrivate)
	assert.Nil(t, profile.RelationState)
	// Hidden, not zero: a hidden profile must not look like an empty one
	assert.Nil(t, profile.Followers)
	assert.Nil(t, profile.Following)
	assert.Nil(t, profile.Reviews)
}

func TestViewProfile_PendingStateVisibleButDetailsHidden(t *testing.T) {
	db := setupDB(t)
	relations := NewRelationService(db)
	profiles := NewProfileService(db)

	viewer := createUser(t, db, "viewer", true)
	createUser(t, db, "owner", true)

	require.NoError(t, relations.RequestFollow(context.Background(), viewer.ID, "owner"))

	profile, err := profiles.ViewProfile(context.Background(), viewer.ID, "owner")
	require.NoError(t, err)

	require.NotNil(t, profile.RelationState)
	assert.Equal(t, models.RelationPending, *profile.RelationState)
	assert.Nil(t, profile.Followers)
	assert.Nil(t, profile.Reviews)
}

func TestViewProfile_AcceptedFollowerSeesDetails(t *testing.T) {
	db := setupDB(t)
	relations := NewRelationService(db)
	profiles := NewProfileService(db)

	viewer := createUser(t, db, "viewer", true)
	owner := createUser(t, db, "owner", true)
	place := createRestaurant(t, db, "Casa Paco", "Madrid")
	seedReview(t, db, owner.ID, place.ID, 5, time.Now())

	require.NoError(t, relations.RequestFollow(context.Background(), viewer.ID, "owner"))
	require.NoError(t, relations.AcceptRequest(context.Background(), owner.ID, "viewer"))

	profile, err := profiles.ViewProfile(context.Background(), viewer.ID, "owner")
	require.NoError(t, err)

	require.NotNil(t, profile.Followers)
	assert.Equal(t, int64(1), *profile.Followers)
	require.NotNil(t, profile.Following)
	assert.Equal(t, int64(0), *profile.Following)
	require.NotNil(t, profile.Reviews)
	require.Len(t, *profile.Reviews, 1)
	assert.Equal(t, "Casa Paco", (*profile.Reviews)[0].RestaurantName)
}

func TestViewProfile_PublicProfileOpenToAnyone(t *testing.T) {
	db := setupDB(t)
	profiles := NewProfileService(db)

	viewer := createUser(t, db, "viewer", true)
	createUser(t, db, "abierta", false)

	profile, err := profiles.ViewProfile(context.Background(), viewer.ID, "abierta")
	require.NoError(t, err)

	assert.False(t, profile.IsPrivate)
	assert.NotNil(t, profile.Followers)
	assert.NotNil(t, profile.Reviews)
}

func TestOwnProfile_IncludesPendingCount(t *testing.T) {
	db := setupDB(t)
	relations := NewRelationService(db)
	profiles := NewProfileService(db)

	owner := createUser(t, db, "owner", true)
	requester := createUser(t, db, "requester", true)

	require.NoError(t, relations.RequestFollow(context.Background(), requester.ID, "owner"))

	profile, err := profiles.OwnProfile(context.Background(), owner.ID)
	require.NoError(t, err)

	require.NotNil(t, profile.Pending)
	assert.Equal(t, int64(1), *profile.Pending)
	require.NotNil(t, profile.Followers)
	assert.Equal(t, int64(0), *profile.Followers)
}
