package services

import (
	"testing"

	"github.com/adriannogy/TFG/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens an in-memory database with the full schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Relation{},
		&models.Restaurant{},
		&models.Review{},
		&models.Photo{},
		&models.Favorite{},
	)
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, private bool) *models.User {
	t.Helper()

	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		IsPrivate: private,
		Verified:  true,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(&user).Error)
	if !private {
		// Explicit write: the column default would swallow the zero value.
		require.NoError(t, db.Model(&user).Update("is_private", false).Error)
	}
	return &user
}

func createRestaurant(t *testing.T, db *gorm.DB, name, city string) *models.Restaurant {
	t.Helper()

	restaurant := models.Restaurant{
		Name:    name,
		City:    city,
		Cuisine: "spanish",
	}
	require.NoError(t, db.Create(&restaurant).Error)
	return &restaurant
}
