package seed

import (
	"log"

	"github.com/adriannogy/TFG/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var users = []models.User{
	{
		Username:  "alicia",
		Email:     "alicia@example.com",
		Password:  "password",
		IsPrivate: true,
		Verified:  true,
	},
	{
		Username:  "bruno",
		Email:     "bruno@example.com",
		Password:  "password",
		IsPrivate: false,
		Verified:  true,
	},
}

var restaurants = []models.Restaurant{
	{
		Name:    "Casa Paco",
		Address: "Calle Mayor 12",
		City:    "Madrid",
		Cuisine: "spanish",
		Lat:     40.4168,
		Lon:     -3.7038,
	},
	{
		Name:    "La Tagliatella",
		Address: "Gran Via 44",
		City:    "Madrid",
		Cuisine: "italian",
		Lat:     40.4203,
		Lon:     -3.7058,
	},
}

// Load inserts a couple of demo users and restaurants for local development.
// Rows that already exist are left alone.
func Load(db *gorm.DB) {
	for i := range users {
		user := users[i]
		if err := user.HashPassword(); err != nil {
			log.Fatalf("cannot hash seed password: %v", err)
		}
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
		if err != nil {
			log.Fatalf("cannot seed users table: %v", err)
		}
	}

	for i := range restaurants {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&restaurants[i]).Error
		if err != nil {
			log.Fatalf("cannot seed restaurants table: %v", err)
		}
	}

	log.Println("seed data loaded")
}
