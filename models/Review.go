package models

import "time"

// Review is keyed by (user, restaurant): one review per user per restaurant.
type Review struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RestaurantID uint      `gorm:"primaryKey;autoIncrement:false" json:"restaurant_id"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"size:2000" json:"comment"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`

	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Restaurant Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
	Photos     []Photo    `gorm:"foreignKey:ReviewUserID,ReviewRestaurantID;references:UserID,RestaurantID" json:"photos"`
}

type Photo struct {
	ID                 uint   `gorm:"primary_key;autoIncrement" json:"id"`
	URL                string `gorm:"size:512;not null" json:"url"`
	ReviewUserID       uint   `gorm:"not null;index" json:"-"`
	ReviewRestaurantID uint   `gorm:"not null;index" json:"-"`
}
