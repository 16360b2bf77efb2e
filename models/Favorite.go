package models

import "time"

type Favorite struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RestaurantID uint      `gorm:"primaryKey;autoIncrement:false" json:"restaurant_id"`
	AddedAt      time.Time `gorm:"not null;autoCreateTime" json:"added_at"`

	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Restaurant Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
}
