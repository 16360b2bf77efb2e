package models

import "time"

type Restaurant struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	City      string    `gorm:"size:128;index" json:"city"`
	Cuisine   string    `gorm:"size:128" json:"cuisine"`
	OsmID     *int64    `gorm:"uniqueIndex;column:osm_id" json:"osm_id,omitempty"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
