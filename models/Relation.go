package models

import "time"

// Relation states. Absence of a row means "not following and no pending request".
const (
	RelationPending  = "PENDING"
	RelationAccepted = "ACCEPTED"
)

// Relation is a directed follow edge from FollowerID to FollowedID. The
// composite primary key guarantees at most one edge per ordered pair; the
// reverse direction is an independent edge.
type Relation struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false" json:"followed_id"`
	State      string    `gorm:"size:16;not null" json:"state"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_relations_followed_created,priority:2" json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Relation) TableName() string {
	return "relations"
}
