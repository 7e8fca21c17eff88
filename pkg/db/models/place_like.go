package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaceLike is one user's like on a place. The composite key keeps at most one
// row per (place, user).
type PlaceLike struct {
	PlaceID   uuid.UUID `gorm:"column:place_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
