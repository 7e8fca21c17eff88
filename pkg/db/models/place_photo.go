package models

import (
	"time"

	"github.com/google/uuid"
)

// PlacePhoto stores an ordered photo reference hosted at the media provider.
type PlacePhoto struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PlaceID   uuid.UUID `gorm:"column:place_id;type:uuid;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	URL       string    `gorm:"column:url;not null"`
	PublicID  string    `gorm:"column:public_id;not null"`
	Caption   *string   `gorm:"column:caption"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
