package models

import (
	"time"

	"github.com/google/uuid"
)

type PlaceComment struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PlaceID     uuid.UUID `gorm:"column:place_id;type:uuid;not null"`
	AuthorID    uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Content     string    `gorm:"column:content;not null"`
	IsAnonymous bool      `gorm:"column:is_anonymous;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
