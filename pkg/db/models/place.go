package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/types"
)

// Place is a shared location authored by a user. The search_vector column is
// generated by Postgres and intentionally not mapped.
type Place struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID    uuid.UUID            `gorm:"column:author_id;type:uuid;not null"`
	IsAnonymous bool                 `gorm:"column:is_anonymous;not null;default:false"`
	Name        string               `gorm:"column:name;not null"`
	Description string               `gorm:"column:description;not null"`
	Tags        pq.StringArray       `gorm:"column:tags;type:text[];not null;default:'{}'"`
	Category    enums.PlaceCategory  `gorm:"column:category;type:place_category;not null;default:'other'"`
	Rating      *int16               `gorm:"column:rating"`
	VisitDate   *time.Time           `gorm:"column:visit_date;type:date"`
	Address     string               `gorm:"column:address;not null"`
	Location    types.GeographyPoint `gorm:"column:location;type:geography(Point,4326);not null"`
	IsPublic    bool                 `gorm:"column:is_public;not null"`
	Status      enums.PlaceStatus    `gorm:"column:status;type:place_status;not null;default:'published'"`
	Views       int64                `gorm:"column:views;not null;default:0"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsVisible reports whether anonymous viewers and listings may see the place.
func (p Place) IsVisible() bool {
	return p.IsPublic && p.Status == enums.PlaceStatusPublished
}
