package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/placeshare-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string         `gorm:"column:password_hash;not null"`
	FirstName      string         `gorm:"column:first_name;not null"`
	LastName       string         `gorm:"column:last_name;not null"`
	Bio            string         `gorm:"column:bio;not null;default:''"`
	Location       string         `gorm:"column:location;not null;default:''"`
	AvatarURL      *string        `gorm:"column:avatar_url"`
	AvatarPublicID *string        `gorm:"column:avatar_public_id"`
	Role           enums.UserRole `gorm:"column:role;type:user_role;not null;default:'user'"`
	IsApproved     bool           `gorm:"column:is_approved;not null;default:false"`
	PlacesCount    int            `gorm:"column:places_count;not null;default:0"`
	LastLoginAt    *time.Time     `gorm:"column:last_login_at"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the first and last name for display.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
