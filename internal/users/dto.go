package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID            uuid.UUID           `json:"id"`
	Email         string              `json:"email"`
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Bio           string              `json:"bio"`
	Location      string              `json:"location"`
	Avatar        *string             `json:"avatar"`
	Role          enums.UserRole      `json:"role"`
	IsApproved    bool                `json:"isApproved"`
	ApprovalState enums.ApprovalState `json:"approvalState"`
	PlacesCount   int                 `json:"placesCount"`
	JoinedAt      time.Time           `json:"joinedAt"`
	LastLoginAt   *time.Time          `json:"lastLoginAt,omitempty"`
}

// PublicUserDTO is what anyone may see about a user.
type PublicUserDTO struct {
	ID          uuid.UUID      `json:"id"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Bio         string         `json:"bio"`
	Location    string         `json:"location"`
	Avatar      *string        `json:"avatar"`
	Role        enums.UserRole `json:"role"`
	PlacesCount int            `json:"placesCount"`
	JoinedAt    time.Time      `json:"joinedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.UserRole
	IsApproved   bool
}

// ProfileUpdate carries the optional profile fields a user may change.
// Nil pointers leave the column untouched.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Bio            *string
	Location       *string
	AvatarURL      *string
	AvatarPublicID *string
}

// IsEmpty reports whether no field is set.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Bio == nil &&
		p.Location == nil && p.AvatarURL == nil && p.AvatarPublicID == nil
}

func (p ProfileUpdate) columns() map[string]any {
	updates := map[string]any{}
	if p.FirstName != nil {
		updates["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		updates["last_name"] = *p.LastName
	}
	if p.Bio != nil {
		updates["bio"] = *p.Bio
	}
	if p.Location != nil {
		updates["location"] = *p.Location
	}
	if p.AvatarURL != nil {
		updates["avatar_url"] = *p.AvatarURL
	}
	if p.AvatarPublicID != nil {
		updates["avatar_public_id"] = *p.AvatarPublicID
	}
	return updates
}

// ListFilter drives the admin user listing. A nil State lists every user.
type ListFilter struct {
	State  *enums.ApprovalState
	Search string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Bio:           u.Bio,
		Location:      u.Location,
		Avatar:        u.AvatarURL,
		Role:          u.Role,
		IsApproved:    u.IsApproved,
		ApprovalState: enums.ApprovalStateOf(u.Role, u.IsApproved),
		PlacesCount:   u.PlacesCount,
		JoinedAt:      u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}

func PublicFromModel(u *models.User) *PublicUserDTO {
	if u == nil {
		return nil
	}
	return &PublicUserDTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Bio:         u.Bio,
		Location:    u.Location,
		Avatar:      u.AvatarURL,
		Role:        u.Role,
		PlacesCount: u.PlacesCount,
		JoinedAt:    u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         role,
		IsApproved:   c.IsApproved,
	}
}
