package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/placeshare-backend/pkg/enums"
)

// Identity is the caller resolved from a bearer token. Role and approval are
// loaded from the user record on every request, never from the token.
type Identity struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	IsApproved bool
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == enums.UserRoleAdmin
}

// Is reports whether the identity belongs to userID.
func (i *Identity) Is(userID uuid.UUID) bool {
	return i != nil && i.UserID != uuid.Nil && i.UserID == userID
}

// CanManage reports whether the identity owns the resource or is an admin.
func (i *Identity) CanManage(ownerID uuid.UUID) bool {
	return i.Is(ownerID) || i.IsAdmin()
}
