package approval

import (
	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
)

// PendingApprovalMessage is returned whenever the gate denies a caller.
const PendingApprovalMessage = "your account is pending approval; an admin must approve it before you can share places"

// CanCreateContent is the single approval gate: admins always pass, everyone
// else needs the approval flag.
func CanCreateContent(role enums.UserRole, isApproved bool) bool {
	return role == enums.UserRoleAdmin || isApproved
}

// EnsureCanCreateContent applies the gate to a resolved identity.
func EnsureCanCreateContent(identity *pkgauth.Identity) error {
	if identity == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !CanCreateContent(identity.Role, identity.IsApproved) {
		return pkgerrors.New(pkgerrors.CodeForbidden, PendingApprovalMessage)
	}
	return nil
}
