package approval

import (
	"testing"

	"github.com/google/uuid"

	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
)

func TestCanCreateContentTruthTable(t *testing.T) {
	for _, role := range []enums.UserRole{enums.UserRoleUser, enums.UserRoleAdmin} {
		for _, approved := range []bool{false, true} {
			want := role == enums.UserRoleAdmin || approved
			if got := CanCreateContent(role, approved); got != want {
				t.Fatalf("CanCreateContent(%s,%v) = %v want %v", role, approved, got, want)
			}
		}
	}
}

func TestEnsureCanCreateContent(t *testing.T) {
	pending := &pkgauth.Identity{UserID: uuid.New(), Role: enums.UserRoleUser}
	err := EnsureCanCreateContent(pending)
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if pkgerrors.As(err).Message() != PendingApprovalMessage {
		t.Fatalf("expected pending approval wording, got %q", pkgerrors.As(err).Message())
	}

	if err := EnsureCanCreateContent(&pkgauth.Identity{UserID: uuid.New(), Role: enums.UserRoleAdmin}); err != nil {
		t.Fatalf("admin should pass without approval flag: %v", err)
	}
	if err := EnsureCanCreateContent(nil); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous caller, got %v", err)
	}
}
