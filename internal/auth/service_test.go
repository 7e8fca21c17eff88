package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/security"
)

func seededUser(t *testing.T, repo *stubUserRepository, password string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "member@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Member",
		LastName:     "One",
		Role:         enums.UserRoleUser,
	}
	repo.add(user)
	return user
}

func TestServiceLoginIssuesTokenAndTracksLastLogin(t *testing.T) {
	repo := newStubUserRepository()
	user := seededUser(t, repo, "member-secret")
	svc := newTestService(t, repo, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " MEMBER@example.com", Password: "member-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected token for %s, got %s", user.ID, claims.UserID)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*24*time.Hour {
		t.Fatalf("expected 30 day lifetime, got %s", got)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginUniformFailure(t *testing.T) {
	repo := newStubUserRepository()
	seededUser(t, repo, "member-secret")
	svc := newTestService(t, repo, nil)

	cases := []LoginRequest{
		{Email: "member@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "member-secret"},
		{Email: "", Password: "member-secret"},
		{Email: "member@example.com", Password: ""},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("expected uniform message, got %q", typed.Message())
		}
	}
}

func TestAuthenticateResolvesRoleFromStore(t *testing.T) {
	repo := newStubUserRepository()
	user := seededUser(t, repo, "member-secret")
	svc := newTestService(t, repo, nil)

	token, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), user.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	identity, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.IsApproved || identity.Role != enums.UserRoleUser {
		t.Fatalf("expected pending user identity, got %+v", identity)
	}

	// approval changes take effect without a new token
	user.IsApproved = true
	identity, err = svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !identity.IsApproved {
		t.Fatalf("expected approval to be read from the store")
	}
}

func TestAuthenticateRejectsBadTokensUniformly(t *testing.T) {
	repo := newStubUserRepository()
	user := seededUser(t, repo, "member-secret")
	svc := newTestService(t, repo, nil)

	expired, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().Add(-31*24*time.Hour), user.ID)
	if err != nil {
		t.Fatalf("mint expired: %v", err)
	}
	otherCfg := testJWTConfig
	otherCfg.Secret = "other"
	forged, err := pkgAuth.MintAccessToken(otherCfg, time.Now(), user.ID)
	if err != nil {
		t.Fatalf("mint forged: %v", err)
	}
	orphan, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("mint orphan: %v", err)
	}

	for name, token := range map[string]string{
		"missing":   "",
		"malformed": "not-a-jwt",
		"expired":   expired,
		"signature": forged,
		"unknown":   orphan,
	} {
		_, err := svc.Authenticate(context.Background(), token)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
		if typed.Message() != invalidTokenMessage {
			t.Fatalf("%s: expected uniform message, got %q", name, typed.Message())
		}
	}
}

func TestChangePassword(t *testing.T) {
	repo := newStubUserRepository()
	user := seededUser(t, repo, "old-secret")
	svc := newTestService(t, repo, nil)
	identity := &pkgAuth.Identity{UserID: user.ID, Role: user.Role}

	err := svc.ChangePassword(context.Background(), identity, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-secret",
		ConfirmPassword: "new-secret",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for wrong current password, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), identity, ChangePasswordRequest{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
		ConfirmPassword: "different",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for mismatch, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), identity, ChangePasswordRequest{
		CurrentPassword: "old-secret",
		NewPassword:     "short",
		ConfirmPassword: "short",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), identity, ChangePasswordRequest{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
		ConfirmPassword: "new-secret",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	ok, err := security.VerifyPassword("new-secret", repo.newHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to match new password")
	}
}

func TestMe(t *testing.T) {
	repo := newStubUserRepository()
	user := seededUser(t, repo, "member-secret")
	user.PlacesCount = 4
	svc := newTestService(t, repo, nil)

	me, err := svc.Me(context.Background(), &pkgAuth.Identity{UserID: user.ID})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.PlacesCount != 4 || me.Email != user.Email {
		t.Fatalf("unexpected profile %+v", me)
	}
	if _, err := svc.Me(context.Background(), nil); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized without identity, got %v", err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{
		Logger:    nil,
		UserRepo:  newStubUserRepository(),
		JWTConfig: config.JWTConfig{},
	})
	if err == nil {
		t.Fatalf("expected error without logger")
	}
}
