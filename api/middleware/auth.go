package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/placeshare-backend/api/responses"
	"github.com/angelmondragon/placeshare-backend/internal/approval"
	pkgAuth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
)

// Authenticator resolves a bearer token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*pkgAuth.Identity, error)
}

// Auth requires a valid bearer token and seeds the request context with the
// resolved identity.
func Auth(authn Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authn.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(attachIdentity(r.Context(), identity, logg)))
		})
	}
}

// OptionalAuth resolves the caller when a token is present. Requests without
// a usable token continue anonymously.
func OptionalAuth(authn Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(attachIdentity(r.Context(), identity, logg)))
		})
	}
}

// RequireApproval runs the approval gate. Must be mounted after Auth.
func RequireApproval(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := approval.EnsureCanCreateContent(IdentityFromContext(r.Context())); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects callers without the admin role. Must be mounted after Auth.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !identity.IsAdmin() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func attachIdentity(ctx context.Context, identity *pkgAuth.Identity, logg *logger.Logger) context.Context {
	ctx = WithIdentity(ctx, identity)
	if logg != nil {
		ctx = logg.WithUserID(ctx, identity.UserID.String())
		ctx = logg.WithActorRole(ctx, identity.Role.String())
	}
	return ctx
}
