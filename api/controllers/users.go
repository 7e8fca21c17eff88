package controllers

import (
	"net/http"

	"github.com/angelmondragon/placeshare-backend/api/middleware"
	"github.com/angelmondragon/placeshare-backend/api/responses"
	"github.com/angelmondragon/placeshare-backend/api/validators"
	"github.com/angelmondragon/placeshare-backend/internal/places"
	"github.com/angelmondragon/placeshare-backend/internal/users"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
)

// UserPublicProfile returns a member's public card and their most recent
// published places.
func UserPublicProfile(userSvc users.Service, placeSvc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userSvc == nil || placeSvc == nil {
			writeUnavailable(w, r, logg, "users")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := userSvc.GetPublic(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recent, err := placeSvc.ListRecentByAuthor(r.Context(), middleware.IdentityFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user, "places": recent})
	}
}

func UserUpdateProfile(svc users.Service, limits validators.UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "users")
			return
		}

		input, uploads, err := validators.ParseProfileForm(w, r, limits)
		defer closeUploads(r, logg, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.UpdateProfile(r.Context(), middleware.IdentityFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}

// UserPlaces lists the caller's own places in every status.
func UserPlaces(svc places.Service, defaultRadiusKm float64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		viewer := middleware.IdentityFromContext(r.Context())
		query := places.ParseListQuery(r.URL.Query(), viewer, defaultRadiusKm)
		result, err := svc.ListMine(r.Context(), viewer, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UserComments(svc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		q := r.URL.Query()
		params := pagination.ParseParams(q.Get("page"), q.Get("limit"))
		result, err := svc.ListCommentsByAuthor(r.Context(), middleware.IdentityFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
