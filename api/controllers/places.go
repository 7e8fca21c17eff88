package controllers

import (
	"net/http"

	"github.com/angelmondragon/placeshare-backend/api/middleware"
	"github.com/angelmondragon/placeshare-backend/api/responses"
	"github.com/angelmondragon/placeshare-backend/api/validators"
	"github.com/angelmondragon/placeshare-backend/internal/places"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
)

// PlacesList serves the public listing with filters, geo search and paging.
func PlacesList(svc places.Service, defaultRadiusKm float64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		viewer := middleware.IdentityFromContext(r.Context())
		query := places.ParseListQuery(r.URL.Query(), viewer, defaultRadiusKm)
		result, err := svc.List(r.Context(), viewer, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PlaceGet returns one place and counts the view.
func PlaceGet(svc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		place, err := svc.Get(r.Context(), middleware.IdentityFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"place": place})
	}
}

func PlaceCreate(svc places.Service, limits validators.UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		input, uploads, err := validators.ParsePlaceCreateForm(w, r, limits)
		defer closeUploads(r, logg, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.Create(r.Context(), middleware.IdentityFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"place": place})
	}
}

func PlaceUpdate(svc places.Service, limits validators.UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, uploads, err := validators.ParsePlaceUpdateForm(w, r, limits)
		defer closeUploads(r, logg, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.Update(r.Context(), middleware.IdentityFromContext(r.Context()), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"place": place})
	}
}

func PlaceDelete(svc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "place deleted")
	}
}

func PlaceToggleLike(svc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ToggleLike(r.Context(), middleware.IdentityFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type commentRequest struct {
	Content     string `json:"content"`
	IsAnonymous bool   `json:"isAnonymous"`
}

func PlaceAddComment(svc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body commentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comment, err := svc.AddComment(r.Context(), middleware.IdentityFromContext(r.Context()), id, places.CommentInput{
			Content:     body.Content,
			IsAnonymous: body.IsAnonymous,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"comment": comment})
	}
}

func PlaceDeleteComment(svc places.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "places")
			return
		}

		placeID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		commentID, err := validators.ParseUUIDParam(r, "commentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteComment(r.Context(), middleware.IdentityFromContext(r.Context()), placeID, commentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "comment deleted")
	}
}
