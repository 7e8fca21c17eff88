package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/placeshare-backend/api/middleware"
	"github.com/angelmondragon/placeshare-backend/api/responses"
	"github.com/angelmondragon/placeshare-backend/api/validators"
	"github.com/angelmondragon/placeshare-backend/internal/approval"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
)

// AdminListUsers serves the moderation listing. A non-empty fixedStatus
// overrides the status query parameter.
func AdminListUsers(svc approval.Service, fixedStatus string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "approval")
			return
		}

		q := r.URL.Query()
		status := fixedStatus
		if status == "" {
			status = q.Get("status")
		}
		result, err := svc.ListUsers(r.Context(), middleware.IdentityFromContext(r.Context()), approval.ListQuery{
			Status: status,
			Search: strings.TrimSpace(q.Get("search")),
			Page:   pagination.ParseParams(q.Get("page"), q.Get("limit")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminApproveUser(svc approval.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "approval")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Approve(r.Context(), middleware.IdentityFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}

// AdminRejectUser deletes a non-admin account together with its content.
func AdminRejectUser(svc approval.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "approval")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Reject(r.Context(), middleware.IdentityFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "user rejected")
	}
}

func AdminToggleAdmin(svc approval.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(w, r, logg, "approval")
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.ToggleAdmin(r.Context(), middleware.IdentityFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}
