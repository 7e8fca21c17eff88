package controllers

import (
	"net/http"

	"github.com/angelmondragon/placeshare-backend/api/responses"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
)

func writeUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	err := pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
	responses.WriteError(r.Context(), logg, w, err)
}

func closeUploads(r *http.Request, logg *logger.Logger, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "failed to release upload")
	}
}
