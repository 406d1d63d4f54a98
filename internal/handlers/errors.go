package handlers

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/auth"
	"github.com/diewo77/invoice-desk/httpx"
	"github.com/diewo77/invoice-desk/internal/apperr"
)

// writeError maps an error kind to its status code and public body.
// Anything that is not a known kind is logged and answered opaquely.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
	case errors.Is(err, apperr.ErrValidation):
		v, _ := apperr.Violations(err)
		httpx.JSONError(w, http.StatusBadRequest, "Invalid input", v)
	case errors.Is(err, apperr.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "Not found", nil)
	default:
		uid, _ := auth.UserIDFromContext(r.Context())
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Uint("user_id", uid),
			zap.Bool("data_access", errors.Is(err, apperr.ErrDataAccess)),
			zap.Error(err),
		)
		httpx.JSONError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// owner returns the authenticated user id, or 0 when there is none. The
// core operations reject 0 as unauthenticated.
func owner(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}
