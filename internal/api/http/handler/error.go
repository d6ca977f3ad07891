package handler

import (
	"errors"
	"net/http"

	"github.com/skycast/skycast-server/internal/model"
)

// handleError maps a service error to an HTTP status and response message.
// Classified auth errors keep their message; anything else surfaces
// generically so internals never leak to clients.
func handleError(err error) (int, string) {
	if authErr, ok := model.AsAuthError(err); ok {
		switch authErr.Kind {
		case model.KindValidation:
			return http.StatusBadRequest, authErr.Message
		case model.KindUnauthorized:
			return http.StatusUnauthorized, authErr.Message
		case model.KindConflict:
			return http.StatusConflict, authErr.Message
		case model.KindNotFound:
			return http.StatusNotFound, authErr.Message
		}
	}

	if errors.Is(err, model.ErrNotFound) {
		return http.StatusNotFound, "not found"
	}

	return http.StatusInternalServerError, "internal server error"
}
