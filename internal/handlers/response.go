package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sdko-org/media-vault/internal/auth"
	"github.com/sdko-org/media-vault/internal/media"
	"github.com/sdko-org/media-vault/internal/token"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeDomainError maps the service error taxonomy onto HTTP statuses.
// Everything unrecognized becomes an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrInvalidDescriptor):
		writeError(w, http.StatusBadRequest, "Invalid streaming URL")
	case errors.Is(err, token.ErrExpired):
		writeError(w, http.StatusGone, "Streaming URL has expired")
	case errors.Is(err, token.ErrForbidden):
		writeError(w, http.StatusForbidden, "Invalid streaming URL signature")
	case errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, "Media not found")
	case errors.Is(err, media.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, media.ErrAnalytics):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, auth.ErrAdminExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrAdminNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
