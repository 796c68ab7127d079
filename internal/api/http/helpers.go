package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/logger"
)

type errorResponse struct {
	Error     string               `json:"error"`
	Kind      string               `json:"kind"`
	Conflicts []domain.Reservation `json:"conflicts,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy to transport status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var pe *domain.PermissionError
	var ne *domain.NotFoundError
	var ce *domain.ConflictError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Kind: "validation"})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: pe.Error(), Kind: "permission"})
	case errors.As(err, &ne):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: ne.Error(), Kind: "not_found"})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ce.Error(), Kind: "conflict", Conflicts: ce.ConflictingReservations})
	default:
		logger.Error("Internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body", Kind: "validation"})
		return false
	}
	return true
}
