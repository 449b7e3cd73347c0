package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"consent-expiry/internal/expiry"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeCheckError maps checker failures onto HTTP statuses.
func writeCheckError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, expiry.ErrMalformedRecord):
		writeError(w, http.StatusUnprocessableEntity, "malformed_record", err.Error())
	case errors.Is(err, expiry.ErrStoreAccess):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
