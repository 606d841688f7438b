package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "proxysmith/pkg/errors"
)

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, e ErrorBody) {
	writeJSON(w, status, ErrorResponse{Error: e})
}

// writeErrorFromErr maps domain errors to status codes. Input problems are
// 400, content that yields nothing usable is 422.
func writeErrorFromErr(w http.ResponseWriter, err error) {
	var ve *pkgerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ErrorBody{Code: "VALIDATION_FAILED", Message: ve.Error()})
	case errors.Is(err, pkgerrors.ErrUnknownTarget):
		writeError(w, http.StatusBadRequest, ErrorBody{Code: "UNKNOWN_TARGET", Message: err.Error()})
	case errors.Is(err, pkgerrors.ErrNoEndpoints):
		writeError(w, http.StatusUnprocessableEntity, ErrorBody{Code: "NO_ENDPOINTS", Message: err.Error()})
	case errors.Is(err, pkgerrors.ErrNoValidLinks):
		writeError(w, http.StatusUnprocessableEntity, ErrorBody{Code: "NO_VALID_LINKS", Message: err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, ErrorBody{Code: "INTERNAL_ERROR", Message: err.Error()})
	}
}
