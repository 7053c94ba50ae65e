package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send a standardized JSON error response
func RespondWithError(w http.ResponseWriter, statusCode int, code string, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// DecodeJSON decodes the request body into dst and writes a 400 response when
// it is not valid JSON. Callers return when ok is false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) (ok bool) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return false
	}
	return true
}
