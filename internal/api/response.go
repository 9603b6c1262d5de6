package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"staybook/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess adds success:true to fields and writes them with 200.
func writeSuccess(w http.ResponseWriter, fields map[string]any) {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields["success"] = true
	writeJSON(w, http.StatusOK, fields)
}

func writeFailure(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"success": false, "message": message})
}

// writeError maps a service error to its status and the failure envelope.
// Internal errors carry the underlying cause in "error".
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	body := map[string]any{"success": false, "message": err.Error()}

	if statusCode == http.StatusInternalServerError {
		cause := err
		var ie domain.InternalError
		if errors.As(err, &ie) && ie.Err != nil {
			cause = ie.Err
		}
		body["error"] = cause.Error()
		s.logger.Error().Err(cause).
			Str("request_id", requestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	writeJSON(w, statusCode, body)
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized
	case domain.IsForbidden(err):
		return http.StatusForbidden
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsRateLimited(err):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
