package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
)

// errorResponse is the JSON error shape for every endpoint.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// httpStatusFor maps typed errors to status codes. Anything not in
// the taxonomy is a 500.
func httpStatusFor(err error) int {
	var validation *errdefs.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	var authExchange *errdefs.AuthExchangeError
	if errors.As(err, &authExchange) {
		return http.StatusBadRequest
	}
	var denied *errdefs.PermissionDeniedError
	if errors.As(err, &denied) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError surfaces the underlying message to the caller so a failed
// operation shows the real cause, not a generic string.
func writeError(w http.ResponseWriter, summary string, err error) {
	writeJSON(w, httpStatusFor(err), errorResponse{
		Error:   summary,
		Message: err.Error(),
	})
}
