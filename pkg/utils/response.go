package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
)

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// RespondError writes a plain error body.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// WriteError maps a service error to its HTTP response. Authorization
// failures carry the account's current status so the client can route to a
// pending/rejected screen; everything else is just the message.
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)

	var e *apperr.Error
	if !errors.As(err, &e) {
		RespondError(w, status, "internal server error")
		return
	}

	body := map[string]string{"error": e.Message}
	if e.Kind == apperr.KindAuthorization && e.AccountStatus != "" {
		body["status"] = e.AccountStatus
	}
	RespondJSON(w, status, body)
}
