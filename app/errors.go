package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
}

// RenderError writes the standard JSON error response and logs the failure.
func RenderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody{Error: strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")}
	if err != nil {
		body.Description = err.Error()
	}

	logger := slog.Default()
	if r != nil {
		logger = LoggerFrom(r.Context())
	}
	logger.Error("request failed", "status", status, "error", body.Description)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
