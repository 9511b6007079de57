package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"SugarMill.twin/internal/models"
)

// RespondWithError sends a JSON error response using the APIError model.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	RespondWithJSON(writer, apiErr.StatusCode, apiErr)
}

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "err", err)
	}
}
