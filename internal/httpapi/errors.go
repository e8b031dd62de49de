package httpapi

import (
	"encoding/json"
	"net/http"

	"assistd/internal/catalog"
	"assistd/internal/driver"
	"assistd/internal/orchestrator"
	"assistd/internal/prompt"
	"assistd/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case orchestrator.IsInvalidInput(err):
		return http.StatusBadRequest
	case prompt.IsMediaTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case catalog.IsModelNotFound(err):
		return http.StatusNotFound
	case catalog.IsResourceInsufficient(err):
		return http.StatusInsufficientStorage
	case catalog.IsNoViableModel(err):
		return http.StatusServiceUnavailable
	case driver.IsRemoteUnavailable(err):
		return http.StatusBadGateway
	case driver.IsLoadFailed(err), driver.IsGenerationFailed(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
