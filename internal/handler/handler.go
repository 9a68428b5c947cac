package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pharma-plus/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Warn().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeDomainError maps err onto exactly one HTTP status. Unclassified errors
// are logged and reported as a generic 500.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found", logger)
			return
		}
		logger.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	switch de.Kind {
	case model.KindValidation:
		writeError(w, http.StatusBadRequest, de.Message, logger)
	case model.KindConflict:
		writeError(w, http.StatusConflict, de.Message, logger)
	case model.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, de.Message, logger)
	case model.KindNotFound:
		if de.Code == model.ErrCodeProductNotFound {
			writeJSON(w, http.StatusNotFound, model.MessageResponse{Message: de.Message})
			return
		}
		writeError(w, http.StatusNotFound, de.Message, logger)
	default:
		logger.Error().Err(err).Str("code", de.Code).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Internal Server Error"})
	}
}

// decodeJSON decodes the request body into v. Domain errors raised by custom
// decoders pass through; anything else becomes a generic validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var de *model.DomainError
		if errors.As(err, &de) {
			return de
		}
		if errors.Is(err, io.EOF) {
			return model.NewValidationError(model.ErrCodeInvalidJSON, "request body is required")
		}
		return model.NewValidationError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}

// NotFound answers unmatched API routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "Not Found"})
}
