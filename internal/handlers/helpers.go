package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/common"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps service errors onto HTTP status codes. Upstream
// failures log their detail but the client only sees a generic message so
// provider internals never leak.
func WriteServiceError(w http.ResponseWriter, logger arbor.ILogger, err error) {
	var validationErr *common.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, validationErr.Detail)
		return
	}

	var notFoundErr *common.NotFoundError
	if errors.As(err, &notFoundErr) {
		WriteError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	var accessErr *common.AccessDeniedError
	if errors.As(err, &accessErr) {
		WriteError(w, http.StatusForbidden, accessErr.Detail)
		return
	}

	var upstreamAuthErr *common.UpstreamAuthError
	var upstreamErr *common.UpstreamError
	var protocolErr *common.UpstreamProtocolError
	if errors.As(err, &upstreamAuthErr) || errors.As(err, &upstreamErr) || errors.As(err, &protocolErr) {
		logger.Error().Err(err).Msg("Upstream analysis failure")
		WriteError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	logger.Error().Err(err).Msg("Unhandled service error")
	WriteError(w, http.StatusInternalServerError, "internal server error")
}

// DecodeJSONBody decodes a request body into dst, rejecting malformed JSON
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.NewValidationError("invalid JSON body: %v", err)
	}
	return nil
}
