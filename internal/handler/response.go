package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// SUCCESS ENVELOPE:
//   {"isSuccess": true, "message": "Registered successfully", "data": {...}}
//
// ERROR ENVELOPE:
//   {"isSuccess": false, "message": "Password is incorrect"}
//
// Only the human-readable message is sent on failure; clients get no
// machine-readable error code. Which HTTP status goes with it is decided by
// the ErrorPolicy.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/user-auth/internal/apperror"
)

// maxBodyBytes caps request bodies; credentials are tiny.
const maxBodyBytes = 1 << 20

// Envelope is the JSON shape of every object response.
type Envelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ErrorPolicy decides the HTTP status reported for a failed request.
type ErrorPolicy string

const (
	// PolicyClassified reports each classified error with its own status
	// (400 validation and duplicate email, 404 unknown email, 401 bad
	// password) and 500 for everything else.
	PolicyClassified ErrorPolicy = "classified"

	// PolicyLegacy reports every failure as 500, keeping the classified
	// message text. Older clients were built against this behaviour.
	PolicyLegacy ErrorPolicy = "legacy"
)

// ParseErrorPolicy validates a configured policy name.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(s); p {
	case PolicyClassified, PolicyLegacy:
		return p, nil
	default:
		return "", fmt.Errorf("handler: unknown error status policy %q", s)
	}
}

// Status maps err to an HTTP status code under p.
func (p ErrorPolicy) Status(err error) int {
	if p == PolicyLegacy {
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, apperror.ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrConflict):
		// Duplicate email has always been a 400 for this API.
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError sends the error envelope for err.
//
// Classified errors expose their message. Anything else, including an error
// that is not an *apperror.AppError at all, is reported with the generic
// internal message while the real cause is logged here.
func writeError(w http.ResponseWriter, r *http.Request, policy ErrorPolicy, logger *slog.Logger, err error) {
	status := policy.Status(err)

	message := apperror.InternalMessage
	if apperror.IsClassified(err) {
		var appErr *apperror.AppError
		errors.As(err, &appErr)
		message = appErr.Message
	} else {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, Envelope{IsSuccess: false, Message: message})
}

// decodeJSON reads a JSON request body into dst.
//
// An empty body is not an error: dst keeps its zero value and field
// validation reports what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.ValidationFailed("body", "Invalid request body")
	}
	return nil
}
