package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// domainStatus lists the sentinel errors that carry a user-facing message.
// The first match wins, so wrapped context added by services is kept in
// the message.
var domainStatus = []struct {
	err  error
	code int
}{
	{domain.ErrProjectNotFound, http.StatusNotFound},
	{domain.ErrProposalNotFound, http.StatusNotFound},
	{domain.ErrMessageNotFound, http.StatusNotFound},
	{domain.ErrAttachmentNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{domain.ErrProjectNotOpen, http.StatusUnprocessableEntity},
	{domain.ErrValidation, http.StatusUnprocessableEntity},
	{domain.ErrInvalidBid, http.StatusUnprocessableEntity},
	{domain.ErrInvalidRating, http.StatusUnprocessableEntity},
	{domain.ErrCommentTooLong, http.StatusUnprocessableEntity},
	{domain.ErrSelfReview, http.StatusUnprocessableEntity},
	{domain.ErrEmptyMessage, http.StatusUnprocessableEntity},
	{domain.ErrInvalidRole, http.StatusUnprocessableEntity},
	{domain.ErrWeakPassword, http.StatusUnprocessableEntity},
	{domain.ErrPasswordMismatch, http.StatusUnprocessableEntity},
	{domain.ErrEmptyFile, http.StatusBadRequest},
	{domain.ErrFileTypeNotAllowed, http.StatusUnsupportedMediaType},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrDuplicate, http.StatusConflict},
	{domain.ErrDuplicateProject, http.StatusConflict},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrTokenRevoked, http.StatusUnauthorized},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, d := range domainStatus {
		if errors.Is(err, d.err) {
			return d.code, err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
