package handler

import (
	"errors"
	"net/http"

	chatwave_errors "chatwave/pkg/errors"
)

// statusFor maps a sentinel to an HTTP status, with error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, chatwave_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, chatwave_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, chatwave_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, chatwave_errors.ErrConflict), errors.Is(err, chatwave_errors.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, chatwave_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_REQUEST"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
