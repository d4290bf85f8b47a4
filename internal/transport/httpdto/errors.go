package httpdto

import (
	"errors"
	"net/http"

	circles_errors "circles/pkg/errors"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{circles_errors.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{circles_errors.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
	{circles_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{circles_errors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{circles_errors.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER"},
	{circles_errors.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
	{circles_errors.ErrInvalidState, http.StatusUnprocessableEntity, "INVALID_STATE"},
	{circles_errors.ErrSelfReference, http.StatusBadRequest, "SELF_REFERENCE"},
	{circles_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
}

// StatusFor maps a service error to its HTTP status and envelope code.
func StatusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// ErrorMessage hides the text of unexpected errors from clients.
func ErrorMessage(err error) string {
	if status, _ := StatusFor(err); status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
