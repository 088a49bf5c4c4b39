package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrMissingTenant        = errors.New("missing saleorApiUrl")
	ErrMissingSignature     = errors.New("missing stripe-signature header")
	ErrMissingAuthData      = errors.New("missing auth data for tenant")
	ErrMissingConfiguration = errors.New("channel has no fully configured stripe entry")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
)

type EntryNotFoundError struct {
	ConfigurationID string
}

func (e *EntryNotFoundError) Error() string {
	return "configuration entry not found: " + e.ConfigurationID
}

// UnexpectedReportError is returned when the transactionEventReport mutation
// fails at the transport level or answers with a non-empty errors list.
type UnexpectedReportError struct {
	Errors []string
}

func (e *UnexpectedReportError) Error() string {
	if len(e.Errors) == 0 {
		return "unexpected transaction event report response"
	}
	msg := "unexpected transaction event report response: " + e.Errors[0]
	for _, m := range e.Errors[1:] {
		msg += "; " + m
	}
	return msg
}

type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Message
}

func Invariant(format string, args ...any) error {
	return errors.WithStack(&InvariantViolation{Message: errors.Errorf(format, args...).Error()})
}

func StatusCode(err error) int {
	var notFound *EntryNotFoundError
	var report *UnexpectedReportError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingTenant), errors.Is(err, ErrMissingSignature), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingAuthData), errors.Is(err, ErrMissingConfiguration):
		return http.StatusPreconditionFailed
	case errors.As(err, &report):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
