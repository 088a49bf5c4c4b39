package webhook

import (
	"encoding/json"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/transaction"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
)

// Recoverable reports whether err is a known failure that Saleor should see
// as a failed transaction event instead of a broken webhook.
func Recoverable(err error) bool {
	var (
		stripeErr *stripe.Error
		invariant *apperror.InvariantViolation
		notFound  *apperror.EntryNotFoundError
	)
	return errors.As(err, &stripeErr) ||
		errors.As(err, &invariant) ||
		errors.As(err, &notFound) ||
		errors.Is(err, apperror.ErrMissingConfiguration) ||
		errors.Is(err, apperror.ErrMissingAuthData) ||
		errors.Is(err, apperror.ErrInvalidInput)
}

func ActionFailure(result transaction.EventType, err error) *ActionResponse {
	return &ActionResponse{
		PSPReference: failurePSPReference(),
		Result:       string(result),
		Message:      failureMessage(err),
	}
}

func SessionFailure(ev SessionEvent, err error) *SessionResponse {
	result := transaction.ChargeFailure
	if transaction.FlowStrategy(ev.Action.ActionType) == transaction.FlowAuthorization {
		result = transaction.AuthorizationFailure
	}
	return &SessionResponse{
		PSPReference: failurePSPReference(),
		Result:       string(result),
		Amount:       json.Number(ev.Action.Amount.Decimal.String()),
		Message:      failureMessage(err),
	}
}

// Saleor requires a pspReference even for failures.
func failurePSPReference() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func failureMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
