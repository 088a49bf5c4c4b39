package transaction

import (
	"log/slog"
	"net/url"

	"saleor-stripe-app/internal/apperror"
)

const dashboardPaymentsURL = "https://dashboard.stripe.com/payments/"

// ResultForIntentStatus maps a payment intent status onto the event type
// reported for the given flow strategy.
func ResultForIntentStatus(strategy FlowStrategy, status string) (EventType, error) {
	if strategy != FlowAuthorization && strategy != FlowCharge {
		return "", apperror.Invariant("unsupported flow strategy %q", strategy)
	}

	var suffix string
	switch status {
	case "requires_payment_method", "processing":
		suffix = "_REQUEST"
	case "requires_action", "requires_capture", "requires_confirmation":
		suffix = "_ACTION_REQUIRED"
	case "canceled":
		suffix = "_FAILURE"
	case "succeeded":
		suffix = "_SUCCESS"
	default:
		return "", apperror.Invariant("unsupported payment intent status %q", status)
	}

	return EventType(string(strategy) + suffix), nil
}

type RefundResult struct {
	Type    EventType
	Message string
}

// RefundResultForStatus maps a refund status, ok is false for statuses Stripe may add later.
func RefundResultForStatus(status, failureReason string) (RefundResult, bool) {
	switch status {
	case "succeeded":
		return RefundResult{Type: RefundSuccess}, true
	case "canceled", "failed":
		return RefundResult{Type: RefundFailure, Message: failureReason}, true
	case "pending":
		return RefundResult{Type: RefundRequest}, true
	case "requires_action":
		return RefundResult{Type: RefundRequest, Message: "requires_action"}, true
	default:
		return RefundResult{}, false
	}
}

func AvailableActions(eventType EventType) []Action {
	switch eventType {
	case AuthorizationAdjustment:
		return []Action{ActionCancel}
	case AuthorizationSuccess:
		return []Action{ActionCharge, ActionCancel}
	case ChargeSuccess:
		return []Action{ActionRefund}
	case RefundReverse:
		return []Action{ActionRefund}

	// no actions possible
	case AuthorizationActionRequired,
		AuthorizationFailure,
		AuthorizationRequest,
		CancelFailure,
		CancelRequest,
		CancelSuccess,
		ChargeActionRequired,
		ChargeBack,
		ChargeFailure,
		ChargeRequest,
		Info,
		RefundFailure,
		RefundRequest,
		RefundSuccess:
		return []Action{}
	default:
		slog.Warn("Unknown transaction event type, no actions available", "type", eventType)
		return []Action{}
	}
}

func ExternalURL(paymentIntentID string) string {
	return dashboardPaymentsURL + url.PathEscape(paymentIntentID)
}
