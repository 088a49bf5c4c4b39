package stripeapi

import (
	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
func ConstructEvent(payload []byte, header, secret string) (*stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// IsSignatureError reports whether err means the payload was not signed with the secret.
func IsSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
