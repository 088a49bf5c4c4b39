package transaction

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
)

type Envelope struct {
	ID      string
	Type    string
	Created int64
}

// Event is one of PaymentIntentEvent, ChargeEvent, RefundEvent or UnhandledEvent.
type Event interface {
	envelope() Envelope
}

type PaymentIntentEvent struct {
	Envelope
	Intent *stripe.PaymentIntent
}

type ChargeEvent struct {
	Envelope
	Charge *stripe.Charge
}

type RefundEvent struct {
	Envelope
	Refund *stripe.Refund
}

type UnhandledEvent struct {
	Envelope
}

func (e Envelope) envelope() Envelope { return e }

var paymentIntentEvents = map[string]struct{}{
	"payment_intent.succeeded":                 {},
	"payment_intent.processing":                {},
	"payment_intent.payment_failed":            {},
	"payment_intent.created":                   {},
	"payment_intent.canceled":                  {},
	"payment_intent.partially_funded":          {},
	"payment_intent.amount_capturable_updated": {},
	"payment_intent.requires_action":           {},
}

// SubscribedEvents is the list of Stripe events the app registers its webhook endpoint for.
var SubscribedEvents = []string{
	"payment_intent.created",
	"payment_intent.canceled",
	"payment_intent.succeeded",
	"payment_intent.processing",
	"payment_intent.payment_failed",
	"payment_intent.requires_action",
	"payment_intent.partially_funded",
	"payment_intent.amount_capturable_updated",
	"charge.refunded",
	"charge.refund.updated",
}

// ParseEvent decodes the data.object of a verified Stripe event into its variant.
func ParseEvent(ev *stripe.Event) (Event, error) {
	env := Envelope{ID: ev.ID, Type: string(ev.Type), Created: ev.Created}
	if ev.Data == nil {
		return UnhandledEvent{Envelope: env}, nil
	}

	switch {
	case isPaymentIntentEvent(env.Type):
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &intent); err != nil {
			return nil, errors.Wrapf(err, "decoding payment intent of event %s", env.ID)
		}
		return PaymentIntentEvent{Envelope: env, Intent: &intent}, nil
	case env.Type == "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &charge); err != nil {
			return nil, errors.Wrapf(err, "decoding charge of event %s", env.ID)
		}
		return ChargeEvent{Envelope: env, Charge: &charge}, nil
	case env.Type == "charge.refund.updated":
		var refund stripe.Refund
		if err := json.Unmarshal(ev.Data.Raw, &refund); err != nil {
			return nil, errors.Wrapf(err, "decoding refund of event %s", env.ID)
		}
		return RefundEvent{Envelope: env, Refund: &refund}, nil
	default:
		return UnhandledEvent{Envelope: env}, nil
	}
}

func isPaymentIntentEvent(eventType string) bool {
	if !strings.HasPrefix(eventType, "payment_intent.") {
		return false
	}
	_, ok := paymentIntentEvents[eventType]
	return ok
}
