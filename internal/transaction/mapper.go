package transaction

import (
	"time"

	"saleor-stripe-app/internal/currency"
	"saleor-stripe-app/internal/model"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

var now = time.Now

type partialReport struct {
	amount       decimal.Decimal
	eventType    EventType
	message      string
	pspReference string
}

// MapEvent turns a verified Stripe event into the report sent to Saleor.
// A nil report without error means the event does not concern a Saleor transaction.
func MapEvent(ev Event) (*model.TransactionEventReport, error) {
	metadata := eventMetadata(ev)
	transactionID := metadata["transactionId"]
	if transactionID == "" || metadata["channelId"] == "" {
		return nil, nil
	}

	var (
		partial *partialReport
		err     error
	)
	switch e := ev.(type) {
	case PaymentIntentEvent:
		partial, err = mapPaymentIntent(e)
	case ChargeEvent:
		partial, err = mapChargeRefunded(e)
	case RefundEvent:
		partial, err = mapRefundUpdated(e)
	default:
		return nil, nil
	}
	if err != nil || partial == nil {
		return nil, err
	}

	env := ev.envelope()
	reportedAt := now().UTC()
	if env.Created > 0 {
		reportedAt = time.Unix(env.Created, 0).UTC()
	}

	return &model.TransactionEventReport{
		TransactionID:    transactionID,
		Amount:           partial.amount,
		PSPReference:     partial.pspReference,
		ExternalURL:      ExternalURL(partial.pspReference),
		Message:          partial.message,
		Type:             string(partial.eventType),
		AvailableActions: ActionNames(AvailableActions(partial.eventType)),
		Time:             reportedAt,
	}, nil
}

func ActionNames(actions []Action) []string {
	return lo.Map(actions, func(a Action, _ int) string { return string(a) })
}

// ChannelID returns the channel the event was created for, if any.
func ChannelID(ev Event) string {
	return eventMetadata(ev)["channelId"]
}

func eventMetadata(ev Event) map[string]string {
	switch e := ev.(type) {
	case PaymentIntentEvent:
		if e.Intent != nil {
			return e.Intent.Metadata
		}
	case ChargeEvent:
		if e.Charge != nil {
			return e.Charge.Metadata
		}
	case RefundEvent:
		if e.Refund != nil {
			return e.Refund.Metadata
		}
	}
	return nil
}

func mapPaymentIntent(e PaymentIntentEvent) (*partialReport, error) {
	intent := e.Intent
	manualCapture := intent.CaptureMethod == stripe.PaymentIntentCaptureMethodManual
	message := lo.CoalesceOrEmpty(string(intent.CancellationReason), intent.Description)

	minor := intent.Amount
	var eventType EventType
	switch e.Type {
	case "payment_intent.succeeded":
		minor = intent.AmountReceived
		eventType = ChargeSuccess
	case "payment_intent.processing", "payment_intent.created":
		eventType = lo.Ternary(manualCapture, AuthorizationRequest, ChargeRequest)
	case "payment_intent.payment_failed", "payment_intent.canceled":
		eventType = lo.Ternary(manualCapture, AuthorizationFailure, ChargeFailure)
	case "payment_intent.partially_funded":
		eventType = Info
	case "payment_intent.amount_capturable_updated":
		eventType = lo.Ternary(manualCapture, AuthorizationSuccess, AuthorizationAdjustment)
	case "payment_intent.requires_action":
		eventType = lo.Ternary(manualCapture, AuthorizationActionRequired, ChargeActionRequired)
	default:
		return nil, nil
	}

	amount, err := currency.ToMajorUnits(minor, string(intent.Currency))
	if err != nil {
		return nil, err
	}

	return &partialReport{
		amount:       amount,
		eventType:    eventType,
		message:      message,
		pspReference: intent.ID,
	}, nil
}

func mapChargeRefunded(e ChargeEvent) (*partialReport, error) {
	charge := e.Charge
	amount, err := currency.ToMajorUnits(charge.AmountRefunded, string(charge.Currency))
	if err != nil {
		return nil, err
	}

	return &partialReport{
		amount:       amount,
		eventType:    RefundSuccess,
		message:      charge.Description,
		pspReference: pspReference(charge.PaymentIntent, e.ID),
	}, nil
}

func mapRefundUpdated(e RefundEvent) (*partialReport, error) {
	refund := e.Refund
	result, ok := RefundResultForStatus(string(refund.Status), string(refund.FailureReason))
	if !ok {
		return nil, nil
	}

	amount, err := currency.ToMajorUnits(refund.Amount, string(refund.Currency))
	if err != nil {
		return nil, err
	}

	return &partialReport{
		amount:       amount,
		eventType:    result.Type,
		message:      lo.CoalesceOrEmpty(result.Message, refund.Description),
		pspReference: pspReference(refund.PaymentIntent, e.ID),
	}, nil
}

// pspReference prefers the payment intent id since it is stable across the intent lifecycle.
func pspReference(intent *stripe.PaymentIntent, eventID string) string {
	if intent != nil && intent.ID != "" {
		return intent.ID
	}
	return eventID
}
