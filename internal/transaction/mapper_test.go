package transaction

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func stripeEvent(t *testing.T, eventType string, object map[string]any) *stripe.Event {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)

	return &stripe.Event{
		ID:      "evt_1",
		Type:    stripe.EventType(eventType),
		Created: 1700000000,
		Data:    &stripe.EventData{Raw: raw},
	}
}

func paymentIntent(captureMethod string) map[string]any {
	return map[string]any{
		"id":              "pi_1",
		"object":          "payment_intent",
		"amount":          2000,
		"amount_received": 2000,
		"currency":        "usd",
		"capture_method":  captureMethod,
		"metadata":        map[string]string{"transactionId": "420", "channelId": "1"},
	}
}

func TestMapEvent_PaymentIntentSucceeded(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, "payment_intent.succeeded", paymentIntent("automatic")))
	require.NoError(t, err)

	report, err := MapEvent(ev)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "420", report.TransactionID)
	assert.True(t, decimal.RequireFromString("20.00").Equal(report.Amount))
	assert.Equal(t, string(ChargeSuccess), report.Type)
	assert.Equal(t, []string{"REFUND"}, report.AvailableActions)
	assert.Equal(t, "pi_1", report.PSPReference)
	assert.Equal(t, "https://dashboard.stripe.com/payments/pi_1", report.ExternalURL)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), report.Time)
}

func TestMapEvent_PaymentIntentTypes(t *testing.T) {
	tests := []struct {
		eventType     string
		captureMethod string
		expected      EventType
	}{
		{eventType: "payment_intent.processing", captureMethod: "automatic", expected: ChargeRequest},
		{eventType: "payment_intent.processing", captureMethod: "manual", expected: AuthorizationRequest},
		{eventType: "payment_intent.created", captureMethod: "manual", expected: AuthorizationRequest},
		{eventType: "payment_intent.payment_failed", captureMethod: "automatic", expected: ChargeFailure},
		{eventType: "payment_intent.canceled", captureMethod: "manual", expected: AuthorizationFailure},
		{eventType: "payment_intent.partially_funded", captureMethod: "automatic", expected: Info},
		{eventType: "payment_intent.amount_capturable_updated", captureMethod: "manual", expected: AuthorizationSuccess},
		{eventType: "payment_intent.amount_capturable_updated", captureMethod: "automatic", expected: AuthorizationAdjustment},
		{eventType: "payment_intent.requires_action", captureMethod: "automatic", expected: ChargeActionRequired},
		{eventType: "payment_intent.requires_action", captureMethod: "manual", expected: AuthorizationActionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.eventType+"_"+tt.captureMethod, func(t *testing.T) {
			ev, err := ParseEvent(stripeEvent(t, tt.eventType, paymentIntent(tt.captureMethod)))
			require.NoError(t, err)

			report, err := MapEvent(ev)
			require.NoError(t, err)
			require.NotNil(t, report)

			assert.Equal(t, string(tt.expected), report.Type)
			assert.Equal(t, ActionNames(AvailableActions(tt.expected)), report.AvailableActions)
		})
	}
}

func TestMapEvent_MessageFromCancellationReason(t *testing.T) {
	object := paymentIntent("automatic")
	object["cancellation_reason"] = "abandoned"
	object["description"] = "order #1"

	ev, err := ParseEvent(stripeEvent(t, "payment_intent.canceled", object))
	require.NoError(t, err)
	report, err := MapEvent(ev)
	require.NoError(t, err)

	assert.Equal(t, "abandoned", report.Message)
}

func TestMapEvent_ChargeRefunded(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, "charge.refunded", map[string]any{
		"id":              "ch_1",
		"object":          "charge",
		"amount":          2000,
		"amount_refunded": 1500,
		"currency":        "eur",
		"payment_intent":  "pi_9",
		"metadata":        map[string]string{"transactionId": "420", "channelId": "1"},
	}))
	require.NoError(t, err)

	report, err := MapEvent(ev)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, string(RefundSuccess), report.Type)
	assert.True(t, decimal.RequireFromString("15").Equal(report.Amount))
	assert.Equal(t, "pi_9", report.PSPReference)
	assert.Empty(t, report.AvailableActions)
}

func TestMapEvent_RefundUpdated(t *testing.T) {
	refund := func(status string) map[string]any {
		return map[string]any{
			"id":             "re_1",
			"object":         "refund",
			"amount":         500,
			"currency":       "jpy",
			"status":         status,
			"failure_reason": "lost_or_stolen_card",
			"metadata":       map[string]string{"transactionId": "420", "channelId": "1"},
		}
	}

	ev, err := ParseEvent(stripeEvent(t, "charge.refund.updated", refund("failed")))
	require.NoError(t, err)
	report, err := MapEvent(ev)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, string(RefundFailure), report.Type)
	assert.Equal(t, "lost_or_stolen_card", report.Message)
	assert.True(t, decimal.NewFromInt(500).Equal(report.Amount))
	assert.Equal(t, "evt_1", report.PSPReference)

	ev, err = ParseEvent(stripeEvent(t, "charge.refund.updated", refund("requires_action")))
	require.NoError(t, err)
	report, err = MapEvent(ev)
	require.NoError(t, err)

	assert.Equal(t, string(RefundRequest), report.Type)
	assert.Equal(t, "requires_action", report.Message)
}

func TestMapEvent_NoReport(t *testing.T) {
	withoutChannel := paymentIntent("automatic")
	withoutChannel["metadata"] = map[string]string{"transactionId": "420"}

	withoutTransaction := paymentIntent("automatic")
	withoutTransaction["metadata"] = map[string]string{"channelId": "1"}

	tests := []struct {
		name      string
		eventType string
		object    map[string]any
	}{
		{name: "MissingChannel", eventType: "payment_intent.succeeded", object: withoutChannel},
		{name: "MissingTransaction", eventType: "payment_intent.succeeded", object: withoutTransaction},
		{name: "Unhandled", eventType: "customer.created", object: map[string]any{"id": "cus_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent(stripeEvent(t, tt.eventType, tt.object))
			require.NoError(t, err)

			report, err := MapEvent(ev)
			assert.NoError(t, err)
			assert.Nil(t, report)
		})
	}
}

func TestParseEvent_Variants(t *testing.T) {
	ev, err := ParseEvent(stripeEvent(t, "customer.created", map[string]any{"id": "cus_1"}))
	require.NoError(t, err)
	assert.IsType(t, UnhandledEvent{}, ev)

	ev, err = ParseEvent(stripeEvent(t, "payment_intent.created", paymentIntent("manual")))
	require.NoError(t, err)
	assert.IsType(t, PaymentIntentEvent{}, ev)
	assert.Equal(t, "1", ChannelID(ev))
}

func TestMapEvent_TimeFallsBackToNow(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	raw := stripeEvent(t, "payment_intent.succeeded", paymentIntent("automatic"))
	raw.Created = 0

	ev, err := ParseEvent(raw)
	require.NoError(t, err)
	report, err := MapEvent(ev)
	require.NoError(t, err)

	assert.Equal(t, fixed, report.Time)
}
