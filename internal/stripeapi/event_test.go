package stripeapi

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const payload = `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","created":1700000000,"data":{"object":{"id":"pi_1","object":"payment_intent"}}}`

func TestConstructEvent(t *testing.T) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	event, err := ConstructEvent(signed.Payload, signed.Header, "whsec_test")

	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "payment_intent.succeeded", string(event.Type))
}

func TestConstructEvent_SignatureErrors(t *testing.T) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})
	old := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    "whsec_test",
		Timestamp: time.Now().Add(-time.Hour),
	})

	tests := []struct {
		name   string
		header string
		secret string
	}{
		{name: "WrongSecret", header: signed.Header, secret: "whsec_other"},
		{name: "MalformedHeader", header: "garbage", secret: "whsec_test"},
		{name: "TooOld", header: old.Header, secret: "whsec_test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConstructEvent([]byte(payload), tt.header, tt.secret)

			require.Error(t, err)
			assert.True(t, IsSignatureError(err))
		})
	}
}

func TestIsSignatureError(t *testing.T) {
	assert.False(t, IsSignatureError(errors.New("boom")))
	assert.True(t, IsSignatureError(errors.Wrap(webhook.ErrNoValidSignature, "stripe")))
}

func TestEnvironment(t *testing.T) {
	assert.Equal(t, "live", Environment("sk_live_123"))
	assert.Equal(t, "live", Environment("pk_live_123"))
	assert.Equal(t, "test", Environment("sk_test_123"))
	assert.Equal(t, "test", Environment("pk_test_123"))
}
