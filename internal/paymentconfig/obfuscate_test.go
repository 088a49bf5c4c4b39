package paymentconfig

import (
	"testing"

	"saleor-stripe-app/internal/model"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestObfuscate(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{value: "super-secret-key", expected: "••••-key"},
		{value: "sk_test_1234567890", expected: "••••7890"},
		{value: "ab", expected: "••••"},
		{value: "abcd", expected: "••••"},
		{value: "abcdef", expected: "••••ef"},
		{value: "", expected: "••••"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			obfuscated := Obfuscate(tt.value)

			assert.Equal(t, tt.expected, obfuscated)
			assert.True(t, IsObfuscated(obfuscated))
		})
	}
}

func TestIsObfuscated(t *testing.T) {
	assert.False(t, IsObfuscated("sk_test_123"))
	assert.True(t, IsObfuscated("••••_123"))
}

func TestObfuscateEntry_DropsWebhookSecret(t *testing.T) {
	entry := model.ConfigEntry{
		ConfigurationID:   "cfg-1",
		ConfigurationName: "main",
		SecretKey:         "sk_test_1234567890",
		PublishableKey:    "pk_test_123",
		WebhookID:         lo.ToPtr("we_1"),
		WebhookSecret:     lo.ToPtr("whsec_1234567890"),
	}

	obfuscated := ObfuscateEntry(entry)

	assert.Nil(t, obfuscated.WebhookSecret)
	assert.Equal(t, "••••7890", obfuscated.SecretKey)
	assert.Equal(t, "pk_test_123", obfuscated.PublishableKey)
	assert.Equal(t, "we_1", *obfuscated.WebhookID)
}
