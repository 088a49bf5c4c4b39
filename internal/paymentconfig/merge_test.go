package paymentconfig

import (
	"encoding/json"
	"testing"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingEntry() model.ConfigEntry {
	return model.ConfigEntry{
		ConfigurationID:   "cfg-1",
		ConfigurationName: "main",
		SecretKey:         "sk_test_1234567890",
		PublishableKey:    "pk_test_123",
		WebhookID:         lo.ToPtr("we_1"),
		WebhookSecret:     lo.ToPtr("whsec_1"),
	}
}

func TestMergeEntry(t *testing.T) {
	merged := MergeEntry(existingEntry(), model.ConfigEntry{
		ConfigurationID:   "cfg-1",
		ConfigurationName: "renamed",
		SecretKey:         "••••7890",
	})

	assert.Equal(t, "renamed", merged.ConfigurationName)
	assert.Equal(t, "sk_test_1234567890", merged.SecretKey)
	assert.Equal(t, "pk_test_123", merged.PublishableKey)
	assert.Equal(t, "we_1", *merged.WebhookID)
	assert.Equal(t, "whsec_1", *merged.WebhookSecret)
}

func TestMergeEntry_OverwritesPresentFields(t *testing.T) {
	merged := MergeEntry(existingEntry(), model.ConfigEntry{
		SecretKey:     "sk_test_new",
		WebhookID:     lo.ToPtr("we_2"),
		WebhookSecret: lo.ToPtr("whsec_2"),
	})

	assert.Equal(t, "cfg-1", merged.ConfigurationID)
	assert.Equal(t, "sk_test_new", merged.SecretKey)
	assert.Equal(t, "we_2", *merged.WebhookID)
	assert.Equal(t, "whsec_2", *merged.WebhookSecret)
}

func decodeUpdate(t *testing.T, raw string) EntryUpdate {
	t.Helper()

	var update EntryUpdate
	require.NoError(t, json.Unmarshal([]byte(raw), &update))
	return update
}

func TestApplyUpdate(t *testing.T) {
	tests := []struct {
		name   string
		update string
		check  func(t *testing.T, entry model.ConfigEntry)
	}{
		{
			name:   "AbsentKeepsEverything",
			update: `{}`,
			check: func(t *testing.T, entry model.ConfigEntry) {
				assert.Equal(t, existingEntry(), entry)
			},
		},
		{
			name:   "SetName",
			update: `{"configurationName":"renamed"}`,
			check: func(t *testing.T, entry model.ConfigEntry) {
				assert.Equal(t, "renamed", entry.ConfigurationName)
				assert.Equal(t, "sk_test_1234567890", entry.SecretKey)
			},
		},
		{
			name:   "MaskedSecretIsKept",
			update: `{"secretKey":"••••7890","webhookSecret":"••••"}`,
			check: func(t *testing.T, entry model.ConfigEntry) {
				assert.Equal(t, "sk_test_1234567890", entry.SecretKey)
				assert.Equal(t, "whsec_1", *entry.WebhookSecret)
			},
		},
		{
			name:   "NewSecretReplaces",
			update: `{"secretKey":"sk_test_new"}`,
			check: func(t *testing.T, entry model.ConfigEntry) {
				assert.Equal(t, "sk_test_new", entry.SecretKey)
			},
		},
		{
			name:   "NullClearsWebhook",
			update: `{"webhookId":null,"webhookSecret":null}`,
			check: func(t *testing.T, entry model.ConfigEntry) {
				assert.Nil(t, entry.WebhookID)
				assert.Nil(t, entry.WebhookSecret)
				assert.Equal(t, "pk_test_123", entry.PublishableKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ApplyUpdate(existingEntry(), decodeUpdate(t, tt.update))

			require.NoError(t, err)
			tt.check(t, entry)
		})
	}
}

func TestApplyUpdate_Invalid(t *testing.T) {
	for _, raw := range []string{`{"secretKey":null}`, `{"configurationName":""}`, `{"publishableKey":null}`} {
		t.Run(raw, func(t *testing.T) {
			_, err := ApplyUpdate(existingEntry(), decodeUpdate(t, raw))

			assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
		})
	}
}
