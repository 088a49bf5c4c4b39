package paymentconfig

import (
	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/optional"

	"github.com/pkg/errors"
)

// EntryUpdate is a partial update of a config entry. Only webhookId and
// webhookSecret may be cleared with an explicit null.
type EntryUpdate struct {
	ConfigurationName optional.Value[string] `json:"configurationName"`
	SecretKey         optional.Value[string] `json:"secretKey"`
	PublishableKey    optional.Value[string] `json:"publishableKey"`
	WebhookID         optional.Value[string] `json:"webhookId"`
	WebhookSecret     optional.Value[string] `json:"webhookSecret"`
}

// MergeEntry overlays incoming onto existing. Empty fields of incoming and
// secrets echoed back in masked form leave the existing value in place.
func MergeEntry(existing, incoming model.ConfigEntry) model.ConfigEntry {
	merged := existing
	if incoming.ConfigurationID != "" {
		merged.ConfigurationID = incoming.ConfigurationID
	}
	if incoming.ConfigurationName != "" {
		merged.ConfigurationName = incoming.ConfigurationName
	}
	if incoming.SecretKey != "" && !IsObfuscated(incoming.SecretKey) {
		merged.SecretKey = incoming.SecretKey
	}
	if incoming.PublishableKey != "" {
		merged.PublishableKey = incoming.PublishableKey
	}
	if incoming.WebhookID != nil {
		merged.WebhookID = incoming.WebhookID
	}
	if incoming.WebhookSecret != nil && !IsObfuscated(*incoming.WebhookSecret) {
		merged.WebhookSecret = incoming.WebhookSecret
	}
	return merged
}

// ApplyUpdate resolves the three states of every field of update against entry.
func ApplyUpdate(entry model.ConfigEntry, update EntryUpdate) (model.ConfigEntry, error) {
	if update.ConfigurationName.IsNull() || update.SecretKey.IsNull() || update.PublishableKey.IsNull() {
		return entry, errors.Wrap(apperror.ErrInvalidInput, "configurationName, secretKey and publishableKey cannot be cleared")
	}

	if name, ok := update.ConfigurationName.Get(); ok {
		if name == "" {
			return entry, errors.Wrap(apperror.ErrInvalidInput, "configurationName cannot be empty")
		}
		entry.ConfigurationName = name
	}
	if secretKey, ok := update.SecretKey.Get(); ok && !IsObfuscated(secretKey) {
		entry.SecretKey = secretKey
	}
	if publishableKey, ok := update.PublishableKey.Get(); ok {
		entry.PublishableKey = publishableKey
	}

	switch {
	case update.WebhookID.IsNull():
		entry.WebhookID = nil
	case update.WebhookID.IsSet():
		webhookID, _ := update.WebhookID.Get()
		entry.WebhookID = &webhookID
	}

	switch {
	case update.WebhookSecret.IsNull():
		entry.WebhookSecret = nil
	case update.WebhookSecret.IsSet():
		webhookSecret, _ := update.WebhookSecret.Get()
		if !IsObfuscated(webhookSecret) {
			entry.WebhookSecret = &webhookSecret
		}
	}

	return entry, nil
}
