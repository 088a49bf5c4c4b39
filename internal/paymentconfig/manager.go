package paymentconfig

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/stripeapi"
	"saleor-stripe-app/internal/transaction"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const stripeWebhookRoute = "/api/webhooks/stripe"

var validate = validator.New(validator.WithRequiredStructEnabled())

// EntryForm is what the dashboard submits to create a configuration.
type EntryForm struct {
	ConfigurationName string `json:"configurationName" validate:"required,max=256"`
	SecretKey         string `json:"secretKey" validate:"required,startswith=sk_|startswith=rk_"`
	PublishableKey    string `json:"publishableKey" validate:"required,startswith=pk_"`
}

type Manager struct {
	store              *Store
	stripe             stripeapi.Factory
	appURL             string
	webhookDescription string
	logger             *slog.Logger
}

func NewManager(store *Store, stripe stripeapi.Factory, appURL, webhookDescription string, logger *slog.Logger) *Manager {
	return &Manager{
		store:              store,
		stripe:             stripe,
		appURL:             appURL,
		webhookDescription: webhookDescription,
		logger:             logger.With("saleorApiUrl", store.Tenant()),
	}
}

// WebhookURL is the Stripe webhook endpoint of the app for one Saleor instance.
func WebhookURL(appURL, saleorAPIURL string) string {
	return strings.TrimRight(appURL, "/") + stripeWebhookRoute + "?saleorApiUrl=" + url.QueryEscape(saleorAPIURL)
}

func (m *Manager) ListConfigEntries(ctx context.Context) ([]model.ConfigEntry, error) {
	config, err := m.store.GetConfigObfuscated(ctx)
	if err != nil {
		return nil, err
	}
	return config.Configurations, nil
}

func (m *Manager) GetConfigEntry(ctx context.Context, configurationID string) (*model.ConfigEntry, error) {
	entry, err := m.store.GetConfigEntry(ctx, configurationID)
	if err != nil {
		m.logger.WarnContext(ctx, "Entry was not found", "configurationId", configurationID)
		return nil, err
	}
	obfuscated := ObfuscateEntry(*entry)
	return &obfuscated, nil
}

func (m *Manager) AddConfigEntry(ctx context.Context, form EntryForm) (*model.ConfigEntry, error) {
	if err := validate.Struct(form); err != nil {
		return nil, errors.Wrap(apperror.ErrInvalidInput, err.Error())
	}

	client := m.stripe(form.SecretKey)
	if err := client.ValidateKeys(ctx, form.PublishableKey); err != nil {
		return nil, errors.Wrap(apperror.ErrInvalidInput, err.Error())
	}

	m.logger.DebugContext(ctx, "Creating new webhook for config entry")
	endpoint, err := client.CreateWebhookEndpoint(ctx, WebhookURL(m.appURL, m.store.Tenant()), m.webhookDescription, transaction.SubscribedEvents)
	if err != nil {
		return nil, err
	}
	if endpoint.Secret == "" {
		return nil, apperror.Invariant("missing webhook secret")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generating configuration id")
	}

	entry := model.ConfigEntry{
		ConfigurationID:   id.String(),
		ConfigurationName: form.ConfigurationName,
		SecretKey:         form.SecretKey,
		PublishableKey:    form.PublishableKey,
		WebhookID:         lo.ToPtr(endpoint.ID),
		WebhookSecret:     lo.ToPtr(endpoint.Secret),
	}

	m.logger.DebugContext(ctx, "Adding new config entry", "config", entry.Redacted())
	if err := m.store.SetConfigEntry(ctx, entry); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "Config entry added", "configurationId", entry.ConfigurationID)

	obfuscated := ObfuscateEntry(entry)
	return &obfuscated, nil
}

func (m *Manager) UpdateConfigEntry(ctx context.Context, configurationID string, update EntryUpdate) (*model.ConfigEntry, error) {
	updated, err := m.store.UpdateConfigEntry(ctx, configurationID, update)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "Config entry updated", "configurationId", configurationID)

	obfuscated := ObfuscateEntry(*updated)
	return &obfuscated, nil
}

// DeleteConfigEntry removes the Stripe webhook endpoint only when no other
// entry still points at it, then removes the entry.
func (m *Manager) DeleteConfigEntry(ctx context.Context, configurationID string) error {
	config, err := m.store.GetConfig(ctx)
	if err != nil {
		return err
	}

	existing, ok := lo.Find(config.Configurations, func(e model.ConfigEntry) bool {
		return e.ConfigurationID == configurationID
	})
	if !ok {
		m.logger.WarnContext(ctx, "Entry was not found", "configurationId", configurationID)
		return errors.WithStack(&apperror.EntryNotFoundError{ConfigurationID: configurationID})
	}

	if existing.WebhookID != nil && *existing.WebhookID != "" {
		shared := lo.ContainsBy(config.Configurations, func(e model.ConfigEntry) bool {
			return e.ConfigurationID != configurationID && e.WebhookID != nil && *e.WebhookID == *existing.WebhookID
		})
		if shared {
			m.logger.InfoContext(ctx, "Webhook is shared with another entry, keeping it", "webhookId", *existing.WebhookID)
		} else {
			m.logger.DebugContext(ctx, "Deleting webhook linked with config entry", "webhookId", *existing.WebhookID)
			if err := m.stripe(existing.SecretKey).DeleteWebhookEndpoint(ctx, *existing.WebhookID); err != nil {
				return err
			}
		}
	}

	if err := m.store.DeleteConfigEntry(ctx, configurationID); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "Config entry deleted", "configurationId", configurationID)
	return nil
}

// GetMapping lists every channel with its assigned configuration, nil when unassigned.
func (m *Manager) GetMapping(ctx context.Context, channels []model.Channel) (model.ChannelMapping, error) {
	config, err := m.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	mapping := make(model.ChannelMapping, len(channels))
	for _, channel := range channels {
		mapping[channel.ID] = nil
	}
	for channelID, configurationID := range config.ChannelToConfigurationID {
		mapping[channelID] = configurationID
	}
	return mapping, nil
}

// SetMapping assigns a configuration to a channel, nil configurationID unassigns it.
func (m *Manager) SetMapping(ctx context.Context, channelID string, configurationID *string) (model.ChannelMapping, error) {
	if channelID == "" {
		return nil, errors.Wrap(apperror.ErrInvalidInput, "channelId is required")
	}

	if configurationID != nil {
		if _, err := m.store.GetConfigEntry(ctx, *configurationID); err != nil {
			return nil, err
		}
	}

	if err := m.store.SetMapping(ctx, model.ChannelMapping{channelID: configurationID}); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "Channel mapping updated", "channelId", channelID, "configurationId", configurationID)

	config, err := m.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return config.ChannelToConfigurationID, nil
}
