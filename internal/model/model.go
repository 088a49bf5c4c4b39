package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConfigEntry struct {
	ConfigurationID   string  `json:"configurationId"`
	ConfigurationName string  `json:"configurationName"`
	SecretKey         string  `json:"secretKey"`
	PublishableKey    string  `json:"publishableKey"`
	WebhookID         *string `json:"webhookId,omitempty"`
	WebhookSecret     *string `json:"webhookSecret,omitempty"`
}

// FullyConfigured reports whether the entry can serve payments and verify webhooks.
func (e *ConfigEntry) FullyConfigured() bool {
	return e != nil && e.SecretKey != "" && e.PublishableKey != "" &&
		e.WebhookID != nil && *e.WebhookID != "" && e.WebhookSecret != nil && *e.WebhookSecret != ""
}

// Redacted is the log-safe form of the entry.
func (e ConfigEntry) Redacted() map[string]any {
	return map[string]any{
		"configurationId":   e.ConfigurationID,
		"configurationName": e.ConfigurationName,
		"publishableKey":    e.PublishableKey,
		"webhookId":         e.WebhookID,
	}
}

// ChannelMapping maps a Saleor channel id to a configuration id, nil meaning unassigned.
type ChannelMapping map[string]*string

type AppConfig struct {
	Configurations           []ConfigEntry  `json:"configurations"`
	ChannelToConfigurationID ChannelMapping `json:"channelToConfigurationId"`
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		Configurations:           []ConfigEntry{},
		ChannelToConfigurationID: ChannelMapping{},
	}
}

type TransactionEventReport struct {
	TransactionID    string          `json:"transactionId"`
	Amount           decimal.Decimal `json:"amount"`
	PSPReference     string          `json:"pspReference"`
	ExternalURL      string          `json:"externalUrl"`
	Message          string          `json:"message"`
	Type             string          `json:"type"`
	AvailableActions []string        `json:"availableActions"`
	Time             time.Time       `json:"time"`
}

// AuthData is what Saleor hands the app on registration.
type AuthData struct {
	SaleorAPIURL string `json:"saleorApiUrl"`
	Token        string `json:"token"`
	AppID        string `json:"appId"`
	JWKS         string `json:"jwks,omitempty"`
}

type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Currency string `json:"currencyCode"`
}
