package paymentconfig

import (
	"strings"

	"saleor-stripe-app/internal/model"

	"github.com/samber/lo"
)

// ObfuscationMarker prefixes every masked secret shown to the dashboard.
const ObfuscationMarker = "••••"

// Obfuscate keeps at most the last four characters and only when at least
// four more characters stay hidden.
func Obfuscate(value string) string {
	runes := []rune(value)
	visible := min(4, len(runes)-4)
	if visible <= 0 {
		return ObfuscationMarker
	}
	return ObfuscationMarker + string(runes[len(runes)-visible:])
}

// IsObfuscated reports whether a submitted value is a masked secret echoed back by the dashboard.
func IsObfuscated(value string) bool {
	return strings.Contains(value, ObfuscationMarker)
}

// ObfuscateEntry returns the dashboard view of the entry, never carrying the webhook secret.
func ObfuscateEntry(entry model.ConfigEntry) model.ConfigEntry {
	return model.ConfigEntry{
		ConfigurationID:   entry.ConfigurationID,
		ConfigurationName: entry.ConfigurationName,
		SecretKey:         Obfuscate(entry.SecretKey),
		PublishableKey:    entry.PublishableKey,
		WebhookID:         entry.WebhookID,
	}
}

func ObfuscateConfig(config *model.AppConfig) *model.AppConfig {
	mapping := make(model.ChannelMapping, len(config.ChannelToConfigurationID))
	for channelID, configurationID := range config.ChannelToConfigurationID {
		mapping[channelID] = configurationID
	}
	return &model.AppConfig{
		Configurations:           lo.Map(config.Configurations, func(e model.ConfigEntry, _ int) model.ConfigEntry { return ObfuscateEntry(e) }),
		ChannelToConfigurationID: mapping,
	}
}
