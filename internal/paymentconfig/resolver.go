package paymentconfig

import (
	"context"
	"log/slog"

	"saleor-stripe-app/internal/model"

	"github.com/samber/lo"
)

// GetConfigurationForChannel returns the entry assigned to the channel, or nil.
func GetConfigurationForChannel(ctx context.Context, logger *slog.Logger, config *model.AppConfig, channelID string) *model.ConfigEntry {
	if channelID == "" {
		logger.WarnContext(ctx, "Missing channelId")
		return nil
	}
	if config == nil {
		return nil
	}

	configurationID := config.ChannelToConfigurationID[channelID]
	if configurationID == nil {
		logger.DebugContext(ctx, "Channel has no configuration assigned", "channelId", channelID)
		return nil
	}

	entry, ok := lo.Find(config.Configurations, func(e model.ConfigEntry) bool {
		return e.ConfigurationID == *configurationID
	})
	if !ok {
		logger.WarnContext(ctx, "Channel is mapped to a configuration that does not exist",
			"channelId", channelID, "configurationId", *configurationID)
		return nil
	}
	return &entry
}
