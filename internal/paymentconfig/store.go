package paymentconfig

import (
	"context"
	"encoding/json"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/model"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const MetadataKey = "stripe-app-config-v2"

// Store reads and writes the whole AppConfig of one Saleor instance.
// Every mutation is a read-modify-write of the blob, last writer wins.
type Store struct {
	metadata metadata.Manager
	tenant   string
}

func NewStore(manager metadata.Manager, tenant string) *Store {
	return &Store{metadata: manager, tenant: tenant}
}

func (s *Store) Tenant() string {
	return s.tenant
}

func (s *Store) GetConfig(ctx context.Context) (*model.AppConfig, error) {
	raw, err := s.metadata.Get(ctx, s.tenant, MetadataKey)
	if err != nil {
		return nil, errors.Wrap(err, "reading app config")
	}
	if raw == "" {
		return model.NewAppConfig(), nil
	}

	config := model.NewAppConfig()
	if err := json.Unmarshal([]byte(raw), config); err != nil {
		return nil, errors.Wrap(err, "invalid app config, cannot be parsed")
	}
	if config.Configurations == nil {
		config.Configurations = []model.ConfigEntry{}
	}
	if config.ChannelToConfigurationID == nil {
		config.ChannelToConfigurationID = model.ChannelMapping{}
	}
	return config, nil
}

func (s *Store) GetConfigObfuscated(ctx context.Context) (*model.AppConfig, error) {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return ObfuscateConfig(config), nil
}

func (s *Store) GetConfigEntry(ctx context.Context, configurationID string) (*model.ConfigEntry, error) {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := lo.Find(config.Configurations, func(e model.ConfigEntry) bool {
		return e.ConfigurationID == configurationID
	})
	if !ok {
		return nil, errors.WithStack(&apperror.EntryNotFoundError{ConfigurationID: configurationID})
	}
	return &entry, nil
}

// SetConfigEntry merges onto the entry with the same id, or appends a new one.
func (s *Store) SetConfigEntry(ctx context.Context, entry model.ConfigEntry) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}

	_, index, found := lo.FindIndexOf(config.Configurations, func(e model.ConfigEntry) bool {
		return e.ConfigurationID == entry.ConfigurationID
	})
	if found {
		config.Configurations[index] = MergeEntry(config.Configurations[index], entry)
	} else {
		config.Configurations = append(config.Configurations, entry)
	}

	return s.setConfig(ctx, config)
}

func (s *Store) UpdateConfigEntry(ctx context.Context, configurationID string, update EntryUpdate) (*model.ConfigEntry, error) {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	existing, index, found := lo.FindIndexOf(config.Configurations, func(e model.ConfigEntry) bool {
		return e.ConfigurationID == configurationID
	})
	if !found {
		return nil, errors.WithStack(&apperror.EntryNotFoundError{ConfigurationID: configurationID})
	}

	updated, err := ApplyUpdate(existing, update)
	if err != nil {
		return nil, err
	}
	config.Configurations[index] = updated

	if err := s.setConfig(ctx, config); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteConfigEntry removes the entry and every channel mapping pointing at it.
func (s *Store) DeleteConfigEntry(ctx context.Context, configurationID string) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}

	remaining := lo.Reject(config.Configurations, func(e model.ConfigEntry, _ int) bool {
		return e.ConfigurationID == configurationID
	})
	if len(remaining) == len(config.Configurations) {
		return errors.WithStack(&apperror.EntryNotFoundError{ConfigurationID: configurationID})
	}

	config.Configurations = remaining
	config.ChannelToConfigurationID = lo.OmitBy(config.ChannelToConfigurationID, func(_ string, id *string) bool {
		return id != nil && *id == configurationID
	})

	return s.setConfig(ctx, config)
}

func (s *Store) SetMapping(ctx context.Context, mapping model.ChannelMapping) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}

	for channelID, configurationID := range mapping {
		config.ChannelToConfigurationID[channelID] = configurationID
	}

	return s.setConfig(ctx, config)
}

func (s *Store) DeleteMapping(ctx context.Context, channelID string) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}

	delete(config.ChannelToConfigurationID, channelID)
	return s.setConfig(ctx, config)
}

func (s *Store) ClearConfig(ctx context.Context) error {
	return errors.Wrap(s.metadata.Delete(ctx, s.tenant, MetadataKey), "clearing app config")
}

func (s *Store) setConfig(ctx context.Context, config *model.AppConfig) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "marshalling app config")
	}
	return errors.Wrap(s.metadata.Set(ctx, s.tenant, MetadataKey, string(raw)), "writing app config")
}
