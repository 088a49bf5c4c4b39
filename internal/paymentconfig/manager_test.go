package paymentconfig

import (
	"context"
	"log/slog"
	"testing"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/stripeapi/stripetest"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ManagerTestSuite struct {
	suite.Suite
	ctx    context.Context
	stripe *stripetest.Client
	store  *Store
	sut    *Manager
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	manager, err := metadata.NewEncryptedManager(metadata.NewMemoryStore(), "app-secret")
	s.Require().NoError(err)

	s.stripe = stripetest.NewClient()
	s.store = NewStore(manager, tenant)
	s.sut = NewManager(s.store, s.stripe.Factory(), "https://stripe.example.com/", "Saleor Stripe App", slog.Default())
}

func validForm() EntryForm {
	return EntryForm{
		ConfigurationName: "main",
		SecretKey:         "sk_test_1234567890",
		PublishableKey:    "pk_test_1234567890",
	}
}

func (s *ManagerTestSuite) TestAddConfigEntry() {
	t := s.T()

	entry, err := s.sut.AddConfigEntry(s.ctx, validForm())
	require.NoError(t, err)

	assert.Equal(t, "••••7890", entry.SecretKey)
	assert.Nil(t, entry.WebhookSecret)
	assert.Equal(t, "we_1", *entry.WebhookID)
	assert.Len(t, entry.ConfigurationID, 36)
	assert.Equal(t, []string{"https://stripe.example.com/api/webhooks/stripe?saleorApiUrl=https%3A%2F%2Fshop.example.com%2Fgraphql%2F"}, s.stripe.CreatedWebhooks)

	stored, err := s.store.GetConfigEntry(s.ctx, entry.ConfigurationID)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_1234567890", stored.SecretKey)
	assert.Equal(t, "whsec_test", *stored.WebhookSecret)
	assert.True(t, stored.FullyConfigured())
}

func (s *ManagerTestSuite) TestAddConfigEntry_InvalidForm() {
	t := s.T()

	forms := []EntryForm{
		{SecretKey: "sk_test_1", PublishableKey: "pk_test_1"},
		{ConfigurationName: "main", SecretKey: "nope", PublishableKey: "pk_test_1"},
		{ConfigurationName: "main", SecretKey: "sk_test_1", PublishableKey: "nope"},
	}
	for _, form := range forms {
		_, err := s.sut.AddConfigEntry(s.ctx, form)
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	}
	assert.Empty(t, s.stripe.CreatedWebhooks)
}

func (s *ManagerTestSuite) TestAddConfigEntry_InvalidKeys() {
	t := s.T()
	s.stripe.ValidateErr = errors.New("invalid api key")

	_, err := s.sut.AddConfigEntry(s.ctx, validForm())

	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	assert.Empty(t, s.stripe.CreatedWebhooks)
}

func (s *ManagerTestSuite) TestUpdateConfigEntry() {
	t := s.T()
	added, err := s.sut.AddConfigEntry(s.ctx, validForm())
	require.NoError(t, err)

	updated, err := s.sut.UpdateConfigEntry(s.ctx, added.ConfigurationID, decodeUpdate(t, `{"configurationName":"renamed","secretKey":"••••7890"}`))
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.ConfigurationName)
	assert.Equal(t, "••••7890", updated.SecretKey)

	_, err = s.sut.UpdateConfigEntry(s.ctx, "missing", EntryUpdate{})
	var notFound *apperror.EntryNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.ConfigurationID)
}

func (s *ManagerTestSuite) TestDeleteConfigEntry_SharedWebhookIsKept() {
	t := s.T()
	require.NoError(t, s.store.SetConfigEntry(s.ctx, model.ConfigEntry{
		ConfigurationID: "a", ConfigurationName: "a", SecretKey: "sk_test_a", WebhookID: lo.ToPtr("we_shared"),
	}))
	require.NoError(t, s.store.SetConfigEntry(s.ctx, model.ConfigEntry{
		ConfigurationID: "b", ConfigurationName: "b", SecretKey: "sk_test_b", WebhookID: lo.ToPtr("we_shared"),
	}))

	require.NoError(t, s.sut.DeleteConfigEntry(s.ctx, "a"))
	assert.Empty(t, s.stripe.DeletedWebhooks)

	require.NoError(t, s.sut.DeleteConfigEntry(s.ctx, "b"))
	assert.Equal(t, []string{"we_shared"}, s.stripe.DeletedWebhooks)
	assert.Equal(t, "sk_test_b", s.stripe.SecretKey)

	config, err := s.store.GetConfig(s.ctx)
	require.NoError(t, err)
	assert.Empty(t, config.Configurations)
}

func (s *ManagerTestSuite) TestDeleteConfigEntry_NotFound() {
	t := s.T()

	err := s.sut.DeleteConfigEntry(s.ctx, "missing")

	var notFound *apperror.EntryNotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Empty(t, s.stripe.DeletedWebhooks)
}

func (s *ManagerTestSuite) TestMapping() {
	t := s.T()
	added, err := s.sut.AddConfigEntry(s.ctx, validForm())
	require.NoError(t, err)

	channels := []model.Channel{{ID: "1"}, {ID: "2"}}

	mapping, err := s.sut.GetMapping(s.ctx, channels)
	require.NoError(t, err)
	assert.Equal(t, model.ChannelMapping{"1": nil, "2": nil}, mapping)

	_, err = s.sut.SetMapping(s.ctx, "1", lo.ToPtr(added.ConfigurationID))
	require.NoError(t, err)

	mapping, err = s.sut.GetMapping(s.ctx, channels)
	require.NoError(t, err)
	assert.Equal(t, added.ConfigurationID, *mapping["1"])
	assert.Nil(t, mapping["2"])

	_, err = s.sut.SetMapping(s.ctx, "2", lo.ToPtr("missing"))
	var notFound *apperror.EntryNotFoundError
	assert.True(t, errors.As(err, &notFound))

	mapping, err = s.sut.SetMapping(s.ctx, "1", nil)
	require.NoError(t, err)
	assert.Nil(t, mapping["1"])
}

func (s *ManagerTestSuite) TestListAndGet() {
	t := s.T()
	added, err := s.sut.AddConfigEntry(s.ctx, validForm())
	require.NoError(t, err)

	entries, err := s.sut.ListConfigEntries(s.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].WebhookSecret)

	entry, err := s.sut.GetConfigEntry(s.ctx, added.ConfigurationID)
	require.NoError(t, err)
	assert.Equal(t, "••••7890", entry.SecretKey)
}

func TestWebhookURL(t *testing.T) {
	assert.Equal(t,
		"https://app.example.com/api/webhooks/stripe?saleorApiUrl=https%3A%2F%2Fshop.example.com%2Fgraphql%2F",
		WebhookURL("https://app.example.com", "https://shop.example.com/graphql/"))
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}
