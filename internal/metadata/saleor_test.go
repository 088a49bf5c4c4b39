package metadata

import (
	"context"
	"testing"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPL map[string]*model.AuthData

func (f fakeAPL) Get(_ context.Context, saleorAPIURL string) (*model.AuthData, error) {
	return f[saleorAPIURL], nil
}

type fakeMetadataClient struct {
	items map[string]string
}

func (f *fakeMetadataClient) FetchPrivateMetadata(_ context.Context, _ model.AuthData) (map[string]string, error) {
	return f.items, nil
}

func (f *fakeMetadataClient) UpdatePrivateMetadata(_ context.Context, _ model.AuthData, items map[string]string) error {
	for k, v := range items {
		f.items[k] = v
	}
	return nil
}

func (f *fakeMetadataClient) DeletePrivateMetadata(_ context.Context, _ model.AuthData, keys []string) error {
	for _, k := range keys {
		delete(f.items, k)
	}
	return nil
}

func TestSaleorStore(t *testing.T) {
	client := &fakeMetadataClient{items: map[string]string{}}
	apl := fakeAPL{tenant: {SaleorAPIURL: tenant, Token: "token", AppID: "app"}}
	sut := NewSaleorStore(apl, client)
	ctx := context.Background()

	require.NoError(t, sut.Set(ctx, tenant, "stripe-app-config-v2", "blob"))
	assert.Equal(t, "blob", client.items["stripe-app-config-v2__shop.example.com"])

	value, err := sut.Get(ctx, tenant, "stripe-app-config-v2")
	require.NoError(t, err)
	assert.Equal(t, "blob", value)

	require.NoError(t, sut.Delete(ctx, tenant, "stripe-app-config-v2"))
	assert.Empty(t, client.items)
}

func TestSaleorStore_MissingAuthData(t *testing.T) {
	sut := NewSaleorStore(fakeAPL{}, &fakeMetadataClient{items: map[string]string{}})

	_, err := sut.Get(context.Background(), tenant, "k")

	assert.True(t, errors.Is(err, apperror.ErrMissingAuthData))
}
