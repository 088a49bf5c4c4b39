package metadata

import (
	"context"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/model"
	"saleor-stripe-app/internal/saleor"

	"github.com/pkg/errors"
)

type AuthDataGetter interface {
	Get(ctx context.Context, saleorAPIURL string) (*model.AuthData, error)
}

type PrivateMetadataClient interface {
	FetchPrivateMetadata(ctx context.Context, auth model.AuthData) (map[string]string, error)
	UpdatePrivateMetadata(ctx context.Context, auth model.AuthData, items map[string]string) error
	DeletePrivateMetadata(ctx context.Context, auth model.AuthData, keys []string) error
}

// SaleorStore keeps values in the app's private metadata in Saleor itself.
// Keys are suffixed with the instance domain, "<key>__<domain>".
type SaleorStore struct {
	apl    AuthDataGetter
	client PrivateMetadataClient
}

func NewSaleorStore(apl AuthDataGetter, client PrivateMetadataClient) *SaleorStore {
	return &SaleorStore{apl: apl, client: client}
}

func (s *SaleorStore) Get(ctx context.Context, tenant, key string) (string, error) {
	auth, scopedKey, err := s.resolve(ctx, tenant, key)
	if err != nil {
		return "", err
	}

	items, err := s.client.FetchPrivateMetadata(ctx, *auth)
	if err != nil {
		return "", errors.Wrap(err, "fetching private metadata")
	}
	return items[scopedKey], nil
}

func (s *SaleorStore) Set(ctx context.Context, tenant, key, value string) error {
	auth, scopedKey, err := s.resolve(ctx, tenant, key)
	if err != nil {
		return err
	}
	return errors.Wrap(s.client.UpdatePrivateMetadata(ctx, *auth, map[string]string{scopedKey: value}), "updating private metadata")
}

func (s *SaleorStore) Delete(ctx context.Context, tenant, key string) error {
	auth, scopedKey, err := s.resolve(ctx, tenant, key)
	if err != nil {
		return err
	}
	return errors.Wrap(s.client.DeletePrivateMetadata(ctx, *auth, []string{scopedKey}), "deleting private metadata")
}

func (s *SaleorStore) resolve(ctx context.Context, tenant, key string) (*model.AuthData, string, error) {
	auth, err := s.apl.Get(ctx, tenant)
	if err != nil {
		return nil, "", err
	}
	if auth == nil {
		return nil, "", errors.WithStack(apperror.ErrMissingAuthData)
	}

	domain, err := saleor.Domain(tenant)
	if err != nil {
		return nil, "", err
	}
	return auth, key + "__" + domain, nil
}
