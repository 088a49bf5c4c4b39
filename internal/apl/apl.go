// Package apl keeps the auth data of every Saleor instance the app is installed in.
package apl

import (
	"context"

	"saleor-stripe-app/internal/model"
)

// APL is the auth persistence layer. Get returns nil, nil for unknown instances.
type APL interface {
	Get(ctx context.Context, saleorAPIURL string) (*model.AuthData, error)
	Set(ctx context.Context, auth model.AuthData) error
	Delete(ctx context.Context, saleorAPIURL string) error
	GetAll(ctx context.Context) ([]model.AuthData, error)
	IsReady(ctx context.Context) error
}
