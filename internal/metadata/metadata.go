// Package metadata stores app settings as encrypted key/value pairs scoped by Saleor instance.
package metadata

import (
	"context"
)

// Store is the raw persistence of metadata values. Get returns an empty
// string when the key does not exist.
type Store interface {
	Get(ctx context.Context, tenant, key string) (string, error)
	Set(ctx context.Context, tenant, key, value string) error
	Delete(ctx context.Context, tenant, key string) error
}

// Manager reads and writes plaintext values, encrypting them at rest.
type Manager interface {
	Get(ctx context.Context, tenant, key string) (string, error)
	Set(ctx context.Context, tenant, key, value string) error
	Delete(ctx context.Context, tenant, key string) error
}
