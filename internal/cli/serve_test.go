package cli

import (
	"log/slog"
	"testing"

	"saleor-stripe-app/internal/apl"
	"saleor-stripe-app/internal/config"
	"saleor-stripe-app/internal/metadata"
	"saleor-stripe-app/internal/saleor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPL(t *testing.T) {
	cfg := &config.Config{APL: config.APL{Backend: backendRedis}, Redis: config.Redis{Addr: "localhost:6379"}}
	store, closeFn, err := newAPL(cfg, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &apl.RedisAPL{}, store)

	cfg.APL.Backend = backendMemory
	store, _, err = newAPL(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &apl.MemoryAPL{}, store)

	cfg.APL.Backend = "dynamodb"
	_, _, err = newAPL(cfg, nil)
	assert.ErrorContains(t, err, `unknown apl backend "dynamodb"`)
}

func TestNewMetadataStore(t *testing.T) {
	client := saleor.NewClient(config.Saleor{TimeoutMs: 1000}, slog.Default())

	store, err := newMetadataStore(config.Metadata{Backend: backendSaleor}, apl.NewMemoryAPL(), client, nil)
	require.NoError(t, err)
	assert.IsType(t, &metadata.SaleorStore{}, store)

	store, err = newMetadataStore(config.Metadata{Backend: backendMemory}, apl.NewMemoryAPL(), client, nil)
	require.NoError(t, err)
	assert.IsType(t, &metadata.MemoryStore{}, store)

	_, err = newMetadataStore(config.Metadata{Backend: "s3"}, apl.NewMemoryAPL(), client, nil)
	assert.Error(t, err)
}
