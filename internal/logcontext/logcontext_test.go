package logcontext

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ContextHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := AppendCtx(context.Background(), slog.String("saleorApiUrl", "https://shop.example.com/graphql/"))
	ctx = AppendCtx(ctx, slog.String("eventId", "evt_1"))

	logger.InfoContext(ctx, "Processing stripe webhook")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "https://shop.example.com/graphql/", record["saleorApiUrl"])
	assert.Equal(t, "evt_1", record["eventId"])
}

func TestAppendCtx_DoesNotLeakIntoParent(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	_ = AppendCtx(parent, slog.String("b", "2"))

	assert.Len(t, Attrs(parent), 1)
}
