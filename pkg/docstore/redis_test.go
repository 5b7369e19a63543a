package docstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/clouddrive/pkg/docstore"
)

func TestRedisDocument_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	doc, err := docstore.ConnectRedis(ctx, docstore.RedisOptions{
		Addr: addr,
		Key:  "clouddrive:test:" + xid.New().String(),
	})
	require.NoError(t, err)
	defer doc.Close()

	_, err = doc.Read(ctx)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	require.NoError(t, doc.Write(ctx, []byte(`[{"id":1}]`)))
	got, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))
}
