package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"bet-ledger-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowField(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	assert.Equal(t, "2024-03-01T00:00:00Z/2024-04-01T00:00:00Z", windowField(from, to))
	assert.Equal(t, "ledger:summary:owner-1:3", ownerKey("owner-1", 3))
	assert.Equal(t, "ledger:summary:gen:owner-1", generationKey("owner-1"))
}

func TestNopCache(t *testing.T) {
	var c SummaryCache = NopCache{}
	ctx := context.Background()

	gen, err := c.Generation(ctx, "o")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "o", gen, &models.Summary{}))
	got, ok, err := c.Get(ctx, "o", gen, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, "o"))
}

// TestRedisSummaryCache needs a reachable Redis at TEST_REDIS_ADDR.
func TestRedisSummaryCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := ConnectRedis(ctx, addr)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisSummaryCache(client, time.Minute)
	owner := "cache-" + uuid.New().String()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	gen, err := c.Generation(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, gen)

	_, ok, err := c.Get(ctx, owner, gen, from, to)
	require.NoError(t, err)
	assert.False(t, ok)

	summary := &models.Summary{
		From:    from,
		To:      to,
		Credits: decimal.RequireFromString("150.50"),
		Debits:  decimal.RequireFromString("20"),
		NetPL:   decimal.RequireFromString("-12.25"),
	}
	require.NoError(t, c.Set(ctx, owner, gen, summary))

	got, ok, err := c.Get(ctx, owner, gen, from, to)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, summary.Credits.Equal(got.Credits))
	assert.True(t, summary.NetPL.Equal(got.NetPL))
	assert.True(t, from.Equal(got.From))

	require.NoError(t, c.Invalidate(ctx, owner))
	next, err := c.Generation(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	_, ok, err = c.Get(ctx, owner, next, from, to)
	require.NoError(t, err)
	assert.False(t, ok)

	// a late write under the old generation stays invisible
	require.NoError(t, c.Set(ctx, owner, gen, summary))
	_, ok, err = c.Get(ctx, owner, next, from, to)
	require.NoError(t, err)
	assert.False(t, ok)
}
