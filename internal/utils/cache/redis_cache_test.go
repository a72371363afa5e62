package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLinkRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "")
	ctx := context.Background()

	recipeID := uuid.New()
	c.SetShortLink(ctx, "abc123", recipeID)

	got, ok := c.GetShortLink(ctx, "abc123")
	require.True(t, ok)
	assert.Equal(t, recipeID, got)
}

func TestShortLinkMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "")

	_, ok := c.GetShortLink(context.Background(), "nosuch")
	assert.False(t, ok)
}

func TestShortLinkSkipsCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "")

	require.NoError(t, mr.Set("shortlink:bad", "not-a-uuid"))

	_, ok := c.GetShortLink(context.Background(), "bad")
	assert.False(t, ok)
}

func TestShortLinkUnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	c := NewRedisCache(addr, "")
	_, ok := c.GetShortLink(context.Background(), "abc123")
	assert.False(t, ok)
}
