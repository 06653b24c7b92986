package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Seen(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedis(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	seen, err := store.Seen(ctx, 42)
	require.NoError(t, err)
	assert.False(t, seen, "first occurrence must not be seen")

	seen, err = store.Seen(ctx, 42)
	require.NoError(t, err)
	assert.True(t, seen, "second occurrence must be seen")

	seen, err = store.Seen(ctx, 43)
	require.NoError(t, err)
	assert.False(t, seen, "different id is independent")
}

func TestRedis_SeenExpires(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedis(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, err = store.Seen(ctx, 42)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	seen, err := store.Seen(ctx, 42)
	require.NoError(t, err)
	assert.False(t, seen, "the mark is forgotten after the TTL")
}

func TestRedis_SeenBackendDown(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedis(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	mr.Close()

	_, err = store.Seen(context.Background(), 42)
	assert.ErrorContains(t, err, "failed to mark update")
}

func TestUpdateKey(t *testing.T) {
	assert.Equal(t, "update:seen:123", updateKey(123))
}
