package dedup

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Seen(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

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

func TestMemory_SeenConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	const goroutines = 32
	var wg sync.WaitGroup
	firsts := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen, err := store.Seen(ctx, 7)
			assert.NoError(t, err)
			if !seen {
				firsts <- true
			}
		}()
	}

	wg.Wait()
	close(firsts)

	assert.Len(t, firsts, 1, "exactly one goroutine wins the mark")
}

func TestMemory_Close(t *testing.T) {
	assert.NoError(t, NewMemory().Close())
}
