package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-browser/cache"
)

func TestEpochStore_RunSince(t *testing.T) {
	ctx := context.Background()
	store := newEpochStore(cache.NewMemoryStore())
	epoch := store.Epoch()

	ran := false
	assert.True(t, store.RunSince(epoch, func() { ran = true }))
	assert.True(t, ran)

	require.NoError(t, store.Clear(ctx))
	ran = false
	assert.False(t, store.RunSince(epoch, func() { ran = true }), "a clear since the capture skips fn")
	assert.False(t, ran)
}

func TestEpochStore_ClearWithExcludesRunSince(t *testing.T) {
	ctx := context.Background()
	store := newEpochStore(cache.NewMemoryStore())
	epoch := store.Epoch()

	done := make(chan bool, 1)
	resets := 0
	require.NoError(t, store.ClearWith(ctx, func() {
		resets++
		go func() { done <- store.RunSince(epoch, func() {}) }()
	}))

	assert.Equal(t, 1, resets)
	assert.False(t, <-done, "a run racing the clear observes the new epoch")
	assert.Equal(t, epoch+1, store.Epoch())
}
