package blobstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledStore(t *testing.T) {
	testStore(t, NewThrottledStore(NewMemoryStore(), ThrottleConfig{}))
	testStore(t, NewThrottledStore(NewMemoryStore(), ThrottleConfig{BytesPerSec: 1 << 20, MaxInFlight: 2}))
}

func TestThrottledStore_ByteRate(t *testing.T) {
	ctx := context.Background()
	store := NewThrottledStore(NewMemoryStore(), ThrottleConfig{BytesPerSec: 1000})

	// The first burst is free; the next 500 bytes need about half a second.
	require.NoError(t, store.Put(ctx, "a", make([]byte, 1000)))

	start := time.Now()
	require.NoError(t, store.Put(ctx, "b", make([]byte, 500)))
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}

func TestThrottledStore_Canceled(t *testing.T) {
	store := NewThrottledStore(NewMemoryStore(), ThrottleConfig{BytesPerSec: 10})
	require.NoError(t, store.Put(context.Background(), "a", make([]byte, 10)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// 100 bytes at 10 B/s cannot finish before the deadline.
	err := store.Put(ctx, "b", make([]byte, 100))
	require.Error(t, err)

	_, err = store.Get(context.Background(), "b")
	require.ErrorIs(t, err, ErrNotFound)
}

// countingStore records the peak number of concurrent Get calls.
type countingStore struct {
	BlobStore
	cur, peak atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, name string) ([]byte, error) {
	n := c.cur.Add(1)
	defer c.cur.Add(-1)

	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}

	time.Sleep(5 * time.Millisecond)

	return c.BlobStore.Get(ctx, name)
}

func TestThrottledStore_MaxInFlight(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{BlobStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a", []byte("x")))

	store := NewThrottledStore(inner, ThrottleConfig{MaxInFlight: 2})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Get(ctx, "a")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, inner.peak.Load(), int64(2))
}
