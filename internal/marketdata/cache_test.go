package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

// fakeProvider counts calls and can be switched to fail.
type fakeProvider struct {
	calls int
	fail  bool
}

func (f *fakeProvider) Snapshots(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("provider unreachable")
	}
	out := make(map[string]types.MarketSnapshot, len(symbols))
	for _, s := range symbols {
		out[s] = types.MarketSnapshot{Symbol: s, CurrentPrice: 100, FetchedAt: time.Now()}
	}
	return out, nil
}

func newTestCache(inner *fakeProvider, ttl time.Duration) *Cache {
	c := NewCache(inner, ttl, 3)
	c.sleep = func(context.Context, time.Duration) error { return nil } // no real backoff in tests
	return c
}

func TestCacheHitSkipsProvider(t *testing.T) {
	inner := &fakeProvider{}
	c := newTestCache(inner, time.Minute)

	_, err := c.Snapshots(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	snaps, err := c.Snapshots(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
	assert.Equal(t, 1, inner.calls, "fresh entries must not refetch")
}

func TestCacheExpiredEntryRefetches(t *testing.T) {
	inner := &fakeProvider{}
	c := newTestCache(inner, time.Nanosecond)

	_, err := c.Snapshots(context.Background(), []string{"AAPL"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = c.Snapshots(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCacheRetriesThenStaleFallback(t *testing.T) {
	inner := &fakeProvider{}
	c := newTestCache(inner, time.Nanosecond)

	first, err := c.Snapshots(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Contains(t, first, "AAPL")

	time.Sleep(time.Millisecond)
	inner.fail = true
	inner.calls = 0

	snaps, err := c.Snapshots(context.Background(), []string{"AAPL"})
	require.NoError(t, err, "stale entry must be served when the provider is down")
	assert.Contains(t, snaps, "AAPL")
	assert.Equal(t, 3, inner.calls, "expected bounded retries")
}

func TestCacheErrorWhenNothingObtainable(t *testing.T) {
	inner := &fakeProvider{fail: true}
	c := newTestCache(inner, time.Minute)

	_, err := c.Snapshots(context.Background(), []string{"AAPL"})
	assert.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestCacheBackoffAbortsOnCancel(t *testing.T) {
	inner := &fakeProvider{fail: true}
	c := NewCache(inner, time.Minute, 3) // real backoff

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.Snapshots(ctx, []string{"AAPL"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "cancellation must cut the backoff short")
	assert.Equal(t, 1, inner.calls)
}

func TestCachePartialMiss(t *testing.T) {
	inner := &fakeProvider{}
	c := newTestCache(inner, time.Minute)

	_, err := c.Snapshots(context.Background(), []string{"AAPL"})
	require.NoError(t, err)

	snaps, err := c.Snapshots(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
	// Second call only fetched the miss.
	assert.Equal(t, 2, inner.calls)
}
