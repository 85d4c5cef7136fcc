package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

type cacheEntry struct {
	fetchedAt time.Time
	snap      types.MarketSnapshot
}

// Cache is a read-through TTL cache in front of a snapshot provider.
// Expired entries are kept around as a stale fallback for when the
// upstream is down.
type Cache struct {
	inner   interfaces.SnapshotProvider
	ttl     time.Duration
	retries int

	mu      sync.Mutex
	entries map[string]cacheEntry

	sleep func(context.Context, time.Duration) error // swapped out in tests
}

func NewCache(inner interfaces.SnapshotProvider, ttl time.Duration, retries int) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if retries <= 0 {
		retries = 3
	}
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		retries: retries,
		entries: make(map[string]cacheEntry),
		sleep:   sleepCtx,
	}
}

// sleepCtx waits for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Cache) Snapshots(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	out := make(map[string]types.MarketSnapshot, len(symbols))
	now := time.Now()

	var misses []string
	c.mu.Lock()
	for _, symbol := range symbols {
		entry, ok := c.entries[symbol]
		if ok && now.Sub(entry.fetchedAt) < c.ttl {
			out[symbol] = entry.snap
		} else {
			misses = append(misses, symbol)
		}
	}
	c.mu.Unlock()

	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.fetchWithRetry(ctx, misses)
	if err != nil {
		logger.Warn(ctx, "Snapshot fetch exhausted retries, falling back to stale cache",
			"symbols", len(misses), "error", err)
	}

	c.mu.Lock()
	for _, symbol := range misses {
		if snap, ok := fetched[symbol]; ok {
			c.entries[symbol] = cacheEntry{fetchedAt: time.Now(), snap: snap}
			out[symbol] = snap
			continue
		}
		// Serve the expired entry rather than dropping the symbol.
		if entry, ok := c.entries[symbol]; ok {
			out[symbol] = entry.snap
		}
	}
	c.mu.Unlock()

	if len(out) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no snapshots available for %d symbols", len(symbols))
	}
	return out, nil
}

func (c *Cache) fetchWithRetry(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snaps, err := c.inner.Snapshots(ctx, symbols)
		if err == nil {
			return snaps, nil
		}
		lastErr = err
		if attempt < c.retries-1 {
			wait := time.Duration(1+attempt) * time.Second
			logger.Debug(ctx, "Snapshot fetch failed, retrying", "attempt", attempt+1, "wait", wait, "error", err)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}
