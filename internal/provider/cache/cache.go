package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cryptoanalyzer/internal/provider"
)

// DefaultTTL is the freshness window for a cached quote.
const DefaultTTL = 300 * time.Second

// entry stores the last fetched quote for a single symbol.
type entry struct {
	fetchedAt time.Time
	quote     provider.Quote
}

// Provider caches quotes per symbol for a TTL.
// An entry is fresh while now-fetchedAt < TTL; a stale entry is replaced
// wholesale on the next successful fetch and kept as last-known until then.
type Provider struct {
	P        provider.Provider
	TTL      time.Duration
	MaxItems int

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	mu    sync.RWMutex
	items map[string]entry // key: symbol

	// coalesce concurrent misses per symbol
	sf singleflight.Group
}

// New wraps p with a per-symbol cache. ttl <= 0 selects DefaultTTL.
func New(p provider.Provider, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{P: p, TTL: ttl}
}

func (c *Provider) Name() string { return c.P.Name() }

func (c *Provider) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Provider) fresh(e entry, now time.Time) bool {
	return now.Sub(e.fetchedAt) < c.TTL
}

// GetOrFetch returns the cached quote while fresh, otherwise fetches it
// once, stores it and returns it. A failed fetch leaves the cache untouched.
func (c *Provider) GetOrFetch(ctx context.Context, symbol string) (provider.Quote, error) {
	sym := provider.NormalizeSymbol(symbol)
	if sym == "" {
		return provider.Quote{}, provider.ErrEmptySymbol
	}

	c.mu.RLock()
	e, ok := c.items[sym]
	c.mu.RUnlock()
	if ok && c.fresh(e, c.now()) {
		return e.quote, nil
	}

	v, err, _ := c.sf.Do(sym, func() (any, error) {
		q, err := provider.FetchOne(ctx, c.P, sym)
		if err != nil {
			return nil, err
		}
		c.store(map[string]provider.Quote{sym: q}, c.now())
		return q, nil
	})
	if err != nil {
		return provider.Quote{}, err
	}
	return v.(provider.Quote), nil
}

// Fetch returns quotes for requested symbols using the cache when fresh.
// It requests only missing or stale symbols from the underlying provider,
// in a single call, and combines cached and fresh results in request order.
// When that call fails the fresh cached quotes are still returned, together
// with the error.
func (c *Provider) Fetch(ctx context.Context, symbols []string) ([]provider.Quote, error) {
	now := c.now()

	// Split into cached and missing symbols
	cached := make(map[string]provider.Quote, len(symbols))
	missing := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))

	c.mu.RLock()
	for _, s := range symbols {
		sym := provider.NormalizeSymbol(s)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		if e, ok := c.items[sym]; ok && c.fresh(e, now) {
			cached[sym] = e.quote
			continue
		}
		missing = append(missing, sym)
	}
	c.mu.RUnlock()

	fresh := make(map[string]provider.Quote, len(missing))
	var fetchErr error
	if len(missing) > 0 {
		qs, err := c.P.Fetch(ctx, missing)
		if err != nil {
			fetchErr = err
		}
		for _, q := range qs {
			fresh[q.Symbol] = q
		}
		if len(fresh) > 0 {
			c.store(fresh, c.now())
		}
	}

	out := make([]provider.Quote, 0, len(cached)+len(fresh))
	for _, s := range symbols {
		sym := provider.NormalizeSymbol(s)
		if q, ok := fresh[sym]; ok {
			out = append(out, q)
			delete(fresh, sym)
			continue
		}
		if q, ok := cached[sym]; ok {
			out = append(out, q)
			delete(cached, sym)
		}
	}
	return out, fetchErr
}

// Lookup returns the last known quote for symbol regardless of freshness.
func (c *Provider) Lookup(symbol string) (provider.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[provider.NormalizeSymbol(symbol)]
	return e.quote, ok
}

// FetchedAt reports when symbol was last stored.
func (c *Provider) FetchedAt(symbol string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[provider.NormalizeSymbol(symbol)]
	return e.fetchedAt, ok
}

// Invalidate drops the entry for symbol so the next read refetches.
func (c *Provider) Invalidate(symbol string) {
	c.mu.Lock()
	delete(c.items, provider.NormalizeSymbol(symbol))
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Provider) InvalidateAll() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Len returns the number of stored entries, fresh or stale.
func (c *Provider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Provider) store(quotes map[string]provider.Quote, now time.Time) {
	if len(quotes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]entry, len(quotes))
	}
	for sym, q := range quotes {
		c.items[sym] = entry{fetchedAt: now, quote: q}
	}
	// best-effort cap cache size: expired first, then arbitrary
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		for k, v := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			if !c.fresh(v, now) {
				delete(c.items, k)
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			if _, keep := quotes[k]; keep {
				continue
			}
			delete(c.items, k)
		}
	}
}
