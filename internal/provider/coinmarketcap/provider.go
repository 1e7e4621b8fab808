package coinmarketcap

import (
	"context"
	"errors"
	"time"

	"cryptoanalyzer/internal/provider"
)

type Config struct {
	Name          string // display name, default: CoinMarketCap
	Currency      string // quote currency, default: USD
	ListingsLimit int    // rows in the ranked table, default: 50
	ListingsSort  string // default: market_cap
}

// Provider adapts Client to provider.Provider.
type Provider struct {
	cfg    Config
	client *Client

	now func() time.Time
}

func New(cfg Config, client *Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "CoinMarketCap"
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.ListingsLimit <= 0 {
		cfg.ListingsLimit = 50
	}
	if cfg.ListingsSort == "" {
		cfg.ListingsSort = "market_cap"
	}
	return &Provider{cfg: cfg, client: client, now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Fetch returns one quote per symbol known to the API, in request order.
// Coins the API returns without a usable price are left out and reported
// as parse errors next to the quotes that did convert.
func (p *Provider) Fetch(ctx context.Context, symbols []string) ([]provider.Quote, error) {
	coins, err := p.client.QuotesLatest(ctx, symbols, WithConvert(p.cfg.Currency))
	if err != nil {
		return nil, err
	}
	now := p.now().UTC()
	out := make([]provider.Quote, 0, len(coins))
	var bad []error
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		sym := provider.NormalizeSymbol(s)
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		coin, ok := coins[sym]
		if !ok {
			continue
		}
		q, err := coin.ToQuote(p.cfg.Currency, now)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		out = append(out, q)
	}
	return out, errors.Join(bad...)
}

// Listings returns the ranked table in API order. Rows without a price are
// dropped; it fails only when none of the returned rows is usable.
func (p *Provider) Listings(ctx context.Context) ([]provider.Quote, error) {
	coins, err := p.client.ListingsLatest(ctx, p.cfg.ListingsLimit, p.cfg.ListingsSort, WithConvert(p.cfg.Currency))
	if err != nil {
		return nil, err
	}
	now := p.now().UTC()
	out := make([]provider.Quote, 0, len(coins))
	var firstErr error
	for _, coin := range coins {
		q, err := coin.ToQuote(p.cfg.Currency, now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
