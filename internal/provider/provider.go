package provider

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the normalized market snapshot returned by providers.
// Amounts are decimals in the quote currency (USD).
type Quote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Rank   int    `json:"rank"`

	Price     decimal.Decimal `json:"price"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	MarketCap decimal.Decimal `json:"market_cap"`

	PercentChange1h  decimal.NullDecimal `json:"percent_change_1h"`
	PercentChange24h decimal.NullDecimal `json:"percent_change_24h"`
	PercentChange7d  decimal.NullDecimal `json:"percent_change_7d"`
	PercentChange30d decimal.NullDecimal `json:"percent_change_30d"`
	PercentChange60d decimal.NullDecimal `json:"percent_change_60d"`
	PercentChange90d decimal.NullDecimal `json:"percent_change_90d"`

	CirculatingSupply decimal.NullDecimal `json:"circulating_supply"`
	TotalSupply       decimal.NullDecimal `json:"total_supply"`
	MaxSupply         decimal.NullDecimal `json:"max_supply"`

	// LastUpdated is the source-provided ISO-8601 string.
	LastUpdated string    `json:"last_updated"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Window names a percent-change period.
type Window string

const (
	Window1h  Window = "1h"
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window60d Window = "60d"
	Window90d Window = "90d"
)

// DisplayWindows are the periods shown in the metrics view.
var DisplayWindows = []Window{Window1h, Window24h, Window30d, Window60d, Window90d}

// PercentChange returns the change over w, invalid if the source omitted it.
func (q Quote) PercentChange(w Window) decimal.NullDecimal {
	switch w {
	case Window1h:
		return q.PercentChange1h
	case Window24h:
		return q.PercentChange24h
	case Window7d:
		return q.PercentChange7d
	case Window30d:
		return q.PercentChange30d
	case Window60d:
		return q.PercentChange60d
	case Window90d:
		return q.PercentChange90d
	}
	return decimal.NullDecimal{}
}

// Timestamp is LastUpdated truncated to seconds (2006-01-02T15:04:05).
func (q Quote) Timestamp() string {
	if len(q.LastUpdated) > 19 {
		return q.LastUpdated[:19]
	}
	return q.LastUpdated
}

type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) ([]Quote, error)
}

// NormalizeSymbol upper-cases and trims a user-entered ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FetchOne fetches a single symbol. A response that does not carry the
// symbol is reported as ErrSymbolNotFound.
func FetchOne(ctx context.Context, p Provider, symbol string) (Quote, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return Quote{}, ErrEmptySymbol
	}
	qs, err := p.Fetch(ctx, []string{sym})
	if err != nil {
		return Quote{}, err
	}
	for _, q := range qs {
		if q.Symbol == sym {
			return q, nil
		}
	}
	return Quote{}, &FetchError{Kind: ErrSymbolNotFound, Symbol: sym}
}
