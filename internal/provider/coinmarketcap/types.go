package coinmarketcap

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cryptoanalyzer/internal/provider"
)

// Status is the status block present in every API response.
type Status struct {
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Elapsed      int    `json:"elapsed"`
	CreditCount  int    `json:"credit_count"`
}

// Coin is a single cryptocurrency as returned by quotes/latest and listings/latest.
type Coin struct {
	ID                int                  `json:"id"`
	Name              string               `json:"name"`
	Symbol            string               `json:"symbol"`
	Slug              string               `json:"slug"`
	CMCRank           int                  `json:"cmc_rank"`
	CirculatingSupply decimal.NullDecimal  `json:"circulating_supply"`
	TotalSupply       decimal.NullDecimal  `json:"total_supply"`
	MaxSupply         decimal.NullDecimal  `json:"max_supply"`
	LastUpdated       string               `json:"last_updated"`
	Quote             map[string]CoinQuote `json:"quote"`
}

// CoinQuote is the market data for a coin in one currency.
type CoinQuote struct {
	Price            decimal.NullDecimal `json:"price"`
	Volume24h        decimal.NullDecimal `json:"volume_24h"`
	MarketCap        decimal.NullDecimal `json:"market_cap"`
	PercentChange1h  decimal.NullDecimal `json:"percent_change_1h"`
	PercentChange24h decimal.NullDecimal `json:"percent_change_24h"`
	PercentChange7d  decimal.NullDecimal `json:"percent_change_7d"`
	PercentChange30d decimal.NullDecimal `json:"percent_change_30d"`
	PercentChange60d decimal.NullDecimal `json:"percent_change_60d"`
	PercentChange90d decimal.NullDecimal `json:"percent_change_90d"`
	LastUpdated      string              `json:"last_updated"`
}

type quotesResponse struct {
	Status Status          `json:"status"`
	Data   map[string]Coin `json:"data"`
}

type listingsResponse struct {
	Status Status `json:"status"`
	Data   []Coin `json:"data"`
}

// ToQuote converts the coin into a normalized quote using the given currency.
// A coin without a price in that currency is a parse error.
func (c Coin) ToQuote(currency string, receivedAt time.Time) (provider.Quote, error) {
	sym := provider.NormalizeSymbol(c.Symbol)
	q, ok := c.Quote[currency]
	if !ok {
		e := provider.ParseError(fmt.Errorf("no %s quote", currency))
		e.Symbol = sym
		return provider.Quote{}, e
	}
	if !q.Price.Valid {
		e := provider.ParseError(fmt.Errorf("null %s price", currency))
		e.Symbol = sym
		return provider.Quote{}, e
	}
	lastUpdated := q.LastUpdated
	if lastUpdated == "" {
		lastUpdated = c.LastUpdated
	}
	return provider.Quote{
		Symbol:            sym,
		Name:              c.Name,
		Rank:              c.CMCRank,
		Price:             q.Price.Decimal,
		Volume24h:         q.Volume24h.Decimal,
		MarketCap:         q.MarketCap.Decimal,
		PercentChange1h:   q.PercentChange1h,
		PercentChange24h:  q.PercentChange24h,
		PercentChange7d:   q.PercentChange7d,
		PercentChange30d:  q.PercentChange30d,
		PercentChange60d:  q.PercentChange60d,
		PercentChange90d:  q.PercentChange90d,
		CirculatingSupply: c.CirculatingSupply,
		TotalSupply:       c.TotalSupply,
		MaxSupply:         c.MaxSupply,
		LastUpdated:       lastUpdated,
		ReceivedAt:        receivedAt,
	}, nil
}
