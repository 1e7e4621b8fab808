package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"cryptoanalyzer/internal/provider"
)

// Header is the first row of every export.
var Header = []string{
	"symbol",
	"price",
	"percent_change_24h",
	"volume_24h",
	"circulating_supply",
	"total_supply",
	"max_supply",
	"last_updated",
	"percent_change_1h",
	"percent_change_30d",
	"percent_change_60d",
	"percent_change_90d",
}

// Record is one flat export row.
type Record struct {
	Symbol           string
	Price            decimal.Decimal
	PercentChange24h decimal.NullDecimal
	Volume24h        decimal.Decimal

	CirculatingSupply decimal.NullDecimal
	TotalSupply       decimal.NullDecimal
	MaxSupply         decimal.NullDecimal

	// Timestamp is the source time truncated to seconds.
	Timestamp string

	PercentChange1h  decimal.NullDecimal
	PercentChange30d decimal.NullDecimal
	PercentChange60d decimal.NullDecimal
	PercentChange90d decimal.NullDecimal
}

func FromQuote(q provider.Quote) Record {
	return Record{
		Symbol:            q.Symbol,
		Price:             q.Price,
		PercentChange24h:  q.PercentChange24h,
		Volume24h:         q.Volume24h,
		CirculatingSupply: q.CirculatingSupply,
		TotalSupply:       q.TotalSupply,
		MaxSupply:         q.MaxSupply,
		Timestamp:         q.Timestamp(),
		PercentChange1h:   q.PercentChange1h,
		PercentChange30d:  q.PercentChange30d,
		PercentChange60d:  q.PercentChange60d,
		PercentChange90d:  q.PercentChange90d,
	}
}

func FromQuotes(qs []provider.Quote) []Record {
	out := make([]Record, 0, len(qs))
	for _, q := range qs {
		out = append(out, FromQuote(q))
	}
	return out
}

func (r Record) row() []string {
	return []string{
		r.Symbol,
		r.Price.String(),
		nullString(r.PercentChange24h),
		r.Volume24h.String(),
		nullString(r.CirculatingSupply),
		nullString(r.TotalSupply),
		nullString(r.MaxSupply),
		r.Timestamp,
		nullString(r.PercentChange1h),
		nullString(r.PercentChange30d),
		nullString(r.PercentChange60d),
		nullString(r.PercentChange90d),
	}
}

// absent values export as empty cells, never as 0
func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Write writes the header and one comma-delimited row per record.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return fmt.Errorf("write %s: %w", r.Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records []Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export: %w", cerr)
		}
	}()
	return Write(f, records)
}

// FileName is the default export name: export_<SYM>.csv for a single
// symbol, export_watchlist.csv otherwise.
func FileName(symbols []string) string {
	if len(symbols) == 1 && symbols[0] != "" {
		return fmt.Sprintf("export_%s.csv", provider.NormalizeSymbol(symbols[0]))
	}
	return "export_watchlist.csv"
}
