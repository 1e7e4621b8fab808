// Package dashboard builds display snapshots from the quote cache and executes
// user commands against them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptoanalyzer/internal/export"
	"cryptoanalyzer/internal/format"
	"cryptoanalyzer/internal/provider"
	"cryptoanalyzer/internal/valuation"
	"cryptoanalyzer/internal/watchlist"
)

// Quotes is the cached quote source. *cache.Provider satisfies it.
type Quotes interface {
	Fetch(ctx context.Context, symbols []string) ([]provider.Quote, error)
	GetOrFetch(ctx context.Context, symbol string) (provider.Quote, error)
	Lookup(symbol string) (provider.Quote, bool)
	Invalidate(symbol string)
}

// Listings returns the ranked top-N table.
type Listings interface {
	Listings(ctx context.Context) ([]provider.Quote, error)
}

// Row is one watchlist line.
type Row struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Trend     string `json:"trend,omitempty"`
	Volume    string `json:"volume"`
	Updated   string `json:"updated"`
	// Stale is set when the row shows the last known quote after a failed fetch.
	Stale bool   `json:"stale,omitempty"`
	Error string `json:"error,omitempty"`
}

// ListingRow is one line of the ranked table.
type ListingRow struct {
	Rank      int    `json:"rank"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Trend     string `json:"trend,omitempty"`
	MarketCap string `json:"market_cap"`
	Volume    string `json:"volume"`
}

type Snapshot struct {
	Rows        []Row        `json:"rows"`
	Top         []ListingRow `json:"top"`
	TopError    string       `json:"top_error,omitempty"`
	RefreshedAt time.Time    `json:"refreshed_at"`
	NextRefresh time.Time    `json:"next_refresh,omitempty"`
}

// Metric is a labelled value in the detail view. Tag is positive, negative or empty.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tag   string `json:"tag,omitempty"`
}

type Detail struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Changes     []Metric `json:"changes"`
	Volume      string   `json:"volume"`
	Supplies    []Metric `json:"supplies"`
	LastUpdated string   `json:"last_updated"`
	Stale       bool     `json:"stale,omitempty"`
}

type Options struct {
	Quotes    Quotes
	Listings  Listings
	Watchlist *watchlist.Watchlist
	ExportDir string
	Log       *zap.Logger
}

// Service serializes every dashboard operation behind one mutex.
type Service struct {
	mu sync.Mutex

	quotes    Quotes
	listings  Listings
	watchlist *watchlist.Watchlist
	calc      *valuation.Calculator
	exportDir string
	log       *zap.Logger
	last      Snapshot

	now func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Watchlist == nil {
		opts.Watchlist = watchlist.New()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	return &Service{
		quotes:    opts.Quotes,
		listings:  opts.Listings,
		watchlist: opts.Watchlist,
		calc:      valuation.NewCalculator(opts.Quotes),
		exportDir: opts.ExportDir,
		log:       opts.Log,
		now:       time.Now,
	}
}

// Refresh fetches the watchlist in one batched call and the ranked table.
// Failed symbols fall back to the last known quote, or to placeholders.
func (s *Service) Refresh(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := s.watchlist.Symbols()
	snap := Snapshot{RefreshedAt: s.now().UTC(), Rows: make([]Row, 0, len(symbols))}

	got := map[string]provider.Quote{}
	var fetchErr error
	if len(symbols) > 0 {
		qs, err := s.quotes.Fetch(ctx, symbols)
		if err != nil {
			fetchErr = err
			s.log.Warn("refresh quotes", zap.Strings("symbols", symbols), zap.Error(err))
		}
		for _, q := range qs {
			got[q.Symbol] = q
		}
	}
	for _, sym := range symbols {
		if q, ok := got[sym]; ok {
			snap.Rows = append(snap.Rows, rowFor(q))
			continue
		}
		err := fetchErr
		if err == nil {
			err = &provider.FetchError{Kind: provider.ErrSymbolNotFound, Symbol: sym}
		}
		if q, ok := s.quotes.Lookup(sym); ok {
			row := rowFor(q)
			row.Stale = true
			row.Error = err.Error()
			snap.Rows = append(snap.Rows, row)
			continue
		}
		snap.Rows = append(snap.Rows, placeholderRow(sym, err))
	}

	if s.listings != nil {
		top, err := s.listings.Listings(ctx)
		if err != nil {
			s.log.Warn("refresh listings", zap.Error(err))
			snap.TopError = err.Error()
		} else {
			snap.Top = listingRows(top)
		}
	}

	s.last = snap
	s.log.Debug("snapshot refreshed", zap.Int("rows", len(snap.Rows)), zap.Int("top", len(snap.Top)))
	return snap
}

// Last returns the most recent snapshot without fetching.
func (s *Service) Last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// schedule records when the next periodic refresh is due and returns the
// updated snapshot.
func (s *Service) schedule(next time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last.NextRefresh = next
	return s.last
}

// Detail returns the metrics view for one symbol. A failed fetch falls back
// to the last known quote.
func (s *Service) Detail(ctx context.Context, symbol string) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.quotes.GetOrFetch(ctx, symbol)
	if err != nil {
		last, ok := s.quotes.Lookup(provider.NormalizeSymbol(symbol))
		if !ok {
			return Detail{}, err
		}
		s.log.Warn("detail served stale", zap.String("symbol", last.Symbol), zap.Error(err))
		d := detailFor(last)
		d.Stale = true
		return d, nil
	}
	return detailFor(q), nil
}

// Quotes returns quotes for arbitrary symbols through the cache.
func (s *Service) Quotes(ctx context.Context, symbols []string) ([]provider.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(symbols) == 0 {
		return nil, provider.ErrEmptySymbol
	}
	return s.quotes.Fetch(ctx, symbols)
}

// Top returns the ranked table.
func (s *Service) Top(ctx context.Context) ([]ListingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listings == nil {
		return nil, errors.New("listings not configured")
	}
	qs, err := s.listings.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return listingRows(qs), nil
}

func (s *Service) Watchlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchlist.Symbols()
}

func (s *Service) AddSymbol(symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.watchlist.Add(symbol)
	if err != nil {
		return false, fmt.Errorf("%w: %w", valuation.ErrInvalidInput, err)
	}
	return added, nil
}

// RemoveSymbol drops symbol from the watchlist. Absent symbols are a no-op.
func (s *Service) RemoveSymbol(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchlist.Remove(symbol)
}

// Value prices quantity of symbol at the last known quote, fetching one if
// nothing is cached yet. On failure the returned string is the placeholder
// and the error is the fetch failure when there was nothing to fall back on.
func (s *Service) Value(ctx context.Context, symbol, quantity string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := valuation.ParseQuantity(quantity); err != nil {
		return format.Placeholder, err
	}
	sym := provider.NormalizeSymbol(symbol)
	if _, ok := s.quotes.Lookup(sym); !ok && sym != "" {
		if _, err := s.quotes.GetOrFetch(ctx, sym); err != nil {
			s.log.Debug("value fetch", zap.String("symbol", sym), zap.Error(err))
			return format.Placeholder, err
		}
	}
	v, err := s.calc.Value(sym, quantity)
	if err != nil {
		return format.Placeholder, err
	}
	return format.Price(v), nil
}

// Export writes the watchlist quotes to path, or to the default file name in
// the export directory when path is empty. It returns the written path.
func (s *Service) Export(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := s.watchlist.Symbols()
	records, err := s.records(ctx, symbols)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(s.exportDir, export.FileName(symbols))
	}
	if err := export.WriteFile(path, records); err != nil {
		return "", err
	}
	s.log.Info("exported", zap.String("path", path), zap.Int("records", len(records)))
	return path, nil
}

// ExportTo streams CSV for symbols, or the watchlist when none are given.
func (s *Service) ExportTo(ctx context.Context, w io.Writer, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(symbols) == 0 {
		symbols = s.watchlist.Symbols()
	}
	records, err := s.records(ctx, symbols)
	if err != nil {
		return err
	}
	return export.Write(w, records)
}

func (s *Service) records(ctx context.Context, symbols []string) ([]export.Record, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: watchlist is empty", valuation.ErrInvalidInput)
	}
	qs, err := s.quotes.Fetch(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return export.FromQuotes(qs), nil
}

// Invalidate drops the cached quote so the next refresh refetches it.
func (s *Service) Invalidate(symbol string) error {
	sym := provider.NormalizeSymbol(symbol)
	if sym == "" {
		return provider.ErrEmptySymbol
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes.Invalidate(sym)
	return nil
}

func rowFor(q provider.Quote) Row {
	return Row{
		Symbol:    q.Symbol,
		Name:      q.Name,
		Price:     format.Price(q.Price),
		Change24h: format.Percent(q.PercentChange24h),
		Trend:     format.Classify(q.PercentChange24h).Tag(),
		Volume:    format.Volume(q.Volume24h),
		Updated:   format.Timestamp(q.LastUpdated),
	}
}

func placeholderRow(symbol string, err error) Row {
	return Row{
		Symbol:    symbol,
		Price:     format.Placeholder,
		Change24h: format.Placeholder,
		Volume:    format.Placeholder,
		Updated:   format.Placeholder,
		Error:     err.Error(),
	}
}

func listingRows(qs []provider.Quote) []ListingRow {
	out := make([]ListingRow, 0, len(qs))
	for _, q := range qs {
		out = append(out, ListingRow{
			Rank:      q.Rank,
			Symbol:    q.Symbol,
			Name:      q.Name,
			Price:     format.Price(q.Price),
			Change24h: format.Percent(q.PercentChange24h),
			Trend:     format.Classify(q.PercentChange24h).Tag(),
			MarketCap: format.Volume(q.MarketCap),
			Volume:    format.Volume(q.Volume24h),
		})
	}
	return out
}

var changeLabels = map[provider.Window]string{
	provider.Window1h:  "Change 1h",
	provider.Window24h: "Change 24h",
	provider.Window30d: "Change 30d",
	provider.Window60d: "Change 60d",
	provider.Window90d: "Change 90d",
}

func detailFor(q provider.Quote) Detail {
	d := Detail{
		Symbol:      q.Symbol,
		Name:        q.Name,
		Price:       format.Price(q.Price),
		Volume:      format.Volume(q.Volume24h),
		LastUpdated: format.Timestamp(q.LastUpdated),
	}
	for _, w := range provider.DisplayWindows {
		c := q.PercentChange(w)
		d.Changes = append(d.Changes, Metric{
			Label: changeLabels[w],
			Value: format.Percent(c),
			Tag:   format.Classify(c).Tag(),
		})
	}
	d.Supplies = []Metric{
		{Label: "Circulating supply", Value: format.Supply(q.CirculatingSupply)},
		{Label: "Total supply", Value: format.Supply(q.TotalSupply)},
		{Label: "Max supply", Value: format.Supply(q.MaxSupply)},
	}
	return d
}

