// Package watchlist holds the user-curated, ordered set of tracked symbols.
package watchlist

import (
	"errors"

	"cryptoanalyzer/internal/provider"
)

// ErrEmptySymbol is returned when a blank symbol is added.
var ErrEmptySymbol = errors.New("watchlist: empty symbol")

// Watchlist is an insertion-ordered set of upper-case symbols.
// The zero value is an empty watchlist ready to use.
type Watchlist struct {
	symbols []string
	index   map[string]struct{}
}

// New returns a watchlist seeded with symbols; blanks and duplicates are skipped.
func New(symbols ...string) *Watchlist {
	w := &Watchlist{}
	for _, s := range symbols {
		_, _ = w.Add(s)
	}
	return w
}

// Add appends symbol unless it is already present.
func (w *Watchlist) Add(symbol string) (bool, error) {
	sym := provider.NormalizeSymbol(symbol)
	if sym == "" {
		return false, ErrEmptySymbol
	}
	if w.index == nil {
		w.index = make(map[string]struct{})
	}
	if _, ok := w.index[sym]; ok {
		return false, nil
	}
	w.index[sym] = struct{}{}
	w.symbols = append(w.symbols, sym)
	return true, nil
}

// Remove deletes symbol. Removing an absent symbol is a no-op.
func (w *Watchlist) Remove(symbol string) bool {
	sym := provider.NormalizeSymbol(symbol)
	if _, ok := w.index[sym]; !ok {
		return false
	}
	delete(w.index, sym)
	for i, s := range w.symbols {
		if s == sym {
			w.symbols = append(w.symbols[:i], w.symbols[i+1:]...)
			break
		}
	}
	return true
}

func (w *Watchlist) Contains(symbol string) bool {
	_, ok := w.index[provider.NormalizeSymbol(symbol)]
	return ok
}

// Symbols returns a copy in insertion order.
func (w *Watchlist) Symbols() []string {
	out := make([]string, len(w.symbols))
	copy(out, w.symbols)
	return out
}

func (w *Watchlist) Len() int { return len(w.symbols) }
