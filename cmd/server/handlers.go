package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptoanalyzer/internal/dashboard"
	"cryptoanalyzer/internal/export"
	"cryptoanalyzer/internal/provider"
	"cryptoanalyzer/internal/valuation"
)

const maxSymbols = 100

type quotesResponse struct {
	Quotes []provider.Quote `json:"quotes"`
}

type topResponse struct {
	Top []dashboard.ListingRow `json:"top"`
}

type watchlistResponse struct {
	Symbols []string `json:"symbols"`
	Changed bool     `json:"changed"`
}

type valueResponse struct {
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	Value    string `json:"value"`
}

type addBody struct {
	Symbol string `json:"symbol"`
}

type server struct {
	svc      *dashboard.Service
	hub      *hub
	log      *zap.Logger
	timeout  time.Duration
	commands chan<- string
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/detail/{symbol}", s.handleDetail)
	mux.HandleFunc("GET /api/top", s.handleTop)
	mux.HandleFunc("GET /api/value", s.handleValue)
	mux.HandleFunc("GET /api/watchlist", s.handleWatchlist)
	mux.HandleFunc("POST /api/watchlist", s.handleAdd)
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleRemove)
	mux.HandleFunc("GET /api/export", s.handleExport)
	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.serveWS)
	}
	return withJSONHeaders(withGzip(recoverPanic(s.log, limitBody(mux))))
}

func (s *server) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Last()
	if snap.RefreshedAt.IsZero() {
		ctx, cancel := s.ctx(r)
		defer cancel()
		snap = s.svc.Refresh(ctx)
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("symbols")
	if strings.TrimSpace(q) == "" {
		http.Error(w, "missing symbols query param", http.StatusBadRequest)
		return
	}
	symbols := splitCSV(q)
	if len(symbols) > maxSymbols {
		http.Error(w, fmt.Sprintf("too many symbols (max %d)", maxSymbols), http.StatusBadRequest)
		return
	}
	ctx, cancel := s.ctx(r)
	defer cancel()
	qs, err := s.svc.Quotes(ctx, symbols)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotesResponse{Quotes: qs})
}

func (s *server) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()
	d, err := s.svc.Detail(ctx, r.PathValue("symbol"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleTop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()
	top, err := s.svc.Top(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topResponse{Top: top})
}

func (s *server) handleValue(w http.ResponseWriter, r *http.Request) {
	sym := provider.NormalizeSymbol(r.URL.Query().Get("symbol"))
	qty := r.URL.Query().Get("qty")
	ctx, cancel := s.ctx(r)
	defer cancel()
	v, err := s.svc.Value(ctx, sym, qty)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Symbol: sym, Quantity: strings.TrimSpace(qty), Value: v})
}

func (s *server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, watchlistResponse{Symbols: s.svc.Watchlist()})
}

func (s *server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var b addBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	added, err := s.svc.AddSymbol(b.Symbol)
	if err != nil {
		s.fail(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		s.nudge()
	}
	writeJSON(w, status, watchlistResponse{Symbols: s.svc.Watchlist(), Changed: added})
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request) {
	removed := s.svc.RemoveSymbol(r.PathValue("symbol"))
	if removed {
		s.nudge()
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Symbols: s.svc.Watchlist(), Changed: removed})
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	symbols := splitCSV(r.URL.Query().Get("symbols"))
	if len(symbols) > maxSymbols {
		http.Error(w, fmt.Sprintf("too many symbols (max %d)", maxSymbols), http.StatusBadRequest)
		return
	}
	ctx, cancel := s.ctx(r)
	defer cancel()

	var buf bytes.Buffer
	if err := s.svc.ExportTo(ctx, &buf, symbols); err != nil {
		s.fail(w, err)
		return
	}
	name := export.FileName(symbols)
	if len(symbols) == 0 {
		name = export.FileName(s.svc.Watchlist())
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// nudge asks the refresh loop to publish a new snapshot. It never blocks.
func (s *server) nudge() {
	if s.commands == nil {
		return
	}
	select {
	case s.commands <- "refresh":
	default:
	}
}

func (s *server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, provider.ErrEmptySymbol), errors.Is(err, valuation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, provider.ErrNetwork), errors.Is(err, provider.ErrParse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
