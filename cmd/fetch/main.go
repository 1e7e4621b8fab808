package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptoanalyzer/internal/config"
	"cryptoanalyzer/internal/credentials"
	"cryptoanalyzer/internal/export"
	"cryptoanalyzer/internal/httpx"
	"cryptoanalyzer/internal/logger"
	"cryptoanalyzer/internal/provider"
	"cryptoanalyzer/internal/provider/coinmarketcap"
)

// fetch prints quotes for a set of symbols once, without the cache or the
// refresh loop. Useful for checking a key or scripting an export.
func main() {
	_ = godotenv.Load()

	var symbolsCSV string
	var top bool
	var csvPath string
	var timeout int
	var configPath string

	flag.StringVar(&symbolsCSV, "symbols", getenv("SYMBOLS", "BTC,ETH"), "comma-separated ticker symbols")
	flag.BoolVar(&top, "top", getenvBool("TOP", false), "print the ranked listings instead of symbol quotes")
	flag.StringVar(&csvPath, "csv", getenv("EXPORT_FILE", ""), "also write the quotes to this CSV file")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json or config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	// no prompt: this command must stay scriptable
	key, err := credentials.Resolver{
		Service: cfg.Credentials.Service,
		User:    cfg.Credentials.User,
		Store:   credentials.Keyring{},
		Log:     log,
	}.Resolve(cfg.CoinMarketCap.APIKey)
	if err != nil {
		log.Fatal("api key", zap.Error(err), zap.String("hint", "set CMC_API_KEY or run the analyzer once to store a key"))
	}

	client, err := coinmarketcap.NewClient(key,
		coinmarketcap.WithBaseURL(cfg.CoinMarketCap.BaseURL),
		coinmarketcap.WithHTTPClient(httpx.New(cfg.RequestTimeout())),
	)
	if err != nil {
		log.Fatal("coinmarketcap client", zap.Error(err))
	}
	p := coinmarketcap.New(coinmarketcap.Config{
		Currency:      cfg.CoinMarketCap.Currency,
		ListingsLimit: cfg.CoinMarketCap.ListingsLimit,
		ListingsSort:  cfg.CoinMarketCap.ListingsSort,
	}, client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	var quotes []provider.Quote
	if top {
		quotes, err = p.Listings(ctx)
	} else {
		symbols := splitCSV(symbolsCSV)
		if len(symbols) == 0 {
			log.Fatal("no symbols provided")
		}
		quotes, err = p.Fetch(ctx, symbols)
		if err != nil && len(quotes) > 0 {
			log.Warn("some quotes failed", zap.Error(err))
			err = nil
		}
		if err == nil && len(quotes) < len(symbols) {
			log.Warn("some symbols were not found", zap.Int("requested", len(symbols)), zap.Int("received", len(quotes)))
		}
	}
	if err != nil {
		log.Fatal("fetch", zap.String("provider", p.Name()), zap.Error(err))
	}
	log.Info("fetched", zap.String("provider", p.Name()), zap.Int("quotes", len(quotes)))

	if csvPath != "" {
		if err := export.WriteFile(csvPath, export.FromQuotes(quotes)); err != nil {
			log.Fatal("export", zap.Error(err))
		}
		log.Info("exported", zap.String("path", csvPath))
	}

	out := struct {
		Quotes []provider.Quote `json:"quotes"`
	}{Quotes: quotes}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
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

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 {
			return x
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		}
	}
	return def
}
