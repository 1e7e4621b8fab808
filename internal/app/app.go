// Package app wires configuration, credentials and the CoinMarketCap client
// into a dashboard service shared by the entry points.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"cryptoanalyzer/internal/config"
	"cryptoanalyzer/internal/credentials"
	"cryptoanalyzer/internal/dashboard"
	"cryptoanalyzer/internal/httpx"
	"cryptoanalyzer/internal/provider/cache"
	"cryptoanalyzer/internal/provider/coinmarketcap"
	"cryptoanalyzer/internal/watchlist"
)

type App struct {
	Config   config.Config
	Provider *coinmarketcap.Provider
	Cache    *cache.Provider
	Service  *dashboard.Service
}

// APIKey resolves the key from config, then the keyring, then prompt when
// prompting is enabled.
func APIKey(cfg config.Config, store credentials.Store, prompt credentials.Prompter, log *zap.Logger) (string, error) {
	r := credentials.Resolver{
		Service: cfg.Credentials.Service,
		User:    cfg.Credentials.User,
		Store:   store,
		Log:     log,
	}
	if cfg.Credentials.Prompt {
		r.Prompt = prompt
	}
	return r.Resolve(cfg.CoinMarketCap.APIKey)
}

// New builds the provider chain: client, provider, cache, dashboard service.
func New(cfg config.Config, apiKey string, log *zap.Logger, opts ...coinmarketcap.ClientOption) (*App, error) {
	httpClient := httpx.New(cfg.RequestTimeout())

	base := []coinmarketcap.ClientOption{
		coinmarketcap.WithBaseURL(cfg.CoinMarketCap.BaseURL),
		coinmarketcap.WithHTTPClient(httpClient),
		coinmarketcap.WithConvert(cfg.CoinMarketCap.Currency),
	}
	client, err := coinmarketcap.NewClient(apiKey, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("coinmarketcap client: %w", err)
	}

	prov := coinmarketcap.New(coinmarketcap.Config{
		Currency:      cfg.CoinMarketCap.Currency,
		ListingsLimit: cfg.CoinMarketCap.ListingsLimit,
		ListingsSort:  cfg.CoinMarketCap.ListingsSort,
	}, client)

	c := cache.New(prov, cfg.CacheTTL())
	c.MaxItems = cfg.Cache.MaxItems

	svc := dashboard.NewService(dashboard.Options{
		Quotes:    c,
		Listings:  prov,
		Watchlist: watchlist.New(cfg.Dashboard.Watchlist...),
		ExportDir: cfg.Dashboard.ExportDir,
		Log:       log.Named("dashboard"),
	})

	log.Info("dashboard ready",
		zap.String("base_url", cfg.CoinMarketCap.BaseURL),
		zap.Duration("cache_ttl", cfg.CacheTTL()),
		zap.Strings("watchlist", cfg.Dashboard.Watchlist),
	)
	return &App{Config: cfg, Provider: prov, Cache: c, Service: svc}, nil
}
