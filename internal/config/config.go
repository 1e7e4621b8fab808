package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type CoinMarketCap struct {
	APIKey        string `json:"api_key" yaml:"api_key"`
	BaseURL       string `json:"base_url" yaml:"base_url"`
	Currency      string `json:"currency" yaml:"currency"`
	ListingsLimit int    `json:"listings_limit" yaml:"listings_limit"`
	ListingsSort  string `json:"listings_sort" yaml:"listings_sort"`
}

type Cache struct {
	TTLSeconds int `json:"ttl_sec" yaml:"ttl_sec"`
	MaxItems   int `json:"max_items" yaml:"max_items"`
}

type Dashboard struct {
	RefreshIntervalSec int      `json:"refresh_interval_sec" yaml:"refresh_interval_sec"`
	Watchlist          []string `json:"watchlist" yaml:"watchlist"`
	ExportDir          string   `json:"export_dir" yaml:"export_dir"`
	DefaultSymbol      string   `json:"default_symbol" yaml:"default_symbol"`
}

type Credentials struct {
	Service string `json:"service" yaml:"service"`
	User    string `json:"user" yaml:"user"`
	Prompt  bool   `json:"prompt" yaml:"prompt"`
}

type Logging struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

type Config struct {
	Server        Server        `json:"server" yaml:"server"`
	CoinMarketCap CoinMarketCap `json:"coinmarketcap" yaml:"coinmarketcap"`
	Cache         Cache         `json:"cache" yaml:"cache"`
	Dashboard     Dashboard     `json:"dashboard" yaml:"dashboard"`
	Credentials   Credentials   `json:"credentials" yaml:"credentials"`
	Logging       Logging       `json:"logging" yaml:"logging"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		CoinMarketCap: CoinMarketCap{
			BaseURL:       "https://pro-api.coinmarketcap.com",
			Currency:      "USD",
			ListingsLimit: 50,
			ListingsSort:  "market_cap",
		},
		Cache: Cache{TTLSeconds: 300},
		Dashboard: Dashboard{
			RefreshIntervalSec: 300,
			Watchlist:          []string{"BTC", "ETH"},
			ExportDir:          ".",
			DefaultSymbol:      "BTC",
		},
		Credentials: Credentials{Service: "CryptoAnalyzerApp", User: "api_key", Prompt: true},
		Logging:     Logging{Level: "info", Encoding: "console"},
	}
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Dashboard.RefreshIntervalSec) * time.Second
}

// Load reads config from path. If path is empty, config.json or config.yaml in
// the working directory is used when present; otherwise defaults. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON. Environment
// variables override select fields last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, p := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.RequestTimeoutSec <= 0 {
		errs = append(errs, errors.New("server.request_timeout_sec must be positive"))
	}
	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, errors.New("cache.ttl_sec must be positive"))
	}
	if c.Dashboard.RefreshIntervalSec <= 0 {
		errs = append(errs, errors.New("dashboard.refresh_interval_sec must be positive"))
	}
	if c.CoinMarketCap.ListingsLimit < 0 {
		errs = append(errs, errors.New("coinmarketcap.listings_limit must not be negative"))
	}
	if c.CoinMarketCap.BaseURL == "" {
		errs = append(errs, errors.New("coinmarketcap.base_url is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("CMC_API_KEY"); v != "" {
		cfg.CoinMarketCap.APIKey = v
	}
	if v := os.Getenv("CMC_BASE_URL"); v != "" {
		cfg.CoinMarketCap.BaseURL = v
	}
	if v := os.Getenv("CMC_CURRENCY"); v != "" {
		cfg.CoinMarketCap.Currency = strings.ToUpper(v)
	}
	if x, ok := envInt("CMC_LISTINGS_LIMIT"); ok && x >= 0 {
		cfg.CoinMarketCap.ListingsLimit = x
	}
	if x, ok := envInt("CACHE_TTL_SEC"); ok && x > 0 {
		cfg.Cache.TTLSeconds = x
	}
	if x, ok := envInt("CACHE_MAX_ITEMS"); ok && x >= 0 {
		cfg.Cache.MaxItems = x
	}
	if x, ok := envInt("REFRESH_INTERVAL_SEC"); ok && x > 0 {
		cfg.Dashboard.RefreshIntervalSec = x
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Dashboard.Watchlist = splitCSV(v)
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Dashboard.ExportDir = v
	}
	if v := os.Getenv("CREDENTIALS_PROMPT"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Credentials.Prompt = true
		case "0", "false", "no", "n":
			cfg.Credentials.Prompt = false
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_ENCODING"); v != "" {
		cfg.Logging.Encoding = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return 0, false
	}
	return x, true
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
