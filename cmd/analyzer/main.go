package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptoanalyzer/internal/app"
	"cryptoanalyzer/internal/config"
	"cryptoanalyzer/internal/credentials"
	"cryptoanalyzer/internal/dashboard"
	"cryptoanalyzer/internal/logger"
)

func main() {
	var configPath string
	var watch string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	flag.StringVar(&watch, "watch", "", "comma-separated symbols replacing the configured watchlist")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	if watch != "" {
		cfg.Dashboard.Watchlist = strings.Split(watch, ",")
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	stdin := bufio.NewReader(os.Stdin)
	key, err := app.APIKey(cfg, credentials.Keyring{}, credentials.LinePrompter{In: stdin, Out: os.Stdout}, log)
	if err != nil {
		log.Fatal("api key", zap.Error(err))
	}

	a, err := app.New(cfg, key, log)
	if err != nil {
		log.Fatal("startup", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := dashboard.NewLoop(a.Service, newTerminal(os.Stdout), cfg.RefreshInterval(), log.Named("loop"))
	if err := loop.Run(ctx, readLines(ctx, stdin, log)); err != nil {
		log.Error("loop", zap.Error(err))
	}
	log.Info("bye")
}

// readLines forwards stdin lines until EOF or ctx is done.
func readLines(ctx context.Context, r *bufio.Reader, log *zap.Logger) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				select {
				case ch <- strings.TrimSpace(line):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Warn("read stdin", zap.Error(err))
				}
				return
			}
		}
	}()
	return ch
}
