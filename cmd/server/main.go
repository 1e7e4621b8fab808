package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptoanalyzer/internal/app"
	"cryptoanalyzer/internal/config"
	"cryptoanalyzer/internal/credentials"
	"cryptoanalyzer/internal/dashboard"
	"cryptoanalyzer/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	key, err := app.APIKey(cfg, credentials.Keyring{}, credentials.LinePrompter{In: os.Stdin, Out: os.Stderr}, log)
	if err != nil {
		log.Fatal("api key", zap.Error(err))
	}
	a, err := app.New(cfg, key, log)
	if err != nil {
		log.Fatal("startup", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands := make(chan string, 16)
	h := newHub(log.Named("ws"), commands)
	loop := dashboard.NewLoop(a.Service, h, cfg.RefreshInterval(), log.Named("loop"))
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx, commands); err != nil {
			log.Error("loop", zap.Error(err))
		}
	}()

	s := &server{
		svc:      a.Service,
		hub:      h,
		log:      log.Named("http"),
		timeout:  cfg.RequestTimeout(),
		commands: commands,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	h.Close()
	<-loopDone
	log.Info("server stopped")
}
