package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"cian_bot/internal/config"
	"cian_bot/internal/fetcher"
	"cian_bot/internal/notify"
	"cian_bot/internal/poller"
	"cian_bot/internal/session"
	"cian_bot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	st, err := openStore(cfg, log)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	notifier, err := notify.New(cfg.TelegramBotToken, log)
	if err != nil {
		log.Error("create notifier", "error", err)
		os.Exit(1)
	}

	headers := requestHeaders(cfg)
	sessions := session.NewManager(http.DefaultClient, cfg.BaseURL, headers, cfg.MaxRetries, cfg.RetryDelay, log)
	f := fetcher.New(http.DefaultClient, sessions, cfg.BaseURL, headers, cfg.Search, cfg.MaxRetries, cfg.RetryDelay, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := sessions.Refresh(ctx); err != nil {
		log.Error("establish initial session", "error", err)
		os.Exit(1)
	}

	log.Info("starting watcher", "recipients", len(cfg.Recipients), "store", cfg.StoreBackend)

	p := poller.New(f, st, notifier, cfg.Recipients, cfg.RetryDelay, log)
	if err := p.Run(ctx); err != nil {
		log.Error("polling loop failed", "error", err)
		os.Exit(1)
	}

	log.Info("watcher stopped")
}

func openStore(cfg *config.Config, log *slog.Logger) (store.Store, error) {
	path := cfg.KnownOffersPath
	if cfg.StoreBackend == config.BackendSQLite {
		path = cfg.DatabasePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			return nil, err
		}
	}

	if cfg.StoreBackend == config.BackendSQLite {
		st, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			log.Error("open database", "path", cfg.DatabasePath, "error", err)
			return nil, err
		}
		return st, nil
	}

	st, err := store.OpenJSONFile(cfg.KnownOffersPath)
	if err != nil {
		log.Error("open known-offer file", "path", cfg.KnownOffersPath, "error", err)
		return nil, err
	}
	return st, nil
}

func requestHeaders(cfg *config.Config) http.Header {
	h := http.Header{}
	h.Set("User-Agent", cfg.UserAgent)
	h.Set("Accept", "*/*")
	h.Set("Origin", "https://www.cian.ru")
	h.Set("Content-Type", "text/plain;charset=UTF-8")
	return h
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
