package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("RECIPIENTS", "100:Mr mouse,200:Mrs tiger")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TelegramBotToken != "test-token" {
		t.Errorf("token = %q", cfg.TelegramBotToken)
	}
	wantRecipients := map[int64]string{100: "Mr mouse", 200: "Mrs tiger"}
	if diff := cmp.Diff(wantRecipients, cfg.Recipients); diff != "" {
		t.Errorf("recipients mismatch (-want +got):\n%s", diff)
	}
	if cfg.BaseURL != "https://api.cian.ru/" {
		t.Errorf("base URL = %q", cfg.BaseURL)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("max retries = %d, want 7", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 5*time.Second {
		t.Errorf("retry delay = %v, want 5s", cfg.RetryDelay)
	}
	if cfg.StoreBackend != BackendJSON {
		t.Errorf("store backend = %q, want json", cfg.StoreBackend)
	}
	wantSearch := SearchConfig{Rooms: []int{1, 2}, MaxPrice: 110000, MaxFootMinutes: 20, MetroID: 338}
	if diff := cmp.Diff(wantSearch, cfg.Search); diff != "" {
		t.Errorf("search config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SEARCH_ROOMS", "3")
	t.Setenv("SEARCH_MAX_PRICE", "90000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 250*time.Millisecond {
		t.Errorf("retry delay = %v, want 250ms", cfg.RetryDelay)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("store backend = %q, want sqlite", cfg.StoreBackend)
	}
	if diff := cmp.Diff([]int{3}, cfg.Search.Rooms); diff != "" {
		t.Errorf("rooms mismatch (-want +got):\n%s", diff)
	}
	if cfg.Search.MaxPrice != 90000 {
		t.Errorf("max price = %d, want 90000", cfg.Search.MaxPrice)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"RECIPIENTS": "100:A"},
		},
		{
			name: "missing recipients",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "tok"},
		},
		{
			name: "unknown store backend",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"RECIPIENTS":         "100:A",
				"STORE_BACKEND":      "postgres",
			},
		},
		{
			name: "zero retries",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"RECIPIENTS":         "100:A",
				"MAX_RETRIES":        "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
