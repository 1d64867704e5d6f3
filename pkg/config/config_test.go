package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_CreatesDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CRAWLER_BASE_URL", "")
	t.Setenv("CRAWLER_API_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Crawler.BaseURL != "http://localhost:8000" || cfg.PollInterval() != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg.Crawler)
	}
	if cfg.Defaults.MaxReviews != 100 || cfg.Defaults.Format != "excel" {
		t.Fatalf("unexpected job defaults: %+v", cfg.Defaults)
	}

	path := filepath.Join(home, ".config", "review-crawler", "config.toml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
}

func TestLoad_MergesMissingValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CRAWLER_BASE_URL", "")
	t.Setenv("CRAWLER_API_PORT", "")

	dir := filepath.Join(home, ".config", "review-crawler")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	partial := "[crawler]\nbase_url = \"http://crawler.internal:9000\"\n\n[defaults]\nformat = \"csv\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Crawler.BaseURL != "http://crawler.internal:9000" || cfg.Defaults.Format != "csv" {
		t.Fatalf("file values not kept: %+v %+v", cfg.Crawler, cfg.Defaults)
	}
	if cfg.Crawler.PollIntervalMS != 2000 || cfg.Timeout() != 30*time.Second || cfg.API.Port != 8000 {
		t.Fatalf("defaults not merged: %+v %+v", cfg.Crawler, cfg.API)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRAWLER_BASE_URL", "http://env-host:8000")
	t.Setenv("CRAWLER_API_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Crawler.BaseURL != "http://env-host:8000" || cfg.API.Port != 9100 {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Crawler, cfg.API)
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRAWLER_BASE_URL", "")
	t.Setenv("CRAWLER_API_PORT", "")

	cfg := DefaultConfig()
	if err := cfg.Set("crawler.download_dir", "/tmp/reviews"); err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Crawler.DownloadDir != "/tmp/reviews" {
		t.Fatalf("unexpected download dir %q", loaded.Crawler.DownloadDir)
	}
}

func TestSet(t *testing.T) {
	cases := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"crawler.base_url", "http://x", false},
		{"crawler.poll_interval_ms", "500", false},
		{"crawler.poll_interval_ms", "0", true},
		{"crawler.request_timeout", "abc", true},
		{"defaults.format", "CSV", false},
		{"defaults.format", "pdf", true},
		{"api.rate_limit_rps", "2.5", false},
		{"api.allowed_origins", "http://a, http://b", false},
		{"api.sim_page_delay_ms", "0", false},
		{"nope.key", "1", true},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		err := cfg.Set(tc.key, tc.value)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tc.key, tc.value, err, tc.wantErr)
		}
	}

	cfg := DefaultConfig()
	_ = cfg.Set("api.allowed_origins", "http://a, http://b")
	if len(cfg.API.AllowedOrigins) != 2 || cfg.API.AllowedOrigins[1] != "http://b" {
		t.Fatalf("unexpected origins %v", cfg.API.AllowedOrigins)
	}
	_ = cfg.Set("defaults.format", "CSV")
	if cfg.Defaults.Format != "csv" {
		t.Fatalf("expected lowercased format, got %q", cfg.Defaults.Format)
	}
}
