package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// Crawler backend as seen from the CLI
	Crawler struct {
		BaseURL        string `toml:"base_url"`
		PollIntervalMS int    `toml:"poll_interval_ms"`
		RequestTimeout int    `toml:"request_timeout"` // seconds
		DownloadDir    string `toml:"download_dir"`
	} `toml:"crawler"`

	// Defaults for new jobs
	Defaults struct {
		MaxReviews int    `toml:"max_reviews"`
		Format     string `toml:"format"`
	} `toml:"defaults"`

	// API (development backend)
	API struct {
		Port           int      `toml:"port"`
		Host           string   `toml:"host"`
		RateLimitRPS   float64  `toml:"rate_limit_rps"`
		RateLimitBurst int      `toml:"rate_limit_burst"`
		AllowedOrigins []string `toml:"allowed_origins"`
		SimPageDelayMS int      `toml:"sim_page_delay_ms"`
		OutputDir      string   `toml:"output_dir"`
	} `toml:"api"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Crawler.BaseURL = "http://localhost:8000"
	cfg.Crawler.PollIntervalMS = 2000
	cfg.Crawler.RequestTimeout = 30
	cfg.Crawler.DownloadDir = "."
	cfg.Defaults.MaxReviews = 100
	cfg.Defaults.Format = "excel"
	cfg.API.Port = 8000
	cfg.API.Host = "0.0.0.0"
	cfg.API.RateLimitRPS = 10
	cfg.API.RateLimitBurst = 20
	cfg.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.API.SimPageDelayMS = 300
	cfg.API.OutputDir = "output"
	return cfg
}

// PollInterval returns the status cadence as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Crawler.PollIntervalMS) * time.Millisecond
}

// Timeout returns the per-call request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Crawler.RequestTimeout) * time.Second
}

// SimPageDelay returns the simulated per-page collection delay
func (c *Config) SimPageDelay() time.Duration {
	return time.Duration(c.API.SimPageDelayMS) * time.Millisecond
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", "review-crawler")
	return filepath.Join(configDir, "config.toml"), nil
}

// Load reads configuration from ~/.config/review-crawler/config.toml
// Creates the file with defaults if it doesn't exist
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		applyEnv(cfg)
		return cfg, nil
	}

	// Read existing config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

// mergeDefaults fills any missing values from DefaultConfig
func mergeDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Crawler.BaseURL == "" {
		cfg.Crawler.BaseURL = def.Crawler.BaseURL
	}
	if cfg.Crawler.PollIntervalMS <= 0 {
		cfg.Crawler.PollIntervalMS = def.Crawler.PollIntervalMS
	}
	if cfg.Crawler.RequestTimeout <= 0 {
		cfg.Crawler.RequestTimeout = def.Crawler.RequestTimeout
	}
	if cfg.Crawler.DownloadDir == "" {
		cfg.Crawler.DownloadDir = def.Crawler.DownloadDir
	}
	if cfg.Defaults.MaxReviews == 0 {
		cfg.Defaults.MaxReviews = def.Defaults.MaxReviews
	}
	if cfg.Defaults.Format == "" {
		cfg.Defaults.Format = def.Defaults.Format
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = def.API.Port
	}
	if cfg.API.Host == "" {
		cfg.API.Host = def.API.Host
	}
	if cfg.API.RateLimitRPS <= 0 {
		cfg.API.RateLimitRPS = def.API.RateLimitRPS
	}
	if cfg.API.RateLimitBurst <= 0 {
		cfg.API.RateLimitBurst = def.API.RateLimitBurst
	}
	if cfg.API.AllowedOrigins == nil {
		cfg.API.AllowedOrigins = def.API.AllowedOrigins
	}
	if cfg.API.SimPageDelayMS < 0 {
		cfg.API.SimPageDelayMS = def.API.SimPageDelayMS
	}
	if cfg.API.OutputDir == "" {
		cfg.API.OutputDir = def.API.OutputDir
	}
}

// Override with environment variables if set (useful for Docker)
func applyEnv(cfg *Config) {
	if baseURL := os.Getenv("CRAWLER_BASE_URL"); baseURL != "" {
		cfg.Crawler.BaseURL = baseURL
	}
	if port := os.Getenv("CRAWLER_API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.API.Port = p
		}
	}
}

// Save writes the configuration to the config file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to TOML
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set updates a single key given as "section.key" and validates the value
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "crawler.base_url":
		c.Crawler.BaseURL = value
	case "crawler.poll_interval_ms":
		return setPositiveInt(&c.Crawler.PollIntervalMS, key, value)
	case "crawler.request_timeout":
		return setPositiveInt(&c.Crawler.RequestTimeout, key, value)
	case "crawler.download_dir":
		c.Crawler.DownloadDir = value
	case "defaults.max_reviews":
		return setPositiveInt(&c.Defaults.MaxReviews, key, value)
	case "defaults.format":
		switch strings.ToLower(value) {
		case "excel", "xlsx", "csv":
			c.Defaults.Format = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid value for %s: %q (expected excel or csv)", key, value)
		}
	case "api.host":
		c.API.Host = value
	case "api.port":
		return setPositiveInt(&c.API.Port, key, value)
	case "api.rate_limit_rps":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
		c.API.RateLimitRPS = f
	case "api.rate_limit_burst":
		return setPositiveInt(&c.API.RateLimitBurst, key, value)
	case "api.allowed_origins":
		var origins []string
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.API.AllowedOrigins = origins
	case "api.sim_page_delay_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
		c.API.SimPageDelayMS = n
	case "api.output_dir":
		c.API.OutputDir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setPositiveInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	*dst = n
	return nil
}
