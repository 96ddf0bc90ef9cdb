package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"cryptodash/internal/alert"
	"cryptodash/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Binance struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"binance"`
	Market struct {
		Symbol     string `yaml:"symbol"`
		Interval   string `yaml:"interval"`
		PeriodDays int    `yaml:"period_days"`
	} `yaml:"market"`
	Refresh struct {
		// SingleShot disables auto-refresh: run one successful
		// cycle and exit.
		SingleShot     bool `yaml:"single_shot"`
		EverySeconds   int  `yaml:"every_seconds"`
		BackoffSeconds int  `yaml:"backoff_seconds"`
	} `yaml:"refresh"`
	Alert model.AlertConfig `yaml:"alert"`
	SMTP  alert.SMTPConfig  `yaml:"smtp"`
	// Reference maps symbol to static supply data for market-cap
	// derivation.
	Reference map[string]model.SupplyInfo `yaml:"reference"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Digest struct {
		Cron      string `yaml:"cron"`
		Recipient string `yaml:"recipient"`
	} `yaml:"digest"`
	Proxy   string `yaml:"proxy"`
	LogFile string `yaml:"log_file"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Binance.BaseURL = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Binance.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Market.Symbol = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.SMTP.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		cfg.SMTP.Sender = v
	}
	if v := os.Getenv("SENDER_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("ALERT_EMAIL"); v != "" {
		cfg.Alert.Email = v
	}
	if v := os.Getenv("ALERT_PRICE"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Alert.TargetPrice = price
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Market.Symbol == "" {
		cfg.Market.Symbol = "BTCUSDT"
	}
	if cfg.Market.Interval == "" {
		cfg.Market.Interval = "15m"
	}
	if cfg.Market.PeriodDays == 0 {
		cfg.Market.PeriodDays = 30
	}
	if cfg.Refresh.EverySeconds == 0 {
		cfg.Refresh.EverySeconds = 60
	}
	if cfg.Refresh.BackoffSeconds == 0 {
		cfg.Refresh.BackoffSeconds = 5
	}
	if cfg.SMTP.Server == "" {
		cfg.SMTP.Server = "smtp.gmail.com"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Reference == nil {
		cfg.Reference = map[string]model.SupplyInfo{}
	}
	if _, ok := cfg.Reference["BTCUSDT"]; !ok {
		cfg.Reference["BTCUSDT"] = model.SupplyInfo{
			MaxSupply:         21_000_000,
			CirculationSupply: 19_801_356,
		}
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if _, err := model.ParseInterval(c.Market.Interval); err != nil {
		return fmt.Errorf("market.interval: %w", err)
	}
	if c.Market.PeriodDays <= 0 {
		return fmt.Errorf("market.period_days must be positive")
	}
	if c.Refresh.BackoffSeconds >= c.Refresh.EverySeconds {
		return fmt.Errorf("refresh.backoff_seconds must be shorter than refresh.every_seconds")
	}
	if c.Alert.Enabled() && c.SMTP.Sender == "" {
		return fmt.Errorf("smtp.sender is required when alerts are enabled")
	}
	if c.Digest.Cron != "" && c.Digest.Recipient == "" {
		return fmt.Errorf("digest.recipient is required when digest.cron is set")
	}
	return nil
}

// RefreshEvery returns the refresh period as a duration.
func (c *Config) RefreshEvery() time.Duration {
	return time.Duration(c.Refresh.EverySeconds) * time.Second
}

// Backoff returns the failure backoff as a duration.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.Refresh.BackoffSeconds) * time.Second
}
