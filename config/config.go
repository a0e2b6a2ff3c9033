package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCoins is the supported crypto list in display order
var DefaultCoins = []string{"BTC", "USDT", "TRX", "XMR", "DOGE"}

// environment variables that win over the YAML file
const (
	EnvToken         = "SAFEMONEY_BOT_TOKEN"
	EnvWebhookSecret = "SAFEMONEY_WEBHOOK_SECRET"
	EnvWebhookURL    = "SAFEMONEY_WEBHOOK_URL"
	EnvCoinGeckoKey  = "COINGECKO_API_KEY"
)

type Telegram struct {
	Token         string        `yaml:"token"`
	APIEndpoint   string        `yaml:"api_endpoint"` // format with token and method, e.g. https://api.telegram.org/bot%s/%s
	Timeout       time.Duration `yaml:"timeout"`
	WebhookURL    string        `yaml:"webhook_url"`
	WebhookSecret string        `yaml:"webhook_secret"`
}

type Server struct {
	ListenAddress string        `yaml:"listen_address"`
	WebhookPath   string        `yaml:"webhook_path"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

type QuoteProvider struct {
	Type      string        `yaml:"type"`
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Quote struct {
	Fiat     string        `yaml:"fiat"`
	Provider QuoteProvider `yaml:"provider"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Server   Server   `yaml:"server"`
	Quote    Quote    `yaml:"quote"`
	Coins    []string `yaml:"coins"`
	TimeZone string   `yaml:"time_zone"`
	Log      Log      `yaml:"log"`
}

// Load reads the YAML file at path, applies environment overrides and fills defaults.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	c.applyEnv(os.LookupEnv)
	c.setDefaults()
	return &c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Telegram.Token = v
	}
	if v, ok := lookup(EnvWebhookSecret); ok && v != "" {
		c.Telegram.WebhookSecret = v
	}
	if v, ok := lookup(EnvWebhookURL); ok && v != "" {
		c.Telegram.WebhookURL = v
	}
	if v, ok := lookup(EnvCoinGeckoKey); ok && v != "" {
		c.Quote.Provider.APIKey = v
	}
}

func (c *Config) setDefaults() {
	if c.Telegram.APIEndpoint == "" {
		c.Telegram.APIEndpoint = "https://api.telegram.org/bot%s/%s"
	}
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 10 * time.Second
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Server.WebhookPath == "" {
		c.Server.WebhookPath = "/api/telegram"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Quote.Fiat == "" {
		c.Quote.Fiat = "TRY"
	}
	if c.Quote.Provider.Type == "" {
		c.Quote.Provider.Type = "coingecko"
	}
	if c.Quote.Provider.Timeout == 0 {
		c.Quote.Provider.Timeout = 4 * time.Second
	}
	if c.Quote.Provider.UserAgent == "" {
		c.Quote.Provider.UserAgent = "safemoney-bot"
	}
	if len(c.Coins) == 0 {
		c.Coins = append([]string(nil), DefaultCoins...)
	}
	if c.TimeZone == "" {
		c.TimeZone = "Europe/Istanbul"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the settings the bot cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, fmt.Errorf("telegram.token is required (or set %s)", EnvToken))
	}
	if c.Fiat() != "TRY" {
		errs = append(errs, fmt.Errorf("quote.fiat: only TRY is supported, got %q", c.Quote.Fiat))
	}
	if len(c.Coins) == 0 {
		errs = append(errs, errors.New("coins: at least one coin is required"))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("time_zone: %w", err))
	}
	return errors.Join(errs...)
}

// Fiat is the upper-cased reference fiat ticker
func (c *Config) Fiat() string {
	return strings.ToUpper(strings.TrimSpace(c.Quote.Fiat))
}

// Location loads the time zone timestamps are shown in
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}
