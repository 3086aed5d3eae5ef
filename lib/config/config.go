// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/money"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "LEDGER_CLIENT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Adapter names.
const (
	AdapterLoopback  = "loopback"
	AdapterFiveBells = "fivebells"
)

// Config is the complete client configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Ledger configures the ledger adapter.
	Ledger LedgerConfig `yaml:"ledger"`

	// Session configures the interactive session.
	Session SessionConfig `yaml:"session"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Currencies lists the ISO codes shown by the startup banner and
	// the currencies command.
	Currencies []string `yaml:"currencies"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment.
type ConfigOverrides struct {
	Ledger  *LedgerConfig  `yaml:"ledger,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// LedgerConfig configures the ledger adapter.
type LedgerConfig struct {
	// Adapter is "loopback" (in-process ledger) or "fivebells" (remote
	// ledger over HTTP and websocket).
	// Default: loopback
	Adapter string `yaml:"adapter"`

	// URL is the five-bells ledger's base URL.
	URL string `yaml:"url"`

	// Account is the local account name on the ledger, relative to
	// the ledger prefix (e.g., "alice").
	Account string `yaml:"account"`

	// Username and Password authenticate against a five-bells ledger.
	// Username defaults to Account. PasswordFile names a file holding
	// the password instead. With neither set, the password is prompted
	// for when stdin is a terminal.
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"`

	// RequestTimeout bounds every HTTP call to the ledger.
	// Default: 30s
	RequestTimeout string `yaml:"request_timeout"`

	// KeepaliveInterval is the websocket ping interval.
	// Default: 30s
	KeepaliveInterval string `yaml:"keepalive_interval"`

	// MessageFormat is the envelope wire format: "json" or "cbor".
	// Default: json
	MessageFormat string `yaml:"message_format"`

	// Prefix, Currency and Scale describe the loopback ledger. An
	// absent Scale means the currency's ISO 4217 minor-unit digits; 0
	// means whole units only.
	Prefix   string `yaml:"prefix"`
	Currency string `yaml:"currency"`
	Scale    *int   `yaml:"scale"`
}

// SessionConfig configures the interactive session.
type SessionConfig struct {
	// Quit is the token that ends the session.
	// Default: quit
	Quit string `yaml:"quit"`

	// Prompt is written before each line is read. Empty disables it.
	Prompt string `yaml:"prompt"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is auto, text or json. Auto picks text for terminals.
	// Default: auto
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the host:port serving /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// Default returns the base configuration that the file is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Ledger: LedgerConfig{
			Adapter:           AdapterLoopback,
			Account:           "alice",
			RequestTimeout:    "30s",
			KeepaliveInterval: "30s",
			MessageFormat:     "json",
			Prefix:            "example.usd.",
			Currency:          "USD",
		},
		Session: SessionConfig{
			Quit:   "quit",
			Prompt: "> ",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Currencies: []string{"USD", "EUR", "GBP", "JPY"},
	}
}

// Load loads configuration from the file named by LEDGER_CLIENT_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your ledger-client.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if ledger := overrides.Ledger; ledger != nil {
		override(&c.Ledger.Adapter, ledger.Adapter)
		override(&c.Ledger.URL, ledger.URL)
		override(&c.Ledger.Account, ledger.Account)
		override(&c.Ledger.Username, ledger.Username)
		override(&c.Ledger.Password, ledger.Password)
		override(&c.Ledger.PasswordFile, ledger.PasswordFile)
		override(&c.Ledger.RequestTimeout, ledger.RequestTimeout)
		override(&c.Ledger.KeepaliveInterval, ledger.KeepaliveInterval)
		override(&c.Ledger.MessageFormat, ledger.MessageFormat)
		override(&c.Ledger.Prefix, ledger.Prefix)
		override(&c.Ledger.Currency, ledger.Currency)
		if ledger.Scale != nil {
			c.Ledger.Scale = ledger.Scale
		}
	}
	if log := overrides.Log; log != nil {
		override(&c.Log.Level, log.Level)
		override(&c.Log.Format, log.Format)
	}
	if metrics := overrides.Metrics; metrics != nil {
		override(&c.Metrics.Listen, metrics.Listen)
	}
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in the fields
// that commonly carry deployment-specific values.
func (c *Config) expandVariables() {
	c.Ledger.URL = expandVars(c.Ledger.URL, os.Getenv)
	c.Ledger.Account = expandVars(c.Ledger.Account, os.Getenv)
	c.Ledger.Username = expandVars(c.Ledger.Username, os.Getenv)
	c.Ledger.Password = expandVars(c.Ledger.Password, os.Getenv)
	c.Ledger.PasswordFile = expandVars(c.Ledger.PasswordFile, os.Getenv)
	c.Metrics.Listen = expandVars(c.Metrics.Listen, os.Getenv)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, getenv func(string) string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	switch c.Ledger.Adapter {
	case AdapterLoopback:
		if _, err := address.ParsePrefix(c.Ledger.Prefix); err != nil {
			errs = append(errs, fmt.Errorf("ledger.prefix: %w", err))
		} else if _, err := c.Ledger.LoopbackAccount(); err != nil {
			errs = append(errs, fmt.Errorf("ledger.account: %w", err))
		}
		if _, err := money.ParseCurrency(c.Ledger.Currency); err != nil {
			errs = append(errs, fmt.Errorf("ledger.currency: %w", err))
		}
		if c.Ledger.Scale != nil && *c.Ledger.Scale < 0 {
			errs = append(errs, fmt.Errorf("ledger.scale must not be negative"))
		}
	case AdapterFiveBells:
		if c.Ledger.URL == "" {
			errs = append(errs, fmt.Errorf("ledger.url is required for the fivebells adapter"))
		}
		if c.Ledger.Account == "" {
			errs = append(errs, fmt.Errorf("ledger.account is required for the fivebells adapter"))
		}
		if c.Ledger.Password != "" && c.Ledger.PasswordFile != "" {
			errs = append(errs, fmt.Errorf("ledger.password and ledger.password_file are mutually exclusive"))
		}
	default:
		errs = append(errs, fmt.Errorf("ledger.adapter must be one of: %v", []string{AdapterLoopback, AdapterFiveBells}))
	}

	if _, err := parseDuration(c.Ledger.RequestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("ledger.request_timeout: %w", err))
	}
	if _, err := parseDuration(c.Ledger.KeepaliveInterval); err != nil {
		errs = append(errs, fmt.Errorf("ledger.keepalive_interval: %w", err))
	}

	formats := []string{"json", "cbor"}
	if !contains(formats, strings.ToLower(c.Ledger.MessageFormat)) {
		errs = append(errs, fmt.Errorf("ledger.message_format must be one of: %v", formats))
	}

	if strings.TrimSpace(c.Session.Quit) == "" || strings.ContainsAny(c.Session.Quit, " \t") {
		errs = append(errs, fmt.Errorf("session.quit must be a single non-empty word"))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	logFormats := []string{"auto", "text", "json"}
	if !contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	if _, err := money.Describe(c.Currencies); err != nil {
		errs = append(errs, fmt.Errorf("currencies: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Timeout returns the parsed request timeout. Call after Validate.
func (l LedgerConfig) Timeout() time.Duration {
	d, _ := parseDuration(l.RequestTimeout)
	return d
}

// Keepalive returns the parsed keepalive interval. Call after Validate.
func (l LedgerConfig) Keepalive() time.Duration {
	d, _ := parseDuration(l.KeepaliveInterval)
	return d
}

// LoopbackAccount returns the loopback ledger's own account address.
func (l LedgerConfig) LoopbackAccount() (address.Address, error) {
	prefix, err := address.ParsePrefix(l.Prefix)
	if err != nil {
		return address.Address{}, err
	}
	return prefix.Join(l.Account)
}

// SlogLevel converts Level to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q (want debug, info, warn or error)", l.Level)
	}
	return level, nil
}

func parseDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", value)
	}
	return d, nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
