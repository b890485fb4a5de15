package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/normalize"
	"github.com/amishk599/jobradar/internal/notifier"
	"github.com/amishk599/jobradar/internal/store"
)

const (
	defaultPollingInterval = 2 * time.Minute
	defaultConcurrency     = 8
	defaultSourceTimeout   = 12 * time.Second
	defaultStorePath       = "data/seen.jsonl"
	defaultMaxRetries      = 2
	defaultBaseDelay       = time.Second
	defaultSMTPPort        = 587
	slackWebhookPrefix     = "https://hooks.slack.com/"
)

// Config is the root configuration for jobradar.
type Config struct {
	PollingInterval time.Duration
	Schedule        string // cron expression; overrides PollingInterval when set
	Concurrency     int
	SourceTimeout   time.Duration
	Store           StoreConfig
	Retry           RetryConfig
	RateLimit       RateLimitConfig
	Filters         FilterConfig
	Notification    NotificationConfig
	Sources         []SourceConfig
}

// StoreConfig selects the seen-set backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "file" or "sqlite"
	Path   string `yaml:"path"`
}

// RetryConfig controls the retry decorator around every adapter.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls per-kind request throttling. Zero PerSecond
// disables throttling.
type RateLimitConfig struct {
	PerSecond float64              `yaml:"per_second"`
	Burst     int                  `yaml:"burst"`
	Overrides map[string]RateLimit `yaml:"overrides"` // keyed by source kind
}

// RateLimit is one token-bucket setting.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// FilterConfig holds the optional title keyword filter.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
}

// NotificationConfig lists the enabled notifiers and their settings.
type NotificationConfig struct {
	Types      []string    `yaml:"types"`
	Type       string      `yaml:"type"` // single-notifier shorthand, merged into Types
	WebhookURL string      `yaml:"webhook_url"`
	Email      EmailConfig `yaml:"email"`
	Kafka      KafkaConfig `yaml:"kafka"`
}

// Has reports whether notifier type t is enabled.
func (n NotificationConfig) Has(t string) bool {
	return slices.Contains(n.Types, t)
}

// EmailConfig holds SMTP settings. An empty Password is looked up in the
// environment or OS keyring at startup.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// KafkaConfig holds producer settings for the kafka notifier.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SourceConfig describes a single source to poll.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Kind      string            `yaml:"kind"`
	Endpoint  string            `yaml:"endpoint"`
	Company   string            `yaml:"company"`
	Query     string            `yaml:"query"`
	ItemsPath string            `yaml:"items_path"`
	Selector  string            `yaml:"selector"`
	Headers   map[string]string `yaml:"headers"`
	Fields    map[string]string `yaml:"fields"`
	Enabled   *bool             `yaml:"enabled"` // defaults to true
}

// IsEnabled reports whether the source should be polled.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Descriptor converts the source into the form the engine and adapters use.
func (s SourceConfig) Descriptor() model.SourceDescriptor {
	return model.SourceDescriptor{
		Name:        s.Name,
		Kind:        s.Kind,
		Endpoint:    s.Endpoint,
		Company:     s.Company,
		Credentials: s.Headers,
		Fields:      s.Fields,
		ItemsPath:   s.ItemsPath,
		Selector:    s.Selector,
		Query:       s.Query,
		Enabled:     s.IsEnabled(),
	}
}

// EnabledSources returns the descriptors of enabled sources in file order.
func (c *Config) EnabledSources() []model.SourceDescriptor {
	var out []model.SourceDescriptor
	for _, s := range c.Sources {
		if s.IsEnabled() {
			out = append(out, s.Descriptor())
		}
	}
	return out
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	PollingInterval string             `yaml:"polling_interval"`
	Schedule        string             `yaml:"schedule"`
	Concurrency     int                `yaml:"concurrency"`
	SourceTimeout   string             `yaml:"source_timeout"`
	Store           StoreConfig        `yaml:"store"`
	Retry           rawRetryConfig     `yaml:"retry"`
	RateLimit       RateLimitConfig    `yaml:"rate_limit"`
	Filters         FilterConfig       `yaml:"filters"`
	Notification    NotificationConfig `yaml:"notification"`
	Sources         []SourceConfig     `yaml:"sources"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// Load reads the .env file next to the config (if any), then parses and
// validates the YAML config file at path. ${VAR} references in the file are
// expanded from the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(filepath.Dir(path), ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Schedule:     strings.TrimSpace(raw.Schedule),
		Concurrency:  raw.Concurrency,
		Store:        raw.Store,
		RateLimit:    raw.RateLimit,
		Filters:      raw.Filters,
		Notification: raw.Notification,
		Sources:      raw.Sources,
	}

	if cfg.PollingInterval, err = parseDuration("polling_interval", raw.PollingInterval, defaultPollingInterval); err != nil {
		return nil, err
	}
	if cfg.SourceTimeout, err = parseDuration("source_timeout", raw.SourceTimeout, defaultSourceTimeout); err != nil {
		return nil, err
	}
	if cfg.Retry.BaseDelay, err = parseDuration("retry.base_delay", raw.Retry.BaseDelay, defaultBaseDelay); err != nil {
		return nil, err
	}
	cfg.Retry.MaxRetries = defaultMaxRetries
	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, value, err)
	}
	return d, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = store.DriverFile
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}

	n := &cfg.Notification
	if n.Type != "" && !n.Has(n.Type) {
		n.Types = append(n.Types, n.Type)
	}
	if len(n.Types) == 0 {
		n.Types = []string{notifier.TypeLog}
	}
	if n.Email.Port == 0 {
		n.Email.Port = defaultSMTPPort
	}

	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		s.Endpoint = strings.TrimSpace(s.Endpoint)
		if s.Name == "" && s.Endpoint != "" && !isURLKind(s.Kind) {
			s.Name = s.Kind + ":" + s.Endpoint
		}
	}
}

// isURLKind reports whether sources of kind are configured with a full URL
// rather than a board token or company slug.
func isURLKind(kind string) bool {
	switch kind {
	case model.KindWorkday, model.KindRSS, model.KindJSON, model.KindHTML:
		return true
	}
	return false
}

var fieldNames = []string{
	normalize.FieldID, normalize.FieldTitle, normalize.FieldURL,
	normalize.FieldCompany, normalize.FieldLocation, normalize.FieldPublished,
}

func validate(cfg *Config) error {
	if cfg.Schedule == "" && cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.SourceTimeout <= 0 {
		return fmt.Errorf("source_timeout must be positive, got %v", cfg.SourceTimeout)
	}
	if cfg.Store.Driver != store.DriverFile && cfg.Store.Driver != store.DriverSQLite {
		return fmt.Errorf("store.driver must be %q or %q, got %q", store.DriverFile, store.DriverSQLite, cfg.Store.Driver)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.RateLimit.PerSecond < 0 {
		return fmt.Errorf("rate_limit.per_second must not be negative")
	}
	for kind, rl := range cfg.RateLimit.Overrides {
		if !slices.Contains(model.Kinds, kind) {
			return fmt.Errorf("rate_limit.overrides: unknown kind %q", kind)
		}
		if rl.PerSecond < 0 {
			return fmt.Errorf("rate_limit.overrides[%q].per_second must not be negative", kind)
		}
	}

	if err := validateSources(cfg.Sources); err != nil {
		return err
	}
	return validateNotification(cfg.Notification)
}

func validateSources(sources []SourceConfig) error {
	names := make(map[string]bool)
	enabled := 0
	for i, s := range sources {
		if !slices.Contains(model.Kinds, s.Kind) {
			return fmt.Errorf("sources[%d]: unknown kind %q (want one of %s)", i, s.Kind, strings.Join(model.Kinds, ", "))
		}
		if s.Endpoint == "" {
			return fmt.Errorf("sources[%d] (%s): endpoint is required", i, s.Kind)
		}
		if s.Name == "" {
			return fmt.Errorf("sources[%d] (%s): name is required", i, s.Kind)
		}
		if names[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, s.Name)
		}
		names[s.Name] = true

		if isURLKind(s.Kind) {
			u, err := url.Parse(s.Endpoint)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("source %q: endpoint must be an http(s) URL, got %q", s.Name, s.Endpoint)
			}
		}
		for field := range s.Fields {
			if !slices.Contains(fieldNames, field) {
				return fmt.Errorf("source %q: unknown field override %q (want one of %s)", s.Name, field, strings.Join(fieldNames, ", "))
			}
		}
		if s.IsEnabled() {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	return nil
}

func validateNotification(n NotificationConfig) error {
	for _, t := range n.Types {
		if !slices.Contains(notifier.Types, t) {
			return fmt.Errorf("notification.types: unknown type %q (want one of %s)", t, strings.Join(notifier.Types, ", "))
		}
	}

	if n.Has(notifier.TypeSlack) {
		if n.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when slack is enabled")
		}
		if !strings.HasPrefix(n.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	}
	if n.Has(notifier.TypeEmail) {
		if n.Email.Host == "" || n.Email.From == "" || len(n.Email.To) == 0 {
			return fmt.Errorf("notification.email requires host, from and to when email is enabled")
		}
	}
	if n.Has(notifier.TypeKafka) {
		if len(n.Kafka.Brokers) == 0 || n.Kafka.Topic == "" {
			return fmt.Errorf("notification.kafka requires brokers and topic when kafka is enabled")
		}
	}
	return nil
}
