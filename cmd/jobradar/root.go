package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/adapter"
	"github.com/amishk599/jobradar/internal/config"
	"github.com/amishk599/jobradar/internal/engine"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/notifier"
	"github.com/amishk599/jobradar/internal/ratelimit"
	"github.com/amishk599/jobradar/internal/retry"
	"github.com/amishk599/jobradar/internal/secrets"
	"github.com/amishk599/jobradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job radar: new postings, reported once",
	Long:  "jobradar polls job boards, feeds and career pages and reports each new posting exactly once.",
	// Default to `start` so that `jobradar` with no args runs the daemon.
	// This keeps systemd unit files that invoke the binary directly working.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// setupNotifier builds one notifier per configured type. The returned close
// func releases producer connections and is always safe to call.
func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, func(), error) {
	var (
		multi   notifier.Multi
		closers []func() error
	)
	for _, t := range cfg.Notification.Types {
		switch t {
		case notifier.TypeLog:
			multi = append(multi, notifier.NewLogNotifier(logger))
		case notifier.TypeSlack:
			logger.Info("using slack notifier")
			multi = append(multi, notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger))
		case notifier.TypeEmail:
			en, err := setupEmail(cfg.Notification.Email, logger)
			if err != nil {
				return nil, func() {}, err
			}
			logger.Info("using email notifier", "host", cfg.Notification.Email.Host, "to", len(cfg.Notification.Email.To))
			multi = append(multi, en)
		case notifier.TypeDesktop:
			logger.Info("using desktop notifier")
			multi = append(multi, notifier.NewDesktopNotifier(logger))
		case notifier.TypeKafka:
			logger.Info("using kafka notifier", "topic", cfg.Notification.Kafka.Topic)
			kn := notifier.NewKafkaNotifier(cfg.Notification.Kafka.Brokers, cfg.Notification.Kafka.Topic, logger)
			multi = append(multi, kn)
			closers = append(closers, kn.Close)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("closing notifier", "error", err)
			}
		}
	}
	if len(multi) == 1 {
		return multi[0], closeAll, nil
	}
	return multi, closeAll, nil
}

func setupEmail(ec config.EmailConfig, logger *slog.Logger) (*notifier.EmailNotifier, error) {
	password := ec.Password
	if password == "" && ec.Username != "" {
		pw, err := secrets.GetSMTPPassword(secrets.SMTPKeyringAccount(ec.Username, ec.Host))
		if err != nil {
			return nil, fmt.Errorf("smtp password for %s: %w", ec.Username, err)
		}
		password = pw
	}
	return notifier.NewEmailNotifier(notifier.EmailConfig{
		Host:     ec.Host,
		Port:     ec.Port,
		Username: ec.Username,
		Password: password,
		From:     ec.From,
		To:       ec.To,
	}, logger)
}

// newLimiter builds the per-kind limiter shared by every source.
func newLimiter(cfg *config.Config) *ratelimit.KindLimiter {
	overrides := make(map[string]ratelimit.Limits, len(cfg.RateLimit.Overrides))
	for kind, l := range cfg.RateLimit.Overrides {
		overrides[kind] = ratelimit.Limits{PerSecond: l.PerSecond, Burst: l.Burst}
	}
	return ratelimit.NewKindLimiter(
		ratelimit.Limits{PerSecond: cfg.RateLimit.PerSecond, Burst: cfg.RateLimit.Burst},
		overrides,
	)
}

// createFetcher builds the adapter for desc, wrapped with retries and
// per-kind rate limiting.
func createFetcher(cfg *config.Config, desc model.SourceDescriptor, httpClient *http.Client, limiter *ratelimit.KindLimiter, logger *slog.Logger) (model.Fetcher, error) {
	f, err := adapter.New(desc, httpClient)
	if err != nil {
		return nil, err
	}
	// Rate limiting sits inside the retry loop so every attempt takes a token.
	limited := ratelimit.NewFetcher(f, limiter, desc.Kind)
	return retry.New(limited, desc.Name, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger), nil
}

func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ([]engine.Source, error) {
	limiter := newLimiter(cfg)

	var sources []engine.Source
	for _, desc := range cfg.EnabledSources() {
		f, err := createFetcher(cfg, desc, httpClient, limiter, logger)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", desc.Name, err)
		}
		sources = append(sources, engine.Source{Descriptor: desc, Fetcher: f})
		logger.Info("registered source", "name", desc.Name, "kind", desc.Kind)
	}
	if len(sources) == 0 {
		return nil, errors.New("no sources to poll")
	}
	return sources, nil
}

// openStore opens and loads the configured seen store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.SeenStore, error) {
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening seen store: %w", err)
	}
	if err := engine.LoadSeen(ctx, st, logger); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// openStoreReadOnly opens the seen store for commands that only inspect it.
// It works while the daemon holds the store and never modifies the file.
func openStoreReadOnly(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.SeenStore, error) {
	st, err := store.OpenReadOnly(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening seen store: %w", err)
	}
	if err := engine.LoadSeen(ctx, st, logger); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
