package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/engine"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the polling daemon",
	Long:  "Start the scheduler daemon; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"interval", cfg.PollingInterval.String(),
		"schedule", cfg.Schedule,
		"sources", len(cfg.EnabledSources()),
		"concurrency", cfg.Concurrency,
		"store", cfg.Store.Driver,
		"notifiers", cfg.Notification.Types,
		"title_keywords", len(cfg.Filters.TitleKeywords),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seen, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer seen.Close()

	httpClient := newHTTPClient()
	sources, err := buildSources(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		return err
	}
	n, closeNotifier, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		return err
	}
	defer closeNotifier()

	eng := engine.New(sources, seen,
		filter.NewTitleFilter(cfg.Filters.TitleKeywords, cfg.Filters.TitleExcludeKeywords),
		n,
		engine.Config{Concurrency: cfg.Concurrency, SourceTimeout: cfg.SourceTimeout},
		logger,
	)

	sched, err := scheduler.New(eng, cfg.Schedule, cfg.PollingInterval, logger)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn("sd_notify failed", "error", err)
	} else if ok {
		logger.Debug("notified systemd: ready")
	}

	err = sched.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
