package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/browse"
	"github.com/amishk599/jobradar/internal/config"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse postings interactively (TUI)",
	Long:  "Shows the source picker TUI, then a split-pane view of everything the source lists and what is new.",
	RunE:  runBrowseCmd,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	// Browse runs a TUI, and any log output once the alt-screen starts
	// corrupts the display.
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))

	seen, err := openStoreReadOnly(cmd.Context(), cfg, silent)
	if err != nil {
		return err
	}
	defer seen.Close()

	return runBrowse(cfg, seen, silent)
}

func runBrowse(cfg *config.Config, seen model.SeenStore, logger *slog.Logger) error {
	sources := cfg.EnabledSources()
	if len(sources) == 0 {
		fmt.Println("No enabled sources in config.")
		return nil
	}

	httpClient := newHTTPClient()
	limiter := newLimiter(cfg)
	titleFilter := filter.NewTitleFilter(cfg.Filters.TitleKeywords, cfg.Filters.TitleExcludeKeywords)

	for {
		choice, err := browse.RunSourcePicker(sources)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		src := sources[choice]

		fetcher, err := createFetcher(cfg, src, httpClient, limiter, logger)
		if err != nil {
			fmt.Printf("Cannot read %s: %v\n", src.Name, err)
			continue
		}

		snap, err := browse.RunLoader(src.Name, cfg.SourceTimeout, func(ctx context.Context) (browse.Snapshot, error) {
			return browse.Collect(ctx, src, fetcher, seen, titleFilter)
		})
		if errors.Is(err, browse.ErrCancelled) {
			return nil
		}
		if err != nil {
			fmt.Printf("Error fetching postings: %v\n", err)
			continue
		}

		wantQuit, err := browse.Run(snap)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
