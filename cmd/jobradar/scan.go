package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/engine"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/store"
)

var (
	scanDryRun bool
	scanSeed   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan cycle and exit",
	Long: `Runs a single scan cycle over every enabled source, notifies about new
postings and records them as seen.

--dry-run reports what is new without touching the seen store.
--seed records everything currently listed as seen without notifying,
so a fresh install does not report the whole backlog.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "print new postings, do not mark them as seen")
	scanCmd.Flags().BoolVar(&scanSeed, "seed", false, "mark everything currently listed as seen without notifying")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanDryRun && scanSeed {
		return errors.New("--dry-run and --seed are mutually exclusive")
	}
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var seen model.SeenStore
	if scanDryRun {
		logger.Info("dry-run mode: no postings will be marked as seen")
		seen = store.NewNopStore()
	} else {
		seen, err = openStore(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			return err
		}
	}
	defer seen.Close()

	httpClient := newHTTPClient()
	sources, err := buildSources(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		return err
	}

	var n model.Notifier
	if !scanSeed {
		notif, closeNotifier, err := setupNotifier(cfg, httpClient, logger)
		if err != nil {
			logger.Error("failed to set up notifier", "error", err)
			return err
		}
		defer closeNotifier()
		n = notif
	}

	eng := engine.New(sources, seen,
		filter.NewTitleFilter(cfg.Filters.TitleKeywords, cfg.Filters.TitleExcludeKeywords),
		n,
		engine.Config{Concurrency: cfg.Concurrency, SourceTimeout: cfg.SourceTimeout},
		logger,
	)

	var res *engine.Result
	if scanSeed {
		res, err = eng.RunCycle(ctx)
	} else {
		res, err = eng.Scan(ctx)
	}
	if res != nil {
		printSummary(os.Stdout, res, scanSeed)
	}
	return err
}

func printSummary(w io.Writer, res *engine.Result, seeded bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tKIND\tFETCHED\tNEW\tFILTERED\tDROPPED\tSTATUS")
	for _, st := range res.Statuses {
		status := "ok"
		if !st.OK() {
			status = st.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			st.Source, st.Kind, st.Fetched, st.New, st.Filtered, st.Dropped, status)
	}
	tw.Flush()

	verb := "new"
	if seeded {
		verb = "seeded as seen"
	}
	fmt.Fprintf(w, "\n%d postings %s across %d sources (%d failed) in %s\n",
		len(res.New), verb, len(res.Statuses), len(res.Failed()), res.Duration.Round(time.Millisecond))

	if seeded {
		return
	}
	for _, p := range res.New {
		fmt.Fprintf(w, "  %s | %s | %s\n    %s\n", p.Company, p.Title, p.Location, p.URL)
	}
}
