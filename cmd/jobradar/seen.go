package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	seenLimit     int
	seenOlderThan time.Duration
)

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Inspect or prune the seen store",
}

var seenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded identifiers, newest first",
	RunE:  runSeenList,
}

var seenPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Forget identifiers first seen longer ago than --older-than",
	Long: `Removes old identifiers from the seen store. A pruned posting that is
still listed by its source will be reported again on the next scan.`,
	RunE: runSeenPrune,
}

func init() {
	seenListCmd.Flags().IntVarP(&seenLimit, "limit", "n", 50, "max identifiers to print (0 = all)")
	seenPruneCmd.Flags().DurationVar(&seenOlderThan, "older-than", 90*24*time.Hour, "age threshold")
	seenCmd.AddCommand(seenListCmd, seenPruneCmd)
	rootCmd.AddCommand(seenCmd)
}

func runSeenList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	seen, err := openStoreReadOnly(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer seen.Close()

	type row struct {
		id string
		at time.Time
	}
	entries := seen.Entries()
	rows := make([]row, 0, len(entries))
	for id, at := range entries {
		rows = append(rows, row{id, at})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].at.Equal(rows[j].at) {
			return rows[i].id < rows[j].id
		}
		return rows[i].at.After(rows[j].at)
	})
	if seenLimit > 0 && len(rows) > seenLimit {
		rows = rows[:seenLimit]
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tFIRST SEEN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s (%s)\n", r.id, r.at.Local().Format("2006-01-02 15:04"), humanize.Time(r.at))
	}
	tw.Flush()
	fmt.Printf("\nShowing %d of %s identifiers\n", len(rows), humanize.Comma(int64(len(entries))))
	return nil
}

func runSeenPrune(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	if seenOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %v", seenOlderThan)
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	seen, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer seen.Close()

	removed, err := seen.Prune(cmd.Context(), seenOlderThan)
	if err != nil {
		logger.Error("prune failed", "error", err)
		return err
	}
	logger.Info("pruned seen store", "removed", removed, "remaining", seen.Len(), "older_than", seenOlderThan.String())
	return nil
}
