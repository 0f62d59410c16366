package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/compatbrowse/internal/config"
	"github.com/ziadkadry99/compatbrowse/internal/db"
	"github.com/ziadkadry99/compatbrowse/internal/progress"
	"github.com/ziadkadry99/compatbrowse/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy the compatibility API into a local sqlite snapshot",
	Long: `Walks every page of every resource type on the configured API and stores
the records and their relation links in sqlite, so that
'compatbrowse server --offline' can serve them without the API.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().String("out", "", "snapshot database path (overrides config)")
	snapshotCmd.Flags().Int("concurrency", 0, "resource types crawled at once (overrides config)")
	snapshotCmd.Flags().Int("keep", 3, "completed snapshots to keep; older ones are pruned")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	start := time.Now()

	out, _ := cmd.Flags().GetString("out")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	keep, _ := cmd.Flags().GetInt("keep")

	cfg, err := loadConfig(func(c *config.Config) {
		// Crawling always reads the live API.
		c.Offline = false
		if out != "" {
			c.Snapshot.Path = out
		}
		if concurrency > 0 {
			c.Snapshot.Concurrency = concurrency
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Snapshot.Path)
	if err != nil {
		return fmt.Errorf("opening snapshot database: %w", err)
	}
	defer database.Close()

	crawler := snapshot.NewCrawler(client, database, snapshot.Options{
		Source:      cfg.API.BaseURL,
		Namespace:   cfg.API.Namespace,
		Concurrency: cfg.Snapshot.Concurrency,
		Reporter:    progress.NewReporter(),
	})

	if verbose {
		fmt.Fprintf(os.Stderr, "Crawling %s into %s...\n", client.URL("", nil), cfg.Snapshot.Path)
	}

	snap, err := crawler.Run(ctx, pluralNames())
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	if keep > 0 {
		removed, err := snapshot.Prune(ctx, database, keep)
		if err != nil {
			return err
		}
		if verbose && removed > 0 {
			fmt.Fprintf(os.Stderr, "Pruned %d old snapshots\n", removed)
		}
	}

	fmt.Fprintf(os.Stderr, "Snapshot %s written to %s\n", snap.ID, cfg.Snapshot.Path)
	for _, plural := range pluralNames() {
		fmt.Fprintf(os.Stderr, "  %-15s %d\n", plural, snap.Counts[plural])
	}
	fmt.Fprintf(os.Stderr, "  %d records in %s\n", snap.Total(), time.Since(start).Round(time.Millisecond))
	return nil
}
