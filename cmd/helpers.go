package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ziadkadry99/compatbrowse/internal/config"
	"github.com/ziadkadry99/compatbrowse/internal/db"
	"github.com/ziadkadry99/compatbrowse/internal/model"
	"github.com/ziadkadry99/compatbrowse/internal/snapshot"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// loadConfig loads the config, applies flag overrides and validates the
// result, providing a user-friendly error.
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `compatbrowse init` to create a config file", err)
	}
	for _, apply := range overrides {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newAPIClient creates the live API client from config.
func newAPIClient(cfg *config.Config) (*store.Client, error) {
	client, err := store.NewClient(cfg.API.BaseURL, cfg.API.Namespace, cfg.API.Timeout)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	return client, nil
}

// recordSource is where the browse store reads documents from.
type recordSource struct {
	fetcher     store.Fetcher
	namespace   string
	description string
	close       func() error
}

// openRecordSource returns the live API, or the latest snapshot when the
// config is offline.
func openRecordSource(ctx context.Context, cfg *config.Config) (*recordSource, error) {
	if !cfg.Offline {
		client, err := newAPIClient(cfg)
		if err != nil {
			return nil, err
		}
		return &recordSource{
			fetcher:     client,
			namespace:   cfg.API.Namespace,
			description: client.URL("", nil),
			close:       func() error { return nil },
		}, nil
	}

	if _, err := os.Stat(cfg.Snapshot.Path); err != nil {
		return nil, fmt.Errorf("snapshot database %s: %w\nRun `compatbrowse snapshot` first", cfg.Snapshot.Path, err)
	}
	database, err := db.Open(cfg.Snapshot.Path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	src, err := snapshot.OpenSource(ctx, database, cfg.Snapshot.PageSize)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	snap := src.Snapshot()
	return &recordSource{
		fetcher:   src,
		namespace: snap.Namespace,
		description: fmt.Sprintf("snapshot %s of %s (%d records, %s)",
			snap.ID, snap.Source, snap.Total(), snap.FinishedAt.Format("2006-01-02 15:04")),
		close: database.Close,
	}, nil
}

// pluralNames lists the plural path name of every browsable type.
func pluralNames() []string {
	out := make([]string, 0, len(model.TypeKeys))
	for _, key := range model.TypeKeys {
		out = append(out, model.Plurals[key])
	}
	return out
}
