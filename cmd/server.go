package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/compatbrowse/internal/config"
	"github.com/ziadkadry99/compatbrowse/internal/server"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

var (
	serverPort     int
	serverOffline  bool
	serverAllowAll bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the compatibility browser web frontend",
	Long: `Starts the web frontend. Records come from the configured JSON-API, or
from the latest sqlite snapshot with --offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(func(c *config.Config) {
			if cmd.Flags().Changed("port") {
				c.Server.Port = serverPort
			}
			if serverOffline {
				c.Offline = true
			}
			if serverAllowAll {
				c.Server.AllowAll = true
			}
		})
		if err != nil {
			return err
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		source, err := openRecordSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer source.close()

		s, err := store.New(source.fetcher, nil, store.Config{
			Namespace:    source.namespace,
			CacheSize:    cfg.Cache.Size,
			Fanout:       cfg.Cache.Fanout,
			FetchTimeout: cfg.API.Timeout,
		})
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}

		srv, err := server.New(server.Config{
			Port:     cfg.Server.Port,
			RootURL:  cfg.Server.RootURL,
			AllowAll: cfg.Server.AllowAll,
		}, s)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "compatbrowse server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Records: %s\n", source.description)
		if verbose {
			fmt.Fprintf(os.Stderr, "  Browse: http://localhost:%d%s/\n", cfg.Server.Port, srv.ServerConfig().RootURL)
			fmt.Fprintf(os.Stderr, "  Cache: %d records, fan-out %d\n", cfg.Cache.Size, cfg.Cache.Fanout)
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides config)")
	serverCmd.Flags().BoolVar(&serverOffline, "offline", false, "serve the latest snapshot instead of the live API")
	serverCmd.Flags().BoolVar(&serverAllowAll, "allow-all", false, "allow all CORS origins")
	rootCmd.AddCommand(serverCmd)
}
