package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/compatbrowse/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "compatbrowse",
	Short: "Browse web platform compatibility data",
	Long: `compatbrowse is a web frontend for a compatibility JSON-API. It lists
browsers, versions, features, supports, specifications, maturities and
sections, follows the relations between them, and can serve an offline
snapshot of the API from sqlite.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
