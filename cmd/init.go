package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/compatbrowse/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize compatbrowse configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks where the compatibility API lives and how to serve it, then writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
