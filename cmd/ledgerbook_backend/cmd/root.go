// Package cmd provides the ledgerbook_backend commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/SscSPs/ledgerbook/internal/platform/config"
	"github.com/spf13/cobra"
)

var debug bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledgerbook_backend",
	Short: "Double-entry general ledger service",
	Long:  `ledgerbook_backend runs the ledger HTTP API and its maintenance tasks.

Configuration is read from the environment and an optional .env file.

Example:
  ledgerbook_backend serve
  ledgerbook_backend migrate
  ledgerbook_backend token --sub u-1 --role accountant`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize structured logger
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		return nil, err
	}
	return cfg, nil
}
