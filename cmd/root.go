// Package cmd holds the stockpredictor CLI commands.
package cmd

import (
	"context"
	"fmt"

	"stockpredictor/config"
	"stockpredictor/database"
	"stockpredictor/logger"
	"stockpredictor/services"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "stockpredictor",
	Short: "Stock history, forecasting and sentiment API",
	Long: `Stock history, forecasting and sentiment API

Commands:
    serve            start the HTTP server and the schedulers
    fetch-history    refresh the stored history of every stock
    train [TICKER]   train the LSTM of one stock, or of every stock
    import-stocks    load a stock master CSV
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchHistoryCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(importStocksCmd)
}

// bootstrap loads configuration, then sets up logging, the database and the services.
func bootstrap() error {
	config.LoadConfig()
	cfg := config.AppConfig

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:       level,
		Format:      cfg.LogFormat,
		Dir:         cfg.LogDir,
		ServiceName: "stockpredictor",
	}); err != nil {
		return err
	}

	if err := database.ConnectDb(cfg); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if _, err := services.Init(cfg, database.Database.Db); err != nil {
		return fmt.Errorf("services: %w", err)
	}
	return nil
}
