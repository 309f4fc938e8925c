package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpredictor/config"
	"stockpredictor/routers"
	"stockpredictor/utils"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the HTTP API. The nightly history refresh and LSTM retraining run in the same process; set HISTORY_REFRESH_CRON or LSTM_RETRAIN_CRON to "off" to disable one.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig

	scheduler, err := utils.InitializeSchedulers(cfg.HistoryRefreshCron, cfg.LSTMRetrainCron)
	if err != nil {
		return err
	}

	app := routers.New()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server is running")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		scheduler.Stop()
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	// wait for running jobs before closing
	<-scheduler.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}
