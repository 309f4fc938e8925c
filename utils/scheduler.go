package utils

import (
	"context"
	"fmt"
	"time"

	"stockpredictor/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("[SCHEDULER] " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("[SCHEDULER] " + msg)
}

// jobTimeout bounds a single scheduled run.
const jobTimeout = 2 * time.Hour

// InitializeSchedulers registers the history refresh and LSTM retraining jobs.
// An empty schedule disables that job. The returned cron is already started.
func InitializeSchedulers(historySpec, retrainSpec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	), cron.WithLogger(cronLogger{}))

	if historySpec != "" {
		if _, err := c.AddFunc(historySpec, func() { RunHistoryRefresh(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid HISTORY_REFRESH_CRON %q: %w", historySpec, err)
		}
		log.Info().Str("schedule", historySpec).Msg("[SCHEDULER] History refresh scheduled")
	}
	if retrainSpec != "" {
		if _, err := c.AddFunc(retrainSpec, func() { RunLSTMRetrain(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid LSTM_RETRAIN_CRON %q: %w", retrainSpec, err)
		}
		log.Info().Str("schedule", retrainSpec).Msg("[SCHEDULER] LSTM retraining scheduled")
	}

	c.Start()
	return c, nil
}

// RunHistoryRefresh upserts the last year of bars for every stored stock.
func RunHistoryRefresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	log.Info().Msg("[SCHEDULER] Running history refresh...")
	res, err := services.App.Refresher.RefreshAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("[SCHEDULER] History refresh aborted")
		return
	}
	log.Info().Int("updated", res.Updated).Int("skipped", res.Skipped).Int("failed", res.Failed).
		Msg("[SCHEDULER] History refresh finished")
}

// RunLSTMRetrain retrains the saved network of every stored stock.
func RunLSTMRetrain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	log.Info().Msg("[SCHEDULER] Running LSTM retraining...")
	n, err := services.App.Forecast.TrainAll(ctx)
	if err != nil {
		log.Error().Err(err).Int("trained", n).Msg("[SCHEDULER] LSTM retraining aborted")
		return
	}
	log.Info().Int("trained", n).Msg("[SCHEDULER] LSTM retraining finished")
}
