package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MARKETDATA_CACHE_SIZE", "")

	LoadConfig()

	assert.Equal(t, "postgres", AppConfig.DBDriver)
	assert.Equal(t, 128, AppConfig.CacheSize)
	assert.Equal(t, 25, AppConfig.LSTMEpochs)
	assert.Equal(t, 32, AppConfig.LSTMBatchSize)
	assert.Empty(t, AppConfig.GoogleAPIKey)
}

func TestLoadConfigGeminiKeyFallback(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	LoadConfig()
	assert.Equal(t, "gemini-key", AppConfig.GoogleAPIKey)

	t.Setenv("GOOGLE_API_KEY", "google-key")
	LoadConfig()
	assert.Equal(t, "google-key", AppConfig.GoogleAPIKey)
}

func TestGetEnvIntInvalid(t *testing.T) {
	t.Setenv("LSTM_EPOCHS", "many")
	assert.Equal(t, 25, getEnvInt("LSTM_EPOCHS", 25))

	t.Setenv("LSTM_DROPOUT", "0.5")
	assert.Equal(t, 0.5, getEnvFloat("LSTM_DROPOUT", 0.2))
}

func TestScheduleDefaultsAndOff(t *testing.T) {
	t.Setenv("HISTORY_REFRESH_CRON", "")
	t.Setenv("LSTM_RETRAIN_CRON", "")

	LoadConfig()
	assert.Equal(t, "0 1 * * *", AppConfig.HistoryRefreshCron)
	assert.Equal(t, "0 3 * * *", AppConfig.LSTMRetrainCron)

	t.Setenv("LSTM_RETRAIN_CRON", "OFF")
	t.Setenv("HISTORY_REFRESH_CRON", "30 2 * * 1-5")
	LoadConfig()
	assert.Empty(t, AppConfig.LSTMRetrainCron)
	assert.Equal(t, "30 2 * * 1-5", AppConfig.HistoryRefreshCron)
}
