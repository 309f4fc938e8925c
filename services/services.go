// Package services holds the workflows behind the HTTP handlers, the scheduled
// jobs and the CLI.
package services

import (
	"fmt"
	"time"

	"stockpredictor/cache"
	"stockpredictor/config"
	"stockpredictor/forecast"
	"stockpredictor/llm"
	"stockpredictor/marketdata"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Registry bundles the workflow services.
type Registry struct {
	History   *HistoryService
	Forecast  *ForecastService
	Sentiment *SentimentService
	// Refresher reads the market-data source without the memo cache.
	Refresher *HistoryService
}

// App is the global registry used by controllers and jobs.
var App *Registry

// Init builds the registry from configuration and stores it in App.
func Init(cfg *config.Config, db *gorm.DB) (*Registry, error) {
	store, err := newCacheStore(cfg)
	if err != nil {
		return nil, err
	}

	yahoo := marketdata.NewYahooClient(cfg.MarketDataBaseURL, time.Duration(cfg.MarketDataTimeout)*time.Second)
	memo := marketdata.NewMemoized(yahoo, store, time.Duration(cfg.CacheTTL)*time.Minute)

	artifacts, err := forecast.NewFileStore(cfg.ModelDir)
	if err != nil {
		return nil, err
	}

	var client llm.Completer
	if cfg.GoogleAPIKey != "" {
		client = llm.NewGeminiClient(cfg.GoogleAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel)
	} else {
		log.Warn().Msg("No Gemini API key configured, sentiment endpoint will answer 500")
	}

	App = &Registry{
		History:   NewHistoryService(db, memo),
		Forecast:  NewForecastService(db, artifacts, LSTMConfig(cfg)),
		Sentiment: NewSentimentService(client),
		Refresher: NewHistoryService(db, yahoo),
	}
	return App, nil
}

// LSTMConfig maps the LSTM_* settings onto the trainer configuration.
func LSTMConfig(cfg *config.Config) forecast.LSTMConfig {
	c := forecast.DefaultLSTMConfig()
	c.Units = cfg.LSTMUnits
	c.Epochs = cfg.LSTMEpochs
	c.BatchSize = cfg.LSTMBatchSize
	c.Dropout = cfg.LSTMDropout
	c.LearningRate = cfg.LSTMLearningRate
	return c
}

func newCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "redis":
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis market data cache")
		return cache.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, "stockpredictor:"), nil
	case "memory", "":
		return cache.NewMemoryStore(cfg.CacheSize)
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}
}
