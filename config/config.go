package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // overrides the individual DB_* parts when set

	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	MarketDataBaseURL string
	MarketDataTimeout int // seconds

	CacheBackend  string // memory, redis
	CacheSize     int
	CacheTTL      int // minutes, 0 keeps entries until evicted
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ModelDir         string
	LSTMUnits        int
	LSTMEpochs       int
	LSTMBatchSize    int
	LSTMDropout      float64
	LSTMLearningRate float64

	HistoryRefreshCron string
	LSTMRetrainCron    string

	LogLevel  string
	LogFormat string
	LogDir    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "8000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "stock_predictor"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		// GOOGLE_API_KEY wins over GEMINI_API_KEY when both are set
		GoogleAPIKey:  getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", "")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),

		MarketDataBaseURL: getEnv("MARKETDATA_BASE_URL", "https://query1.finance.yahoo.com"),
		MarketDataTimeout: getEnvInt("MARKETDATA_TIMEOUT_SECONDS", 15),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		CacheSize:     getEnvInt("MARKETDATA_CACHE_SIZE", 128),
		CacheTTL:      getEnvInt("CACHE_TTL_MINUTES", 0),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ModelDir:         getEnv("MODEL_DIR", "ml_models"),
		LSTMUnits:        getEnvInt("LSTM_UNITS", 50),
		LSTMEpochs:       getEnvInt("LSTM_EPOCHS", 25),
		LSTMBatchSize:    getEnvInt("LSTM_BATCH_SIZE", 32),
		LSTMDropout:      getEnvFloat("LSTM_DROPOUT", 0.2),
		LSTMLearningRate: getEnvFloat("LSTM_LEARNING_RATE", 0.001),

		HistoryRefreshCron: getSchedule("HISTORY_REFRESH_CRON", "0 1 * * *"),
		LSTMRetrainCron:    getSchedule("LSTM_RETRAIN_CRON", "0 3 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogDir:    getEnv("LOG_DIR", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Warn().Msg("Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GoogleAPIKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY / GEMINI_API_KEY not set. Sentiment analysis is disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getSchedule reads a cron expression; "off" disables the job.
func getSchedule(key, defaultValue string) string {
	value := getEnv(key, defaultValue)
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Invalid integer environment variable")
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Invalid float environment variable")
		return defaultValue
	}
	return f
}
