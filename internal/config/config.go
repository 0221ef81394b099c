package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDatasetURL is the ECB's zipped full history of euro foreign exchange
// reference rates.
const DefaultDatasetURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.zip"

type Config struct {
	Port                  string
	DBPath                string
	DatasetPath           string
	DatasetURL            string
	BaseCurrency          string
	FallbackOnWrongDate   bool
	FallbackOnMissingRate bool
	RefreshInterval       time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// fallback for local development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                  getEnv("PORT", "8080"),
		DBPath:                getEnv("DB_PATH", "rates.db"),
		DatasetPath:           getEnv("DATASET_PATH", ""),
		DatasetURL:            getEnv("DATASET_URL", DefaultDatasetURL),
		BaseCurrency:          getEnv("BASE_CURRENCY", "EUR"),
		FallbackOnWrongDate:   getEnvBool("FALLBACK_ON_WRONG_DATE", false),
		FallbackOnMissingRate: getEnvBool("FALLBACK_ON_MISSING_RATE", false),
		RefreshInterval:       getEnvDuration("REFRESH_INTERVAL", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
