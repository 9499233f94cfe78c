package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envFileVar      = "ENV_FILE"
	envStoragePath  = "NANOFI_STORAGE"
	envLoginDelay   = "NANOFI_LOGIN_DELAY"
	envLogLevel     = "NANOFI_LOG_LEVEL"
	envLogFormat    = "NANOFI_LOG_FORMAT"
	envWatchStorage = "NANOFI_WATCH_STORAGE"
	envSeedOnStart  = "NANOFI_SEED"
)

// parseEnv overlays NANOFI_* variables. A missing .env file is not an error.
func parseEnv(cfg *Config) {
	envFile := os.Getenv(envFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	if v, ok := lookupEnv(envStoragePath); ok {
		cfg.StoragePath = v
	}
	if v, ok := lookupEnv(envLoginDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.LoginDelay = d
	}
	if v, ok := lookupEnv(envLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookupEnv(envLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := lookupEnv(envWatchStorage); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.WatchStorage = b
	}
	if v, ok := lookupEnv(envSeedOnStart); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.SeedOnStart = b
	}
}

// lookupEnv treats empty variables as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
