package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nanofi/nanofi/internal/flagx"
	"github.com/nanofi/nanofi/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Pointer fields keep
// absent keys from overwriting values set by earlier sources.
type FileConfig struct {
	StoragePath  *string         `json:"storage_path" yaml:"storage_path"`
	LoginDelay   *timex.Duration `json:"login_delay" yaml:"login_delay"`
	LogLevel     *string         `json:"log_level" yaml:"log_level"`
	LogFormat    *string         `json:"log_format" yaml:"log_format"`
	WatchStorage *bool           `json:"watch_storage" yaml:"watch_storage"`
	SeedOnStart  *bool           `json:"seed_on_start" yaml:"seed_on_start"`
}

// parseFile loads the file named by -c/-config, if any, into cfg.
// Unreadable or malformed files panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.StoragePath != nil {
		cfg.StoragePath = *fc.StoragePath
	}
	if fc.LoginDelay != nil {
		cfg.LoginDelay = fc.LoginDelay.Duration
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.WatchStorage != nil {
		cfg.WatchStorage = *fc.WatchStorage
	}
	if fc.SeedOnStart != nil {
		cfg.SeedOnStart = *fc.SeedOnStart
	}
}
