package config

import "time"

// Config holds runtime settings for the NanoFi client.
//
// Fields:
//   - StoragePath: SQLite file standing in for browser local storage.
//   - LoginDelay: artificial latency of a login attempt.
//   - LogLevel / LogFormat: logger selection, see logging.New.
//   - WatchStorage: re-hydrate the session in the interactive shell when
//     another process changes the profile.
//   - SeedOnStart: populate the demo vault applications when the list is empty.
type Config struct {
	StoragePath  string
	LoginDelay   time.Duration
	LogLevel     string
	LogFormat    string
	WatchStorage bool
	SeedOnStart  bool
}

// FlagNames lists every flag consumed by the loader, so the command tree can
// strip them before parsing its own arguments.
var FlagNames = []string{"-s", "-w", "-l", "-f", "-c", "-config"}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StoragePath = "nanofi.db"
	c.LoginDelay = 1 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "slog-json"
	c.WatchStorage = true
	c.SeedOnStart = false
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional config file and finally command-line flags found in args
// (usually os.Args[1:]). Unreadable files and malformed flags panic.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
