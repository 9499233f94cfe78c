// Package config loads runtime configuration for the NanoFi client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: NANOFI_* variables, optionally seeded from a .env file
//     (path overridable through ENV_FILE). Variables already set in the
//     process environment win over the file.
//  3. Optional config file selected via -c or -config. Files ending in
//     .yaml/.yml are decoded as YAML, anything else as JSON.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   local storage profile path (":memory:" for a throwaway profile)
//	-w int      simulated login delay, milliseconds
//	-l string   log level: debug, info, warn, error
//	-f string   log format: slog-json, slog-text, zap
//
// # File schema
//
//	storage_path: nanofi.db
//	login_delay: 1s
//	log_level: info
//	log_format: slog-json
//	watch_storage: true
//	seed_on_start: false
//
// Durations use timex.Duration, so "750ms" and integer nanoseconds both work.
package config
