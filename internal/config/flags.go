package config

import (
	"flag"
	"io"
	"time"

	"github.com/nanofi/nanofi/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Only the loader's own flags are parsed (see FlagNames); everything else in
// args belongs to the command tree and is ignored here. The login delay is
// given in milliseconds and converted to time.Duration; it is applied only
// when -w is present, so a finer delay from env or file is kept otherwise.
func parseFlags(config *Config, args []string) {
	filtered := flagx.FilterArgs(args, []string{"-s", "-w", "-l", "-f"})

	fs := flag.NewFlagSet("nanofi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config.StoragePath, "s", config.StoragePath, "local storage profile path")
	loginDelay := fs.Int("w", int(config.LoginDelay.Milliseconds()), "simulated login delay (in milliseconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			config.LoginDelay = time.Duration(*loginDelay) * time.Millisecond
		}
	})
}
