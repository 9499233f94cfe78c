// Package flagx splits the process arguments between the configuration
// loader and the command tree: global settings flags are picked out of the
// argument list before subcommands see it.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c nanofi.yaml
//  2. Flag and value combined with '=':      -config=nanofi.yaml
//
// A separate value is only consumed when it does not itself start with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	filtered, _ := split(args, allowedFlags)
	return filtered
}

// StripArgs is the complement of FilterArgs: it returns args with the
// allowed flags and their values removed, preserving the order of the rest.
func StripArgs(args []string, allowedFlags []string) []string {
	_, rest := split(args, allowedFlags)
	return rest
}

func split(args []string, allowedFlags []string) (matched, rest []string) {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	matched = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" or "-f=value"
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				matched = append(matched, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			matched = append(matched, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				matched = append(matched, args[i+1])
				i++
			}
			continue
		}

		rest = append(rest, arg)
	}

	return matched, rest
}

// ConfigFileFlags lists the flags naming a configuration file.
var ConfigFileFlags = []string{"-c", "-config"}

// ConfigFileFlag extracts the config file path provided via -c or -config.
// Other arguments are ignored. If neither flag is present, an empty string
// is returned; when both are given the last one wins.
func ConfigFileFlag(args []string) string {
	var config string
	filtered := FilterArgs(args, ConfigFileFlags)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file (JSON or YAML)")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(filtered)

	return config
}
