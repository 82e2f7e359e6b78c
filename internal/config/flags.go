package config

import (
	"flag"
)

// parseFlags defines the config flags on fs, parses args and records which
// flags were set explicitly. Flag defaults show the value resolved from the
// lower layers.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}

	fs.StringVar(&cfg.TodoFile, "file", cfg.TodoFile, "Path to task file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to a record schema (default: built-in)")
	fs.StringVar(&cfg.DefaultPriority, "default-priority", cfg.DefaultPriority, "Priority for new tasks (High, Medium, Low)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file instead of stderr")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToField := map[string]string{
		"file":             "todo_file",
		"schema":           "schema_file",
		"default-priority": "default_priority",
		"log-level":        "log_level",
		"log-format":       "log_format",
		"log-file":         "log_file",
		"log-timestamps":   "log_timestamps",
		"log-caller":       "log_caller",
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToField[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
