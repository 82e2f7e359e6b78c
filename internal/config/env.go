package config

import (
	"os"
	"strings"
)

// loadFromEnv overrides config from TASKLIST_* environment variables and
// records the source of each value it sets.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setString := func(name, field string, target *string) {
		if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(name, field string, target *bool) {
		if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
			*target = boolFromString(v)
			sources[field] = SourceEnv
		}
	}

	setString("FILE", "todo_file", &cfg.TodoFile)
	setString("SCHEMA", "schema_file", &cfg.SchemaFile)
	setString("DEFAULT_PRIORITY", "default_priority", &cfg.DefaultPriority)

	// Logging configuration
	setString("LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("LOG_FORMAT", "log_format", &cfg.LogFormat)
	setString("LOG_FILE", "log_file", &cfg.LogFile)
	setBool("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("LOG_CALLER", "log_caller", &cfg.LogCaller)
}

// boolFromString parses common truthy spellings.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
