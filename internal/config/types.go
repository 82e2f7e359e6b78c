package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, lowest priority first.
	Files []string

	// Warnings lists config file keys that tasklist does not know.
	Warnings []string
}

// Default values.
const (
	DefaultTodoFile  = "tasks.json"
	DefaultPriority  = "Medium"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

const (
	appName              = "tasklist"
	userConfigDirName    = ".tasklist"
	configFileName       = "tasklist.toml"
	hiddenConfigFileName = ".tasklist.toml"
	envPrefix            = "TASKLIST_"
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Paths
	TodoFile   string `toml:"todo_file"`
	SchemaFile string `toml:"schema_file"` // empty: built-in record schema

	// Priority used by "add" when -priority is not given
	DefaultPriority string `toml:"default_priority"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"todo_file",
		"schema_file",
		"default_priority",
		"log_level",
		"log_format",
		"log_file",
		"log_timestamps",
		"log_caller",
	}
}
