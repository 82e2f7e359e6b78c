package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Task file (relative to the working directory; supports ~ expansion)
todo_file = "tasks.json"

# Record schema used to validate tasks on load (default: built-in)
# schema_file = "task.schema.json"

# Priority for "tasklist add" when -priority is not given: High, Medium or Low
default_priority = "Medium"

# Logging: debug, info, warn or error
log_level = "info"

# Log format: text, json or logfmt
log_format = "text"

# Write logs to a file instead of stderr (always used by the TUI when set)
# log_file = "~/.tasklist/tasklist.log"

# Include timestamps and caller location in log lines
log_timestamps = false
log_caller = false
`
}
