package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// isolate points HOME and the config dirs at an empty temp dir, clears
// TASKLIST_* variables and moves into a fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"FILE", "SCHEMA", "DEFAULT_PRIORITY", "LOG_LEVEL", "LOG_FORMAT",
		"LOG_FILE", "LOG_TIMESTAMPS", "LOG_CALLER",
	} {
		t.Setenv(envPrefix+name, "")
	}
	wd := t.TempDir()
	t.Chdir(wd)
	return home
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TodoFile != DefaultTodoFile {
		t.Errorf("TodoFile: got %q, want %q", cfg.TodoFile, DefaultTodoFile)
	}
	if cfg.SchemaFile != "" {
		t.Errorf("SchemaFile: got %q, want empty", cfg.SchemaFile)
	}
	if cfg.DefaultPriority != DefaultPriority {
		t.Errorf("DefaultPriority: got %q, want %q", cfg.DefaultPriority, DefaultPriority)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging defaults: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config
	wd, _ := os.Getwd()

	if cfg.ProjectRoot != wd {
		t.Errorf("ProjectRoot: got %q, want %q", cfg.ProjectRoot, wd)
	}
	if want := filepath.Join(wd, DefaultTodoFile); cfg.TodoFile != want {
		t.Errorf("TodoFile: got %q, want %q", cfg.TodoFile, want)
	}
	if cfg.SchemaFile != "" {
		t.Errorf("SchemaFile: got %q, want empty", cfg.SchemaFile)
	}
	if len(cws.Files) != 0 {
		t.Errorf("Files: got %v, want none", cws.Files)
	}
	for _, field := range configFields() {
		if cws.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want default", field, cws.Sources[field])
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKLIST_FILE", "/tmp/env-tasks.json")
	t.Setenv("TASKLIST_DEFAULT_PRIORITY", "high")
	t.Setenv("TASKLIST_LOG_LEVEL", "DEBUG")
	t.Setenv("TASKLIST_LOG_CALLER", "yes")

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if cfg.TodoFile != filepath.Clean("/tmp/env-tasks.json") {
		t.Errorf("TodoFile: got %q", cfg.TodoFile)
	}
	if cfg.DefaultPriority != "High" {
		t.Errorf("DefaultPriority: got %q, want High", cfg.DefaultPriority)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if !cfg.LogCaller {
		t.Error("LogCaller: got false, want true")
	}
	for _, field := range []string{"todo_file", "default_priority", "log_level", "log_caller"} {
		if cws.Sources[field] != SourceEnv {
			t.Errorf("source of %s: got %q, want environment", field, cws.Sources[field])
		}
	}
	if cws.Sources["log_format"] != SourceDefault {
		t.Errorf("source of log_format: got %q, want default", cws.Sources["log_format"])
	}
}

func TestLoadConfigFiles(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".tasklist", "tasklist.toml"), `
todo_file = "user.json"
default_priority = "Low"
log_format = "json"
`)
	writeFile(t, "tasklist.toml", `
todo_file = "project.json"
colour = "blue"
`)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if filepath.Base(cfg.TodoFile) != "project.json" {
		t.Errorf("TodoFile: got %q, want project.json", cfg.TodoFile)
	}
	if cfg.DefaultPriority != "Low" {
		t.Errorf("DefaultPriority: got %q, want Low", cfg.DefaultPriority)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}

	wantSources := map[string]ConfigSource{
		"todo_file":        SourceProjFile,
		"default_priority": SourceUserFile,
		"log_format":       SourceUserFile,
		"log_level":        SourceDefault,
	}
	for field, want := range wantSources {
		if got := cws.Sources[field]; got != want {
			t.Errorf("source of %s: got %q, want %q", field, got, want)
		}
	}

	if len(cws.Files) != 2 {
		t.Fatalf("Files: got %v, want 2 entries", cws.Files)
	}
	if cws.ConfigFile() != "tasklist.toml" {
		t.Errorf("ConfigFile: got %q, want tasklist.toml", cws.ConfigFile())
	}
	if len(cws.Warnings) != 1 {
		t.Errorf("Warnings: got %v, want one unknown key", cws.Warnings)
	}
}

func TestHiddenProjectConfigFile(t *testing.T) {
	isolate(t)
	writeFile(t, ".tasklist.toml", `schema_file = "schema/task.json"`)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wd, _ := os.Getwd()
	if want := filepath.Join(wd, "schema", "task.json"); cfg.SchemaFile != want {
		t.Errorf("SchemaFile: got %q, want %q", cfg.SchemaFile, want)
	}
}

func TestLoadConfigFileError(t *testing.T) {
	isolate(t)
	writeFile(t, "tasklist.toml", `todo_file = `)

	if _, err := Load(newFlagSet(), nil); err == nil {
		t.Fatal("Load: expected error for malformed TOML")
	}
}

func TestParseFlags(t *testing.T) {
	isolate(t)
	t.Setenv("TASKLIST_FILE", "env.json")

	fs := newFlagSet()
	cws, err := LoadWithSources(fs, []string{"-file", "flag.json", "-log-format", "logfmt", "-log-timestamps", "ls", "-json"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if filepath.Base(cfg.TodoFile) != "flag.json" {
		t.Errorf("TodoFile: got %q, want flag.json", cfg.TodoFile)
	}
	if cfg.LogFormat != "logfmt" || !cfg.LogTimestamps {
		t.Errorf("logging: got %q timestamps=%v", cfg.LogFormat, cfg.LogTimestamps)
	}
	for _, field := range []string{"todo_file", "log_format", "log_timestamps"} {
		if cws.Sources[field] != SourceFlag {
			t.Errorf("source of %s: got %q, want flag", field, cws.Sources[field])
		}
	}
	if got := fs.Args(); len(got) != 2 || got[0] != "ls" || got[1] != "-json" {
		t.Errorf("remaining args: got %v", got)
	}
}

func TestFinalizeConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"priority", func(c *Config) { c.DefaultPriority = "Urgent" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"empty file", func(c *Config) { c.TodoFile = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ProjectRoot: t.TempDir()}
			setDefaults(cfg)
			tt.mod(cfg)
			if err := finalizeConfig(cfg); err == nil {
				t.Error("finalizeConfig: expected error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("TASKLIST_TEST_DIR", "/srv/tasks")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/tasks.json", filepath.Join(home, "tasks.json")},
		{"$TASKLIST_TEST_DIR/tasks.json", "/srv/tasks/tasks.json"},
		{"plain.json", "plain.json"},
	}
	if runtime.GOOS == "windows" {
		tests = append(tests, struct {
			input string
			want  string
		}{`%TASKLIST_TEST_DIR%\a.json`, `/srv/tasks\a.json`})
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBoolFromString(t *testing.T) {
	tests := map[string]bool{
		"1":     true,
		"true":  true,
		"YES":   true,
		" on ":  true,
		"0":     false,
		"false": false,
		"off":   false,
		"maybe": false,
	}
	for input, want := range tests {
		if got := boolFromString(input); got != want {
			t.Errorf("boolFromString(%q): got %v, want %v", input, got, want)
		}
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	isolate(t)
	writeFile(t, "tasklist.toml", ExampleConfig())

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if len(cws.Warnings) != 0 {
		t.Errorf("example config has unknown keys: %v", cws.Warnings)
	}
	if filepath.Base(cws.Config.TodoFile) != DefaultTodoFile {
		t.Errorf("TodoFile: got %q", cws.Config.TodoFile)
	}
}
