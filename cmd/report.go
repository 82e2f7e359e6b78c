package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// statsCommand prints counts by status and priority.
func statsCommand(a *app, args []string) error {
	fset := flag.NewFlagSet("tasklist stats", flag.ContinueOnError)
	jsonOut := fset.Bool("json", false, "Print statistics as JSON")
	if err := fset.Parse(args); err != nil {
		return err
	}

	a.load()
	stats := todo.Summarize(a.store.List())

	if *jsonOut {
		return printJSON(struct {
			Total          int                   `json:"total"`
			Completed      int                   `json:"completed"`
			Pending        int                   `json:"pending"`
			ByPriority     map[todo.Priority]int `json:"by_priority"`
			CompletionRate float64               `json:"completion_rate"`
		}{stats.Total, stats.Completed, stats.Pending, stats.ByPriority, stats.CompletionRate()})
	}

	fmt.Printf("Total Tasks:     %d\n", stats.Total)
	fmt.Printf("Completed Tasks: %d\n", stats.Completed)
	fmt.Printf("Pending Tasks:   %d\n", stats.Pending)
	if stats.Total == 0 {
		fmt.Println()
		fmt.Println("No tasks available to generate detailed statistics.")
		return nil
	}
	fmt.Printf("Completion:      %.0f%%\n", stats.CompletionRate()*100)
	fmt.Println()
	fmt.Println("By Priority:")
	for _, p := range todo.Priorities() {
		fmt.Printf("  %-6s %d\n", p, stats.ByPriority[p])
	}
	return nil
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	a.load()
	return ui.Run(ctx, a.store, ui.WithDefaultPriority(todo.Priority(a.cfg.DefaultPriority)))
}

// doctorCommand checks config, the task file and the record schema.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	fset := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	verbose := fset.Bool("v", false, "Verbose output")
	if err := fset.Parse(args); err != nil {
		return err
	}
	cfg := cws.Config

	fmt.Println("tasklist doctor")
	fmt.Println("===============")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  ✅ No config file (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Printf("  ✅ Read %s\n", f)
	}
	for _, w := range cws.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		fmt.Printf("  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Printf("  ✅ Log level: %s\n", cfg.LogLevel)
	}
	fmt.Printf("  ✅ Default priority: %s\n", cfg.DefaultPriority)
	fmt.Println()

	// Schema
	schema := todo.DefaultSchema()
	if cfg.SchemaFile == "" {
		fmt.Println("Schema: built-in")
		fmt.Println("  ✅ OK")
	} else {
		fmt.Printf("Schema file: %s\n", cfg.SchemaFile)
		loaded, err := todo.LoadSchema(cfg.SchemaFile)
		if err != nil {
			fmt.Printf("  ❌ %v (the built-in schema will be used)\n", err)
			allOK = false
		} else {
			schema = loaded
			fmt.Println("  ✅ OK")
		}
	}
	fmt.Println()

	// Task file
	fmt.Printf("Task file: %s\n", cfg.TodoFile)
	info, err := os.Stat(cfg.TodoFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println("  ⚠️  Not found (will be created on the first change)")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	default:
		if !checkTaskFile(cfg.TodoFile, schema, *verbose) {
			allOK = false
		}
	}
	if _, err := os.Stat(todo.BackupPath(cfg.TodoFile)); err == nil {
		fmt.Printf("  ⚠️  Backup of an earlier damaged file: %s\n", todo.BackupPath(cfg.TodoFile))
	}
	fmt.Println()

	// Log file
	if cfg.LogFile == "" {
		fmt.Println("Log file: (stderr)")
	} else {
		fmt.Printf("Log file: %s\n", cfg.LogFile)
		if _, err := os.Stat(cfg.LogFile); err != nil {
			fmt.Println("  ⚠️  Not found (will be created on first use)")
		} else {
			fmt.Println("  ✅ OK")
		}
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func checkTaskFile(path string, schema *todo.Schema, verbose bool) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		return false
	}
	report := todo.ValidateDocument(data, schema)
	if report.Valid {
		fmt.Printf("  ✅ Valid (%d tasks, schema: %s)\n", report.Loaded, report.Schema)
		return true
	}

	fmt.Printf("  ❌ Validation failed (%d of %d records would load, schema: %s):\n", report.Loaded, report.Records, report.Schema)
	limit := len(report.Errors)
	if !verbose && limit > 10 {
		limit = 10
	}
	for _, e := range report.Errors[:limit] {
		fmt.Printf("     - %v\n", e)
	}
	if limit < len(report.Errors) {
		fmt.Printf("     ... %d more (use -v)\n", len(report.Errors)-limit)
	}
	return false
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fset := flag.NewFlagSet("tasklist config", flag.ContinueOnError)
	example := fset.Bool("example", false, "Print an example config file")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Print(config.ExampleConfig())
		return nil
	}

	cfg := cws.Config
	rows := []struct {
		key   string
		value any
	}{
		{"todo_file", cfg.TodoFile},
		{"schema_file", cfg.SchemaFile},
		{"default_priority", cfg.DefaultPriority},
		{"log_level", cfg.LogLevel},
		{"log_format", cfg.LogFormat},
		{"log_file", cfg.LogFile},
		{"log_timestamps", cfg.LogTimestamps},
		{"log_caller", cfg.LogCaller},
	}
	for _, r := range rows {
		fmt.Printf("%-17s = %-42q (%s)\n", r.key, fmt.Sprint(r.value), cws.Sources[r.key])
	}
	if f := cws.ConfigFile(); f != "" {
		fmt.Printf("\nConfig file: %s\n", f)
	}
	return nil
}

// logCommand prints the configured log file.
func logCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fset := flag.NewFlagSet("tasklist log", flag.ContinueOnError)
	follow := fset.Bool("f", false, "Follow the log (like tail -f)")
	fset.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fset.Int("n", 20, "Number of lines to show (0 = all)")
	if err := fset.Parse(args); err != nil {
		return err
	}

	if cfg.LogFile == "" {
		fmt.Println("No log file configured (set log_file or -log-file).")
		return nil
	}
	if _, err := os.Stat(cfg.LogFile); errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Log file %s does not exist yet.\n", cfg.LogFile)
		return nil
	}
	if *follow {
		fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)\n", cfg.LogFile)
	}
	return logging.TailLog(ctx, os.Stdout, cfg.LogFile, *n, *follow)
}
