// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// Version is set via ldflags at build time.
var Version = "dev"

// storeCommands need a loaded task store.
var storeCommands = map[string]bool{
	"add": true, "ls": true, "list": true, "show": true, "edit": true,
	"toggle": true, "done": true, "rm": true, "delete": true,
	"clear": true, "stats": true, "tui": true,
}

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No command lists the tasks
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	case "config":
		return configCommand(cws, remainingArgs)
	case "completion":
		return completionCommand(cws.Config, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "log", "tail":
		return logCommand(ctx, cws.Config, remainingArgs)
	}

	if !storeCommands[subcommand] {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}

	a, err := newApp(cws, subcommand == "tui")
	if err != nil {
		return err
	}
	defer a.Close()

	switch subcommand {
	case "add":
		return addCommand(a, remainingArgs)
	case "ls", "list":
		return lsCommand(a, remainingArgs)
	case "show":
		return showCommand(a, remainingArgs)
	case "edit":
		return editCommand(a, remainingArgs)
	case "toggle", "done":
		return toggleCommand(a, remainingArgs)
	case "rm", "delete":
		return deleteCommand(a, remainingArgs)
	case "clear":
		return clearCommand(a, remainingArgs)
	case "stats":
		return statsCommand(a, remainingArgs)
	default:
		return tuiCommand(ctx, a, remainingArgs)
	}
}

// app carries what every store command needs. It is built once per
// invocation and passed to the handlers explicitly.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *todo.Store
	closers []io.Closer
}

// newApp builds the logger and the task store from cfg. With quiet set and
// no log file configured, logs are discarded so they cannot draw over a
// full-screen UI.
func newApp(cws *config.ConfigWithSources, quiet bool) (*app, error) {
	cfg := cws.Config
	a := &app{cfg: cfg}

	opts, err := logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	var w io.Writer = os.Stderr
	switch {
	case cfg.LogFile != "":
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f)
		w = f
	case quiet:
		w = io.Discard
	}
	a.logger = logging.New(w, opts)

	for _, warning := range cws.Warnings {
		a.logger.Warn("ignoring config key", "detail", warning)
	}

	storeOpts := []todo.Option{todo.WithLogger(a.logger)}
	if schema := loadSchema(cfg.SchemaFile, a.logger); schema != nil {
		storeOpts = append(storeOpts, todo.WithSchema(schema))
	}
	a.store = todo.New(cfg.TodoFile, storeOpts...)
	return a, nil
}

// loadSchema compiles the configured record schema. A missing or broken
// schema file falls back to the built-in one.
func loadSchema(path string, logger *log.Logger) *todo.Schema {
	if path == "" {
		return nil
	}
	schema, err := todo.LoadSchema(path)
	if err != nil {
		logger.Warn("using built-in record schema", "path", path, "err", err)
		return nil
	}
	return schema
}

// load reads the task file. Problems are logged by the store, which stays
// usable with whatever could be loaded.
func (a *app) load() todo.LoadReport {
	report, _ := a.store.Load()
	return report
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("tasklist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasklist - a personal task list kept in a JSON file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [global options] [command] [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add -due DATE [-desc D] [-priority P] TITLE...   Add a task")
	fmt.Fprintln(w, "  ls [-priority P] [-status S] [-json] [-v]      List tasks (default command)")
	fmt.Fprintln(w, "  show ID                                        Show one task")
	fmt.Fprintln(w, "  edit ID [-title] [-desc] [-priority] [-due] [-completed]")
	fmt.Fprintln(w, "                                                 Change the given fields")
	fmt.Fprintln(w, "  toggle ID (alias: done)                        Flip completed/pending")
	fmt.Fprintln(w, "  rm ID (alias: delete)                          Delete a task")
	fmt.Fprintln(w, "  clear -yes                                     Delete every task")
	fmt.Fprintln(w, "  stats [-json]                                  Show task statistics")
	fmt.Fprintln(w, "  tui                                            Launch terminal UI")
	fmt.Fprintln(w, "  doctor [-v]                                    Check config, task file and schema")
	fmt.Fprintln(w, "  config [-example]                              Show effective configuration")
	fmt.Fprintln(w, "  log [-n N] [-f]                                Show the log file")
	fmt.Fprintln(w, "  completion SHELL                               Print a shell completion script")
	fmt.Fprintln(w, "  version                                        Show version information")
	fmt.Fprintln(w, "  help                                           Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "IDs may be abbreviated to any unique prefix. Priorities are High, Medium or Low")
	fmt.Fprintln(w, "(any case); dates use YYYY-MM-DD.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
