package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/tasklist-go/internal/todo"
)

const shortIDLength = 8

// addCommand creates a task from flags and the remaining words as its title.
func addCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("tasklist add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Task description")
	priority := fs.String("priority", a.cfg.DefaultPriority, "Priority (High, Medium, Low)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))

	p, err := todo.ParsePriority(*priority)
	if err != nil {
		return err
	}

	a.load()
	task, err := a.store.Add(title, *desc, p, strings.TrimSpace(*due))
	if err != nil {
		if isValidation(err) {
			return err
		}
		return notSaved(err)
	}

	fmt.Printf("Task '%s' added (%s).\n", task.Title, task.ID)
	return nil
}

// lsCommand lists tasks in display order.
func lsCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("tasklist ls", flag.ContinueOnError)
	priority := fs.String("priority", "", "Filter by priority (High, Medium, Low)")
	status := fs.String("status", "all", "Filter by status (all, pending, completed)")
	jsonOut := fs.Bool("json", false, "Print tasks as JSON")
	verbose := fs.Bool("v", false, "Show full IDs and descriptions")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a.load()
	tasks, err := selectTasks(a.store, *priority, *status)
	if err != nil {
		return err
	}
	todo.SortForDisplay(tasks)

	if *jsonOut {
		return printJSON(tasks)
	}
	printTaskList(tasks, *verbose)
	return nil
}

// selectTasks applies the ls filters. Both filters may be combined.
func selectTasks(store *todo.Store, priority, status string) ([]todo.Task, error) {
	var tasks []todo.Task
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
		tasks = store.List()
	case "pending", "open":
		tasks = store.ListByCompletion(false)
	case "completed", "done":
		tasks = store.ListByCompletion(true)
	default:
		return nil, fmt.Errorf("invalid status %q: use all, pending or completed", status)
	}

	if strings.TrimSpace(priority) == "" {
		return tasks, nil
	}
	p, err := todo.ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	byPriority, err := store.ListByPriority(p)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(byPriority))
	for _, t := range byPriority {
		keep[t.ID] = true
	}
	filtered := tasks[:0]
	for _, t := range tasks {
		if keep[t.ID] {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// showCommand prints every field of one task.
func showCommand(a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasklist show ID")
	}
	a.load()
	task, err := resolveTask(a.store, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", task.ID)
	fmt.Printf("Title:       %s\n", task.Title)
	fmt.Printf("Description: %s\n", task.Description)
	fmt.Printf("Priority:    %s\n", task.Priority)
	fmt.Printf("Due Date:    %s\n", task.DueDate)
	fmt.Printf("Status:      %s\n", task.StatusLabel())
	return nil
}

// editCommand changes only the fields whose flags were given.
func editCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("tasklist edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description")
	priority := fs.String("priority", "", "New priority (High, Medium, Low)")
	due := fs.String("due", "", "New due date (YYYY-MM-DD)")
	completed := fs.Bool("completed", false, "Mark completed (-completed=false for pending)")

	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	var patch todo.Patch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "desc":
			patch.Description = desc
		case "priority":
			p, err := todo.ParsePriority(*priority)
			if err != nil {
				parseErr = err
				return
			}
			patch.Priority = &p
		case "due":
			d := strings.TrimSpace(*due)
			patch.DueDate = &d
		case "completed":
			patch.Completed = completed
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: pass at least one of -title, -desc, -priority, -due, -completed")
	}

	a.load()
	task, err := resolveTask(a.store, id)
	if err != nil {
		return err
	}
	found, err := a.store.Edit(task.ID, patch)
	if !found {
		return notFound(task.ID)
	}
	if err != nil {
		if isValidation(err) {
			return err
		}
		return notSaved(err)
	}

	updated, _ := a.store.Get(task.ID)
	fmt.Printf("Task '%s' updated.\n", updated.Title)
	return nil
}

// toggleCommand flips the completed flag of one task.
func toggleCommand(a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasklist toggle ID")
	}
	a.load()
	task, err := resolveTask(a.store, args[0])
	if err != nil {
		return err
	}
	found, err := a.store.Toggle(task.ID)
	if !found {
		return notFound(task.ID)
	}
	if err != nil {
		return notSaved(err)
	}

	updated, _ := a.store.Get(task.ID)
	fmt.Printf("Task '%s' marked as %s.\n", updated.Title, strings.ToLower(updated.StatusLabel()))
	return nil
}

// deleteCommand removes one task.
func deleteCommand(a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasklist rm ID")
	}
	a.load()
	task, err := resolveTask(a.store, args[0])
	if err != nil {
		return err
	}
	found, err := a.store.Delete(task.ID)
	if !found {
		return notFound(task.ID)
	}
	if err != nil {
		return notSaved(err)
	}

	fmt.Printf("Task '%s' deleted.\n", task.Title)
	return nil
}

// clearCommand removes every task, but only when asked twice.
func clearCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("tasklist clear", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Confirm deleting every task")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.load()
	n := a.store.Len()
	if !*yes {
		return fmt.Errorf("refusing to delete %d tasks without -yes", n)
	}
	if err := a.store.Clear(); err != nil {
		return notSaved(err)
	}

	fmt.Printf("Deleted %d tasks.\n", n)
	return nil
}

// parseWithID accepts the task id before or after the flags.
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	rest := fs.Args()
	if id == "" && len(rest) > 0 {
		id, rest = rest[0], rest[1:]
	}
	if id == "" {
		return "", fmt.Errorf("missing task ID")
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("unexpected arguments: %v", rest)
	}
	return id, nil
}

// resolveTask finds a task by exact id or by a unique id prefix.
func resolveTask(store *todo.Store, id string) (todo.Task, error) {
	id = strings.TrimSpace(id)
	if task, ok := store.Get(id); ok {
		return task, nil
	}
	if id == "" {
		return todo.Task{}, notFound(id)
	}

	var matches []todo.Task
	for _, t := range store.List() {
		if strings.HasPrefix(t.ID, id) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return todo.Task{}, notFound(id)
	case 1:
		return matches[0], nil
	default:
		return todo.Task{}, fmt.Errorf("ambiguous task ID %q matches %d tasks", id, len(matches))
	}
}

func notFound(id string) error {
	return fmt.Errorf("task %s not found", id)
}

// notSaved wraps a persistence failure. The change was applied in memory
// only, so it is lost when the process exits.
func notSaved(err error) error {
	return fmt.Errorf("changes not saved: %w", err)
}

func isValidation(err error) bool {
	var ve *todo.ValidationError
	return errors.As(err, &ve)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printTaskList prints tasks in the given order.
func printTaskList(tasks []todo.Task, verbose bool) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}
	for _, t := range tasks {
		printTask(t, verbose)
	}
}

// printTask prints a single task.
func printTask(t todo.Task, verbose bool) {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	id := t.ID
	if !verbose && len(id) > shortIDLength {
		id = id[:shortIDLength]
	}

	fmt.Printf("  %s %s  %s  %-6s  %s\n", mark, id, t.DueDate, t.Priority, t.Title)
	if verbose && t.Description != "" {
		fmt.Printf("      %s\n", t.Description)
	}
}
