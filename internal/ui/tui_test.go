package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasklist-go/internal/todo"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("T%03d", n)
	}
}

func newTestStore(t *testing.T, path string) *todo.Store {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "tasks.json")
	}
	return todo.New(path, todo.WithIDGenerator(sequentialIDs()))
}

func mustAdd(t *testing.T, s *todo.Store, title string, p todo.Priority, due string) todo.Task {
	t.Helper()
	task, err := s.Add(title, "", p, due)
	if err != nil {
		t.Fatalf("Add(%q): %v", title, err)
	}
	return task
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func visibleTitles(m *Model) []string {
	titles := make([]string, len(m.visible))
	for i, t := range m.visible {
		titles[i] = t.Title
	}
	return titles
}

func TestNewModelShowsSortedTasks(t *testing.T) {
	s := newTestStore(t, "")
	mustAdd(t, s, "Buy milk", todo.PriorityLow, "2024-05-01")
	mustAdd(t, s, "File taxes", todo.PriorityHigh, "2024-04-15")
	mustAdd(t, s, "Call mom", todo.PriorityHigh, "2024-05-01")

	m := NewModel(s)

	got := strings.Join(visibleTitles(m), ",")
	if want := "File taxes,Call mom,Buy milk"; got != want {
		t.Errorf("order: got %s, want %s", got, want)
	}
	view := m.View()
	for _, want := range []string{"File taxes", "Priority: All | Status: All", "Loaded 3 tasks"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAddTaskThroughForm(t *testing.T) {
	s := newTestStore(t, "")
	m := NewModel(s, WithDefaultPriority(todo.PriorityHigh))

	press(m, "a")
	if m.mode != viewForm || m.form == nil || m.form.editing() {
		t.Fatalf("expected add form, mode %v", m.mode)
	}
	if got := m.form.value(fieldPriority); got != "High" {
		t.Errorf("priority prefill: got %q, want High", got)
	}

	press(m, "Buy milk", "enter", "2% semi-skimmed", "enter", "enter", "2024-05-01", "enter")

	if m.mode != viewList {
		t.Fatalf("form still open: %q", m.form.err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", s.Len())
	}
	task := s.List()[0]
	if task.Title != "Buy milk" || task.Description != "2% semi-skimmed" || task.Priority != todo.PriorityHigh || task.DueDate != "2024-05-01" {
		t.Errorf("unexpected task: %+v", task)
	}
	if m.message != "Task 'Buy milk' added." || m.messageIsError {
		t.Errorf("status: got %q (error=%v)", m.message, m.messageIsError)
	}
}

func TestAddFormValidation(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantField int
		wantErr   string
	}{
		{"empty title", []string{"enter", "enter", "enter", "2024-05-01", "ctrl+s"}, fieldTitle, "title"},
		{"bad priority", []string{"Task", "enter", "enter", "ctrl+u", "urgent", "ctrl+s"}, fieldPriority, "priority"},
		{"bad date", []string{"Task", "enter", "enter", "enter", "2024-02-30", "ctrl+s"}, fieldDueDate, "due_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, "")
			m := NewModel(s)
			press(m, "a")
			press(m, tt.keys...)

			if m.mode != viewForm {
				t.Fatal("form closed on invalid input")
			}
			if !strings.Contains(m.form.err, tt.wantErr) {
				t.Errorf("form error: got %q, want mention of %s", m.form.err, tt.wantErr)
			}
			if m.form.focus != tt.wantField {
				t.Errorf("focus: got %d, want %d", m.form.focus, tt.wantField)
			}
			if s.Len() != 0 {
				t.Errorf("task added despite error")
			}
			if !strings.Contains(m.View(), "Validation Error") {
				t.Error("view does not show the validation error")
			}

			press(m, "esc")
			if m.mode != viewList || m.form != nil {
				t.Error("esc did not close the form")
			}
		})
	}
}

func TestEditTaskThroughForm(t *testing.T) {
	s := newTestStore(t, "")
	task := mustAdd(t, s, "Draft", todo.PriorityLow, "2024-05-01")
	m := NewModel(s)

	press(m, "e")
	if m.form == nil || !m.form.editing() || m.form.fieldCount() != 5 {
		t.Fatal("expected edit form with completed field")
	}
	press(m, "ctrl+u", "Final", "tab", "tab", "ctrl+u", "medium", "tab", "tab", "space", "ctrl+s")

	if m.mode != viewList {
		t.Fatalf("form still open: %q", m.form.err)
	}
	got, _ := s.Get(task.ID)
	if got.Title != "Final" || got.Priority != todo.PriorityMedium || !got.Completed || got.DueDate != "2024-05-01" {
		t.Errorf("unexpected task after edit: %+v", got)
	}
	if m.message != "Task 'Final' updated." {
		t.Errorf("status: got %q", m.message)
	}
}

func TestEditWithoutSelection(t *testing.T) {
	m := NewModel(newTestStore(t, ""))
	press(m, "e")
	if m.mode != viewList || !m.messageIsError {
		t.Errorf("expected error status, got mode %v message %q", m.mode, m.message)
	}
}

func TestToggleSelected(t *testing.T) {
	s := newTestStore(t, "")
	task := mustAdd(t, s, "Walk dog", todo.PriorityMedium, "2024-05-01")
	m := NewModel(s)

	press(m, "x")
	got, _ := s.Get(task.ID)
	if !got.Completed {
		t.Fatal("toggle did not complete the task")
	}
	if m.message != "Task 'Walk dog' marked as completed." {
		t.Errorf("status: got %q", m.message)
	}
	if !strings.Contains(m.View(), "Completed") {
		t.Error("view does not show the completed status")
	}

	press(m, "x")
	got, _ = s.Get(task.ID)
	if got.Completed {
		t.Error("second toggle did not restore pending")
	}
}

func TestFilters(t *testing.T) {
	s := newTestStore(t, "")
	mustAdd(t, s, "High pending", todo.PriorityHigh, "2024-05-01")
	done := mustAdd(t, s, "Low done", todo.PriorityLow, "2024-05-02")
	mustAdd(t, s, "Low pending", todo.PriorityLow, "2024-05-03")
	if _, err := s.Toggle(done.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	m := NewModel(s)

	press(m, "c")
	if got := strings.Join(visibleTitles(m), ","); got != "High pending,Low pending" {
		t.Errorf("pending filter: got %s", got)
	}

	press(m, "p", "p", "p")
	if m.priorityFilter != todo.PriorityLow {
		t.Fatalf("priority filter: got %q, want Low", m.priorityFilter)
	}
	if got := strings.Join(visibleTitles(m), ","); got != "Low pending" {
		t.Errorf("low pending filter: got %s", got)
	}

	press(m, "c")
	if got := strings.Join(visibleTitles(m), ","); got != "Low done" {
		t.Errorf("low completed filter: got %s", got)
	}
	if m.message != "Priority: Low | Status: Completed" {
		t.Errorf("status: got %q", m.message)
	}

	press(m, "0")
	if len(m.visible) != 3 {
		t.Errorf("clear filters: got %d rows, want 3", len(m.visible))
	}

	press(m, "p", "p", "p", "p")
	if m.priorityFilter != "" {
		t.Errorf("priority cycle did not wrap: %q", m.priorityFilter)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	s := newTestStore(t, "")
	mustAdd(t, s, "Keep", todo.PriorityHigh, "2024-05-01")
	mustAdd(t, s, "Remove", todo.PriorityLow, "2024-06-01")
	m := NewModel(s)

	press(m, "down", "d")
	if m.mode != viewConfirmDelete || m.pending.Title != "Remove" {
		t.Fatalf("expected confirmation for Remove, got mode %v pending %q", m.mode, m.pending.Title)
	}
	if !strings.Contains(m.View(), "Are you sure you want to delete task: 'Remove'?") {
		t.Error("confirmation prompt missing")
	}

	press(m, "n")
	if s.Len() != 2 || m.message != "Delete cancelled." {
		t.Fatalf("cancel: len %d message %q", s.Len(), m.message)
	}

	press(m, "d", "y")
	if s.Len() != 1 || s.List()[0].Title != "Keep" {
		t.Errorf("unexpected tasks after delete: %+v", s.List())
	}
	if m.message != "Task 'Remove' deleted." {
		t.Errorf("status: got %q", m.message)
	}
	if _, ok := m.selected(); !ok {
		t.Error("cursor left outside the remaining rows")
	}
}

func TestStatsAndHelpViews(t *testing.T) {
	s := newTestStore(t, "")
	mustAdd(t, s, "One", todo.PriorityHigh, "2024-05-01")
	m := NewModel(s)

	press(m, "s")
	view := m.View()
	for _, want := range []string{"Summary Statistics", "Total Tasks:     1", "Task Priorities", "Task Completion Status"} {
		if !strings.Contains(view, want) {
			t.Errorf("stats view missing %q", want)
		}
	}

	press(m, "esc", "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help view missing")
	}
	press(m, "q")
	if m.mode != viewList {
		t.Error("q in help should return to the list")
	}
}

func TestStatsViewEmpty(t *testing.T) {
	out := renderStats(todo.Summarize(nil))
	if !strings.Contains(out, "No tasks available") {
		t.Errorf("unexpected empty stats: %q", out)
	}
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := newTestStore(t, path)
	m := NewModel(s)

	other := newTestStore(t, path)
	mustAdd(t, other, "From elsewhere", todo.PriorityMedium, "2024-05-01")

	press(m, "r")
	if len(m.visible) != 1 || m.message != "Reloaded 1 tasks." {
		t.Errorf("reload: rows %d message %q", len(m.visible), m.message)
	}
}

func TestSaveFailureShowsWarning(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, filepath.Join(blocker, "tasks.json"))
	m := NewModel(s)

	press(m, "a", "Unsaved", "enter", "enter", "enter", "2024-05-01", "enter")

	if s.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", s.Len())
	}
	if !m.messageIsError || !strings.Contains(m.message, "Changes not saved") {
		t.Errorf("status: got %q (error=%v)", m.message, m.messageIsError)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(newTestStore(t, ""))
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestResizeColumns(t *testing.T) {
	m := NewModel(newTestStore(t, ""))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	cols := columns(120)
	if cols[1].Width != 120-(shortIDLength+8+10+9+10) {
		t.Errorf("title width: got %d", cols[1].Width)
	}
	if narrow := columns(30); narrow[1].Width != 20 {
		t.Errorf("minimum title width: got %d", narrow[1].Width)
	}
}
