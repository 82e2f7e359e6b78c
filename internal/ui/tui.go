// Package ui provides the full-screen terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasklist-go/internal/todo"
)

const (
	defaultWidth       = 100
	defaultTableHeight = 15
	shortIDLength      = 8
	// rows used by the title, filter line, status bar and footer
	chromeHeight = 8
)

// Option configures the TUI.
type Option func(*Model)

// WithDefaultPriority sets the priority pre-filled in the add form.
func WithDefaultPriority(p todo.Priority) Option {
	return func(m *Model) {
		if p.Valid() {
			m.defaultPriority = p
		}
	}
}

// Run starts the TUI over store. The store must already be loaded.
func Run(ctx context.Context, store *todo.Store, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := NewModel(store, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}
	return nil
}

type viewMode int

const (
	viewList viewMode = iota
	viewForm
	viewConfirmDelete
	viewStats
	viewHelp
)

type statusFilter int

const (
	statusAll statusFilter = iota
	statusPending
	statusCompleted
)

func (f statusFilter) String() string {
	switch f {
	case statusPending:
		return "Pending"
	case statusCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// priorityCycle is the order the priority filter steps through; "" is All.
var priorityCycle = []todo.Priority{"", todo.PriorityHigh, todo.PriorityMedium, todo.PriorityLow}

// Model is the bubbletea model of the task list. It is the only caller of
// the store while the program runs.
type Model struct {
	store           *todo.Store
	defaultPriority todo.Priority

	table   table.Model
	visible []todo.Task // rows of the table, in display order

	priorityFilter todo.Priority
	statusFilter   statusFilter

	mode    viewMode
	form    *taskForm
	pending todo.Task // task awaiting delete confirmation

	message        string
	messageIsError bool
	width          int
}

// NewModel returns a model showing the current contents of store.
func NewModel(store *todo.Store, opts ...Option) *Model {
	m := &Model{
		store:           store,
		defaultPriority: todo.PriorityMedium,
		width:           defaultWidth,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.table = table.New(
		table.WithColumns(columns(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	m.table.SetStyles(tableStyles())
	m.refreshRows()
	m.setInfo(fmt.Sprintf("Loaded %d tasks from %s.", store.Len(), store.Path()))
	return m
}

// columns sizes the table to width, giving the title whatever is left.
func columns(width int) []table.Column {
	const fixed = shortIDLength + 8 + 10 + 9 + 5*2
	titleWidth := width - fixed
	if titleWidth < 20 {
		titleWidth = 20
	}
	return []table.Column{
		{Title: "ID", Width: shortIDLength},
		{Title: "Title", Width: titleWidth},
		{Title: "Priority", Width: 8},
		{Title: "Due Date", Width: 10},
		{Title: "Status", Width: 9},
	}
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("tasklist")
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case viewForm:
			return m, m.updateForm(msg)
		case viewConfirmDelete:
			m.updateConfirm(msg)
			return m, nil
		case viewStats, viewHelp:
			switch msg.String() {
			case "esc", "q", "enter", "s", "?", "h":
				m.mode = viewList
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	if m.mode == viewForm && m.form != nil {
		return m, m.form.updateInput(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "a", "n":
		return m, m.openForm(nil)
	case "e", "enter":
		task, ok := m.selected()
		if !ok {
			m.setError("No task selected. Please select a task to edit.")
			return m, nil
		}
		return m, m.openForm(&task)
	case "x", " ":
		m.toggleSelected()
		return m, nil
	case "d", "delete":
		task, ok := m.selected()
		if !ok {
			m.setError("No task selected. Please select a task to delete.")
			return m, nil
		}
		m.pending = task
		m.mode = viewConfirmDelete
		return m, nil
	case "p":
		m.priorityFilter = nextPriority(m.priorityFilter)
		m.refreshRows()
		m.setInfo(m.filterLabel())
		return m, nil
	case "c":
		m.statusFilter = (m.statusFilter + 1) % 3
		m.refreshRows()
		m.setInfo(m.filterLabel())
		return m, nil
	case "0":
		m.priorityFilter = ""
		m.statusFilter = statusAll
		m.refreshRows()
		m.setInfo(m.filterLabel())
		return m, nil
	case "s":
		m.mode = viewStats
		return m, nil
	case "?", "h":
		m.mode = viewHelp
		return m, nil
	case "r", "f5":
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func nextPriority(p todo.Priority) todo.Priority {
	for i, c := range priorityCycle {
		if c == p {
			return priorityCycle[(i+1)%len(priorityCycle)]
		}
	}
	return ""
}

func (m *Model) openForm(task *todo.Task) tea.Cmd {
	m.form = newTaskForm(task, m.defaultPriority)
	m.mode = viewForm
	return m.form.focusField(fieldTitle)
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = viewList
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.setInfo("Cancelled.")
		return nil
	case "tab", "down":
		return f.focusField(f.focus + 1)
	case "shift+tab", "up":
		return f.focusField(f.focus - 1)
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if f.lastField() {
			return m.submitForm()
		}
		return f.focusField(f.focus + 1)
	case " ":
		if f.focus == fieldCompleted {
			f.completed = !f.completed
			return nil
		}
	}
	return f.updateInput(msg)
}

func (m *Model) submitForm() tea.Cmd {
	f := m.form

	priorityText := f.value(fieldPriority)
	priority := m.defaultPriority
	if priorityText != "" || f.editing() {
		p, err := todo.ParsePriority(priorityText)
		if err != nil {
			f.err = err.Error()
			return f.focusField(fieldPriority)
		}
		priority = p
	}

	if !f.editing() {
		task, err := m.store.Add(f.value(fieldTitle), f.value(fieldDescription), priority, f.value(fieldDueDate))
		if focus, ok := validationFocus(err); ok {
			f.err = err.Error()
			return f.focusField(focus)
		}
		m.closeForm()
		m.refreshRows()
		m.selectID(task.ID)
		m.reportSave(fmt.Sprintf("Task '%s' added.", task.Title), err)
		return nil
	}

	id := f.id
	found, err := m.store.Edit(id, f.patch(priority))
	if !found {
		m.closeForm()
		m.refreshRows()
		m.setError("Could not find the selected task. It might have been deleted.")
		return nil
	}
	if focus, ok := validationFocus(err); ok {
		f.err = err.Error()
		return f.focusField(focus)
	}
	m.closeForm()
	m.refreshRows()
	m.selectID(id)
	task, _ := m.store.Get(id)
	m.reportSave(fmt.Sprintf("Task '%s' updated.", task.Title), err)
	return nil
}

// validationFocus reports whether err is a validation error and which form
// field it concerns.
func validationFocus(err error) (int, bool) {
	var ve *todo.ValidationError
	if !errors.As(err, &ve) {
		return 0, false
	}
	switch ve.Field {
	case "priority":
		return fieldPriority, true
	case "due_date":
		return fieldDueDate, true
	default:
		return fieldTitle, true
	}
}

func (m *Model) updateConfirm(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y":
		task := m.pending
		m.mode = viewList
		m.pending = todo.Task{}
		found, err := m.store.Delete(task.ID)
		m.refreshRows()
		if !found {
			m.setError("Task not found for deletion.")
			return
		}
		m.reportSave(fmt.Sprintf("Task '%s' deleted.", task.Title), err)
	case "n", "N", "esc", "q":
		m.mode = viewList
		m.pending = todo.Task{}
		m.setInfo("Delete cancelled.")
	}
}

func (m *Model) toggleSelected() {
	task, ok := m.selected()
	if !ok {
		m.setError("No task selected. Please select a task to toggle completion.")
		return
	}
	found, err := m.store.Toggle(task.ID)
	if !found {
		m.refreshRows()
		m.setError("Task not found for toggling.")
		return
	}
	updated, _ := m.store.Get(task.ID)
	m.refreshRows()
	m.selectID(task.ID)
	m.reportSave(fmt.Sprintf("Task '%s' marked as %s.", updated.Title, strings.ToLower(updated.StatusLabel())), err)
}

func (m *Model) reload() {
	report, err := m.store.Load()
	m.refreshRows()
	if err != nil {
		m.setError(fmt.Sprintf("Could not load %s: %v", m.store.Path(), err))
		return
	}
	if len(report.Dropped) > 0 {
		m.setError(fmt.Sprintf("Reloaded %d tasks; %d invalid records skipped.", report.Loaded, len(report.Dropped)))
		return
	}
	m.setInfo(fmt.Sprintf("Reloaded %d tasks.", report.Loaded))
}

// reportSave shows msg, or msg with a warning when the change was kept in
// memory but could not be written.
func (m *Model) reportSave(msg string, err error) {
	if err != nil {
		m.setError(msg + " Changes not saved: " + err.Error())
		return
	}
	m.setInfo(msg)
}

func (m *Model) setInfo(msg string) {
	m.message = msg
	m.messageIsError = false
}

func (m *Model) setError(msg string) {
	m.message = msg
	m.messageIsError = true
}

func (m *Model) filteredTasks() []todo.Task {
	var tasks []todo.Task
	switch m.statusFilter {
	case statusPending:
		tasks = m.store.ListByCompletion(false)
	case statusCompleted:
		tasks = m.store.ListByCompletion(true)
	default:
		tasks = m.store.List()
	}
	if m.priorityFilter == "" {
		return tasks
	}
	out := tasks[:0]
	for _, t := range tasks {
		if t.Priority == m.priorityFilter {
			out = append(out, t)
		}
	}
	return out
}

// refreshRows rebuilds the table from the store, keeping the cursor in range.
func (m *Model) refreshRows() {
	tasks := m.filteredTasks()
	todo.SortForDisplay(tasks)
	m.visible = tasks

	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		rows[i] = table.Row{shortID(t.ID), t.Title, string(t.Priority), t.DueDate, t.StatusLabel()}
	}
	m.table.SetRows(rows)
	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

func (m *Model) selected() (todo.Task, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return todo.Task{}, false
	}
	return m.visible[c], true
}

func (m *Model) selectID(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.table.SetCursor(i)
			return
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
	if h := height - chromeHeight; h > 3 {
		m.table.SetHeight(h)
	} else {
		m.table.SetHeight(3)
	}
}

func (m *Model) filterLabel() string {
	p := "All"
	if m.priorityFilter != "" {
		p = string(m.priorityFilter)
	}
	return fmt.Sprintf("Priority: %s | Status: %s", p, m.statusFilter)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tasklist") + "  " + subtleStyle.Render(m.store.Path()) + "\n\n")

	switch m.mode {
	case viewHelp:
		writeHelp(&b)
	case viewStats:
		b.WriteString(renderStats(todo.Summarize(m.store.List())))
		b.WriteString("\n" + subtleStyle.Render("esc to go back") + "\n")
	case viewForm:
		b.WriteString(m.form.View() + "\n")
	default:
		b.WriteString(subtleStyle.Render(m.filterLabel()) + "\n")
		if len(m.visible) == 0 {
			b.WriteString("\n  No tasks to show. Press a to add one.\n\n")
		} else {
			b.WriteString(m.table.View() + "\n")
		}
		if m.mode == viewConfirmDelete {
			b.WriteString(confirmStyle.Render(fmt.Sprintf("Are you sure you want to delete task: '%s'? (y/n)", m.pending.Title)) + "\n")
		}
	}

	b.WriteString(m.statusLine() + "\n")
	b.WriteString(subtleStyle.Render("a add | e edit | x toggle | d delete | p/c filter | s stats | ? help | q quit") + "\n")
	return b.String()
}

func (m *Model) statusLine() string {
	if m.message == "" {
		return ""
	}
	if m.messageIsError {
		return errorStyle.Render(m.message)
	}
	return infoStyle.Render(m.message)
}

func writeHelp(b *strings.Builder) {
	b.WriteString(headingStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  up/down, j/k   Move selection\n")
	b.WriteString("  a, n           Add task\n")
	b.WriteString("  e, enter       Edit selected task\n")
	b.WriteString("  x, space       Toggle completed\n")
	b.WriteString("  d, delete      Delete selected task\n")
	b.WriteString("  p              Cycle priority filter\n")
	b.WriteString("  c              Cycle status filter\n")
	b.WriteString("  0              Clear filters\n")
	b.WriteString("  s              Statistics\n")
	b.WriteString("  r, F5          Reload from disk\n")
	b.WriteString("  h, ?           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
