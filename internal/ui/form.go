package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Form fields in focus order. fieldCompleted exists only when editing.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDueDate
	fieldCompleted
)

var fieldLabels = []string{
	"Title:",
	"Description:",
	"Priority (High/Medium/Low):",
	"Due Date (YYYY-MM-DD):",
	"Completed:",
}

// taskForm is the add and edit dialog.
type taskForm struct {
	id        string // empty when adding
	inputs    []textinput.Model
	completed bool
	focus     int
	err       string
}

func newTaskForm(task *todo.Task, defaultPriority todo.Priority) *taskForm {
	f := &taskForm{inputs: make([]textinput.Model, fieldDueDate+1)}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldPriority].CharLimit = 6
	f.inputs[fieldDueDate].CharLimit = len(todo.DateLayout)
	f.inputs[fieldDueDate].Placeholder = todo.DateLayout

	if task == nil {
		f.inputs[fieldPriority].SetValue(string(defaultPriority))
	} else {
		f.id = task.ID
		f.completed = task.Completed
		f.inputs[fieldTitle].SetValue(task.Title)
		f.inputs[fieldDescription].SetValue(task.Description)
		f.inputs[fieldPriority].SetValue(string(task.Priority))
		f.inputs[fieldDueDate].SetValue(task.DueDate)
	}
	return f
}

func (f *taskForm) editing() bool {
	return f.id != ""
}

func (f *taskForm) fieldCount() int {
	if f.editing() {
		return fieldCompleted + 1
	}
	return fieldDueDate + 1
}

func (f *taskForm) focusField(i int) tea.Cmd {
	n := f.fieldCount()
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	if f.focus < len(f.inputs) {
		return f.inputs[f.focus].Focus()
	}
	return nil
}

func (f *taskForm) lastField() bool {
	return f.focus == f.fieldCount()-1
}

// updateInput forwards msg to the focused text input.
func (f *taskForm) updateInput(msg tea.Msg) tea.Cmd {
	if f.focus >= len(f.inputs) {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *taskForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// patch builds an edit covering every field of the form.
func (f *taskForm) patch(priority todo.Priority) todo.Patch {
	title := f.value(fieldTitle)
	description := f.value(fieldDescription)
	due := f.value(fieldDueDate)
	completed := f.completed
	return todo.Patch{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		DueDate:     &due,
		Completed:   &completed,
	}
}

func (f *taskForm) View() string {
	var b strings.Builder
	heading := "Add Task"
	if f.editing() {
		heading = "Edit Task"
	}
	b.WriteString(headingStyle.Render(heading) + "\n\n")

	for i := 0; i < f.fieldCount(); i++ {
		label := labelStyle.Render(fieldLabels[i])
		if i == f.focus {
			label = focusStyle.Render(labelStyle.Render(fieldLabels[i]))
		}
		var field string
		if i == fieldCompleted {
			field = "[ ]"
			if f.completed {
				field = "[x]"
			}
		} else {
			field = f.inputs[i].View()
		}
		b.WriteString(label + " " + field + "\n")
	}

	if f.err != "" {
		b.WriteString("\n" + errorStyle.Render("Validation Error: "+f.err) + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render("tab/shift+tab move | enter next/save | ctrl+s save | space toggles completed | esc cancel") + "\n")
	return panelStyle.Render(b.String())
}
