package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the on-disk layout of a due date.
const DateLayout = "2006-01-02"

// Priority represents a task priority.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the valid priorities from highest to lowest.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is one of High, Medium or Low.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the ordinal used for tie-breaking: High=0, Medium=1, Low=2.
// Unknown priorities sort after Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ParsePriority maps user input to a Priority, ignoring case and
// surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	trimmed := strings.TrimSpace(s)
	for _, p := range Priorities() {
		if strings.EqualFold(trimmed, string(p)) {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "priority", Value: s, Err: ErrInvalidPriority}
}

// Task represents a single to-do record.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"due_date"`
	Completed   bool     `json:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t Task) IsZero() bool {
	return t.ID == ""
}

// Due parses the due date.
func (t Task) Due() (time.Time, error) {
	return time.Parse(DateLayout, t.DueDate)
}

// StatusLabel returns "Completed" or "Pending".
func (t Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}
	return "Pending"
}

// Patch lists the fields to change in Store.Edit. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *string
	Completed   *bool
}

// IsEmpty reports whether the patch supplies no field at all.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.Completed == nil
}

// Validate checks every supplied field without touching any task.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := ValidatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.DueDate != nil {
		if err := ValidateDueDate(*p.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// apply assigns the supplied fields onto t and reports whether any value changed.
func (p Patch) apply(t *Task) bool {
	changed := false
	if p.Title != nil && *p.Title != t.Title {
		t.Title = *p.Title
		changed = true
	}
	if p.Description != nil && *p.Description != t.Description {
		t.Description = *p.Description
		changed = true
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		t.Priority = *p.Priority
		changed = true
	}
	if p.DueDate != nil && *p.DueDate != t.DueDate {
		t.DueDate = *p.DueDate
		changed = true
	}
	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		changed = true
	}
	return changed
}

// Validation sentinels, matched with errors.Is.
var (
	ErrEmptyTitle      = errors.New("must not be empty")
	ErrInvalidPriority = errors.New("must be one of High, Medium, Low")
	ErrInvalidDueDate  = errors.New("must be a valid date in YYYY-MM-DD format")
)

// ValidationError reports an invalid field value.
type ValidationError struct {
	Field string // field name as persisted, e.g. "due_date"
	Value string // rejected value
	Err   error  // underlying error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateTitle rejects blank titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	return nil
}

// ValidatePriority rejects anything but High, Medium or Low (case-sensitive).
func ValidatePriority(p Priority) error {
	if !p.Valid() {
		return &ValidationError{Field: "priority", Value: string(p), Err: ErrInvalidPriority}
	}
	return nil
}

// ValidateDueDate rejects strings that are not a calendar date in YYYY-MM-DD form.
func ValidateDueDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return &ValidationError{Field: "due_date", Value: s, Err: ErrInvalidDueDate}
	}
	return nil
}

// NewID returns a random 32-character hex identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
