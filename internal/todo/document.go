package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCorruptDocument marks a task file that is not a JSON array.
var ErrCorruptDocument = errors.New("task file is not a valid JSON array")

// record mirrors a persisted task with every field optional, so that
// missing keys can be told apart from zero values.
type record struct {
	ID          *string `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

// RecordError describes a persisted record that was rejected at load time.
type RecordError struct {
	Index int     // position in the JSON array
	ID    string  // id of the record, if it had one
	Errs  []error // every problem found
}

func (e *RecordError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	label := fmt.Sprintf("record [%d]", e.Index)
	if e.ID != "" {
		label += fmt.Sprintf(" (id %s)", e.ID)
	}
	return label + ": " + strings.Join(msgs, "; ")
}

// parseDocument decodes a task file. Invalid records are skipped and
// returned as RecordErrors; a document that is not an array fails as a whole.
func parseDocument(data []byte, schema *Schema) ([]Task, []*RecordError, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	tasks := make([]Task, 0, len(raws))
	var dropped []*RecordError
	seen := make(map[string]int, len(raws))

	for i, raw := range raws {
		task, errs := decodeRecord(raw, schema)
		if len(errs) == 0 {
			if first, dup := seen[task.ID]; dup {
				errs = append(errs, &ValidationError{
					Field: "id",
					Value: task.ID,
					Err:   fmt.Errorf("duplicates record [%d]", first),
				})
			}
		}
		if len(errs) > 0 {
			dropped = append(dropped, &RecordError{Index: i, ID: task.ID, Errs: errs})
			continue
		}
		seen[task.ID] = i
		tasks = append(tasks, task)
	}

	return tasks, dropped, nil
}

// decodeRecord turns one array element into a Task, applying defaults for
// description, priority and completed.
func decodeRecord(raw json.RawMessage, schema *Schema) (Task, []error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return Task{}, []error{err}
	}
	errs := schema.ValidateRecord(value)

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Task{}, append(errs, &ValidationError{Field: "record", Err: errors.New("must be an object")})
	}

	task := Task{Priority: PriorityMedium}
	if rec.ID != nil {
		task.ID = *rec.ID
	}
	if rec.Title != nil {
		task.Title = *rec.Title
	}
	if rec.Description != nil {
		task.Description = *rec.Description
	}
	if rec.Priority != nil {
		task.Priority = Priority(*rec.Priority)
	}
	if rec.DueDate != nil {
		task.DueDate = *rec.DueDate
	}
	if rec.Completed != nil {
		task.Completed = *rec.Completed
	}

	// The schema may be user-supplied; the model invariants still hold.
	if len(errs) == 0 {
		if task.ID == "" {
			errs = append(errs, &ValidationError{Field: "id", Err: errors.New("missing required field")})
		}
		for _, err := range []error{
			ValidateTitle(task.Title),
			ValidatePriority(task.Priority),
			ValidateDueDate(task.DueDate),
		} {
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	return task, errs
}

// encodeDocument renders tasks with 4-space indentation and a trailing newline.
func encodeDocument(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("marshal task file: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentReport contains the result of checking a task file.
type DocumentReport struct {
	Valid   bool
	Records int    // array elements found
	Loaded  int    // records that would load
	Errors  []error
	Schema  string // schema source used
}

// ValidateDocument checks a task file without loading it into a Store.
// A nil schema means DefaultSchema.
func ValidateDocument(data []byte, schema *Schema) *DocumentReport {
	if schema == nil {
		schema = DefaultSchema()
	}
	report := &DocumentReport{Valid: true, Schema: schema.Source}

	tasks, dropped, err := parseDocument(data, schema)
	if err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, err)
		return report
	}

	report.Loaded = len(tasks)
	report.Records = len(tasks) + len(dropped)
	for _, d := range dropped {
		report.Valid = false
		for _, e := range d.Errs {
			report.Errors = append(report.Errors, fmt.Errorf("[%d].%w", d.Index, e))
		}
	}
	return report
}
