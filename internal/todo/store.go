package todo

import (
	"errors"
	"io"
	"io/fs"
	"slices"

	"github.com/charmbracelet/log"
)

// Store owns the task list and mirrors it to a JSON file.
type Store struct {
	path   string
	tasks  []Task
	logger *log.Logger
	schema *Schema
	newID  func() string

	// original bytes of a file that lost data on load, written to
	// BackupPath before the next save
	pendingBackup []byte

	// set when the file exists but could not be read; saves are refused
	// until a Load succeeds
	readFailed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings and save traces.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithSchema sets the record schema used by Load.
func WithSchema(schema *Schema) Option {
	return func(s *Store) {
		if schema != nil {
			s.schema = schema
		}
	}
}

// New returns an empty Store backed by path. It does not touch the disk;
// call Load to read the file.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: log.New(io.Discard),
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.schema == nil {
		s.schema = DefaultSchema()
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Missing bool           // the file did not exist
	Loaded  int            // tasks now in the store
	Dropped []*RecordError // records rejected by validation
}

// Load replaces the in-memory list with the contents of the backing file.
// A missing file is not an error. A file that cannot be read or decoded
// leaves the store empty and returns a *PersistenceError; the store stays
// usable either way. After a read failure saves return ErrUnreadFile and
// leave the file alone until a later Load succeeds.
func (s *Store) Load() (LoadReport, error) {
	var report LoadReport
	s.tasks = nil
	s.pendingBackup = nil
	s.readFailed = false

	data, err := readFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report.Missing = true
			s.logger.Debug("task file not found, starting empty", "path", s.path)
			return report, nil
		}
		s.readFailed = true
		s.logger.Warn("could not read task file, starting with an empty list", "path", s.path, "err", err)
		return report, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	tasks, dropped, err := parseDocument(data, s.schema)
	if err != nil {
		s.pendingBackup = data
		s.logger.Warn("could not decode task file, starting with an empty list", "path", s.path, "err", err)
		return report, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	for _, d := range dropped {
		s.logger.Warn("dropping invalid task record", "path", s.path, "index", d.Index, "id", d.ID, "err", d)
	}
	if len(dropped) > 0 {
		s.pendingBackup = data
	}

	s.tasks = tasks
	report.Loaded = len(tasks)
	report.Dropped = dropped
	s.logger.Debug("loaded task file", "path", s.path, "tasks", len(tasks), "dropped", len(dropped))
	return report, nil
}

// save rewrites the backing file. The in-memory list is kept on failure.
func (s *Store) save(op, id string) error {
	if s.readFailed {
		return s.saveFailed(op, id, ErrUnreadFile)
	}

	data, err := encodeDocument(s.tasks)
	if err != nil {
		return s.saveFailed(op, id, err)
	}

	err = withLock(s.path, func() error {
		if s.pendingBackup != nil {
			if err := writeFileAtomic(BackupPath(s.path), s.pendingBackup); err != nil {
				return &PersistenceError{Op: "backup", Path: BackupPath(s.path), Err: err}
			}
			s.logger.Warn("kept a copy of the original task file", "path", BackupPath(s.path))
			s.pendingBackup = nil
		}
		return writeFileAtomic(s.path, data)
	})
	if err != nil {
		return s.saveFailed(op, id, err)
	}

	s.logger.Debug("saved task file", "op", op, "id", id, "tasks", len(s.tasks))
	return nil
}

func (s *Store) saveFailed(op, id string, err error) error {
	s.logger.Warn("changes not saved", "op", op, "id", id, "path", s.path, "err", err)
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return perr
	}
	return &PersistenceError{Op: "save", Path: s.path, Err: err}
}

// Add validates the fields, appends a new pending task and saves.
// On a *PersistenceError the task is still added in memory.
func (s *Store) Add(title, description string, priority Priority, dueDate string) (Task, error) {
	if err := ValidateTitle(title); err != nil {
		return Task{}, err
	}
	if err := ValidatePriority(priority); err != nil {
		return Task{}, err
	}
	if err := ValidateDueDate(dueDate); err != nil {
		return Task{}, err
	}

	task := Task{
		ID:          s.uniqueID(),
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
	}
	s.tasks = append(s.tasks, task)
	return task, s.save("add", task.ID)
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Edit applies patch to the task with the given id. It returns false if no
// such task exists. Every supplied field is validated before any is
// assigned. The file is saved only when a value actually changed.
func (s *Store) Edit(id string, patch Patch) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	if err := patch.Validate(); err != nil {
		return true, err
	}
	if !patch.apply(&s.tasks[i]) {
		return true, nil
	}
	return true, s.save("edit", id)
}

// Delete removes the task with the given id.
func (s *Store) Delete(id string) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return true, s.save("delete", id)
}

// Toggle flips the completed flag of the task with the given id.
func (s *Store) Toggle(id string) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return true, s.save("toggle", id)
}

// List returns a copy of all tasks in insertion order.
func (s *Store) List() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// ListByPriority returns the tasks with priority p.
func (s *Store) ListByPriority(p Priority) ([]Task, error) {
	if err := ValidatePriority(p); err != nil {
		return nil, err
	}
	return s.filter(func(t Task) bool { return t.Priority == p }), nil
}

// ListByCompletion returns the tasks whose completed flag equals completed.
func (s *Store) ListByCompletion(completed bool) []Task {
	return s.filter(func(t Task) bool { return t.Completed == completed })
}

func (s *Store) filter(keep func(Task) bool) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Clear removes every task and saves an empty list.
func (s *Store) Clear() error {
	s.tasks = nil
	return s.save("clear", "")
}
