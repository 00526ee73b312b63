// Package store holds the ordered task sequence and keeps a persisted copy
// in key-value storage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nibzard/tasktrack-go/internal/storage"
	"github.com/nibzard/tasktrack-go/internal/task"
)

// DefaultKey is the storage key holding the serialized task list.
const DefaultKey = "tasks"

var (
	// ErrOutOfRange is returned for positions outside the sequence.
	ErrOutOfRange = errors.New("position out of range")
	// ErrNotFound is returned for unknown task IDs.
	ErrNotFound = errors.New("task not found")
)

// Store is the authoritative in-memory task sequence.
// It is not safe for concurrent use; callers own a single goroutine.
type Store struct {
	kv    storage.Storage
	key   string
	tasks []task.Task
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides ID generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New creates a store over kv under key. An empty key uses DefaultKey.
func New(kv storage.Storage, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		kv:    kv,
		key:   key,
		tasks: []task.Task{},
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load reads the persisted blob. An absent or unparseable blob yields an
// empty sequence. A storage read error also yields an empty sequence and is
// returned.
func (s *Store) Load() error {
	s.tasks = []task.Task{}

	raw, ok, err := s.kv.GetItem(s.key)
	if err != nil {
		return fmt.Errorf("read %q: %w", s.key, err)
	}
	if !ok {
		return nil
	}

	var tasks []task.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil || tasks == nil {
		return nil
	}
	for i := range tasks {
		tasks[i].ID = s.newID()
	}
	s.tasks = tasks
	return nil
}

// Persist serializes the whole sequence and overwrites the stored blob.
func (s *Store) Persist() error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := s.kv.SetItem(s.key, string(data)); err != nil {
		return fmt.Errorf("write %q: %w", s.key, err)
	}
	return nil
}

// Encode returns the serialized sequence.
func (s *Store) Encode() ([]byte, error) {
	data, err := json.Marshal(s.tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// Add appends t, assigning a fresh ID, and returns the stored copy.
func (s *Store) Add(t task.Task) task.Task {
	t.ID = s.newID()
	t.Raw = nil
	s.tasks = append(s.tasks, t)
	return t
}

// RemoveAt removes the task at pos.
func (s *Store) RemoveAt(pos int) (task.Task, error) {
	if pos < 0 || pos >= len(s.tasks) {
		return task.Task{}, fmt.Errorf("remove %d: %w", pos, ErrOutOfRange)
	}
	removed := s.tasks[pos]
	s.tasks = append(s.tasks[:pos], s.tasks[pos+1:]...)
	return removed, nil
}

// UpdateStatusAt overwrites the status of the task at pos.
func (s *Store) UpdateStatusAt(pos int, status task.Status) error {
	if pos < 0 || pos >= len(s.tasks) {
		return fmt.Errorf("update %d: %w", pos, ErrOutOfRange)
	}
	s.tasks[pos].Status = status
	return nil
}

// Remove removes the task with the given ID.
func (s *Store) Remove(id string) (task.Task, error) {
	pos := s.IndexOf(id)
	if pos < 0 {
		return task.Task{}, fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	return s.RemoveAt(pos)
}

// UpdateStatus overwrites the status of the task with the given ID.
func (s *Store) UpdateStatus(id string, status task.Status) error {
	pos := s.IndexOf(id)
	if pos < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return s.UpdateStatusAt(pos, status)
}

// Get returns the task with the given ID.
func (s *Store) Get(id string) (task.Task, error) {
	pos := s.IndexOf(id)
	if pos < 0 {
		return task.Task{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return s.tasks[pos], nil
}

// IndexOf returns the position of the task with the given ID, or -1.
func (s *Store) IndexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// IDAt returns the ID of the task at pos.
func (s *Store) IDAt(pos int) (string, error) {
	if pos < 0 || pos >= len(s.tasks) {
		return "", fmt.Errorf("position %d: %w", pos, ErrOutOfRange)
	}
	return s.tasks[pos].ID, nil
}

// Tasks returns a copy of the sequence in display order.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}
