// Package notify defines the typed events the tracker publishes for the
// presentation layer.
package notify

import (
	"fmt"
	"time"

	"github.com/nibzard/tasktrack-go/internal/task"
)

// Kind identifies an event type.
type Kind string

const (
	KindTaskAdded     Kind = "task-added"
	KindTaskDeleted   Kind = "task-deleted"
	KindStatusChanged Kind = "status-changed"
	KindSaveFailed    Kind = "save-failed"
)

// Event is a single notification.
type Event struct {
	Kind    Kind        `json:"kind"`
	TaskID  string      `json:"task_id,omitempty"`
	Title   string      `json:"title,omitempty"`
	Status  task.Status `json:"status,omitempty"`
	Auto    bool        `json:"auto,omitempty"` // status change made by the scheduler
	Message string      `json:"message"`
	Err     string      `json:"error,omitempty"`
	At      time.Time   `json:"at"`
}

// TaskAdded builds the event for a newly submitted task.
func TaskAdded(t task.Task, at time.Time) Event {
	return Event{
		Kind:    KindTaskAdded,
		TaskID:  t.ID,
		Title:   t.Title,
		Status:  t.Status,
		Message: "Task added successfully!",
		At:      at,
	}
}

// TaskDeleted builds the event for a deleted task.
func TaskDeleted(t task.Task, at time.Time) Event {
	return Event{
		Kind:    KindTaskDeleted,
		TaskID:  t.ID,
		Title:   t.Title,
		Message: "Task deleted successfully",
		At:      at,
	}
}

// StatusChanged builds the event for a status change.
func StatusChanged(t task.Task, status task.Status, auto bool, at time.Time) Event {
	return Event{
		Kind:    KindStatusChanged,
		TaskID:  t.ID,
		Title:   t.Title,
		Status:  status,
		Auto:    auto,
		Message: fmt.Sprintf("Task status changed to %s", status),
		At:      at,
	}
}

// SaveFailed builds the event for a persistence failure.
func SaveFailed(err error, at time.Time) Event {
	return Event{
		Kind:    KindSaveFailed,
		Message: "Could not save tasks; changes are kept in memory",
		Err:     err.Error(),
		At:      at,
	}
}
