package notify

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tasktrack-go/internal/task"
)

func TestMessages(t *testing.T) {
	at := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	tk := task.Task{ID: "id-1", Title: "Ship release", Status: task.StatusScheduled}

	tests := []struct {
		name  string
		event Event
		kind  Kind
		msg   string
	}{
		{"added", TaskAdded(tk, at), KindTaskAdded, "Task added successfully!"},
		{"deleted", TaskDeleted(tk, at), KindTaskDeleted, "Task deleted successfully"},
		{"status", StatusChanged(tk, task.StatusCompleted, true, at), KindStatusChanged, "Task status changed to completed"},
		{"save failed", SaveFailed(errors.New("disk full"), at), KindSaveFailed, "Could not save tasks; changes are kept in memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", tt.event.Kind, tt.kind)
			}
			if tt.event.Message != tt.msg {
				t.Errorf("Message = %q, want %q", tt.event.Message, tt.msg)
			}
			if !tt.event.At.Equal(at) {
				t.Errorf("At = %v", tt.event.At)
			}
		})
	}
}

func TestEventJSON(t *testing.T) {
	ev := SaveFailed(errors.New("disk full"), time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"kind":"save-failed"`) || !strings.Contains(s, `"error":"disk full"`) {
		t.Errorf("unexpected JSON: %s", s)
	}
	if strings.Contains(s, "task_id") {
		t.Errorf("empty task_id should be omitted: %s", s)
	}
}
