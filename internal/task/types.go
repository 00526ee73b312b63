// Package task defines the task record and its status lifecycle.
package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Status represents a task status.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ErrInvalidStatus is returned for status values outside the enum.
var ErrInvalidStatus = errors.New("invalid status")

// Statuses returns the status values in selector order.
func Statuses() []Status {
	return []Status{StatusScheduled, StatusInProgress, StatusCompleted}
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the following status in selector order, wrapping around.
// Completed cycles back to scheduled.
func (s Status) Next() Status {
	switch s {
	case StatusScheduled:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusScheduled
	}
}

// Label returns the display form, e.g. "In-progress".
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(string(s))
	return string(unicode.ToUpper(r)) + string(s)[size:]
}

// ParseStatus normalizes a user-supplied status. Accepts common aliases:
//   - "in_progress", "inprogress", "in progress", "doing" -> "in-progress"
//   - "done", "complete" -> "completed"
//   - "todo", "pending" -> "scheduled"
func ParseStatus(input string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "scheduled", "todo", "pending":
		return StatusScheduled, nil
	case "in-progress", "in_progress", "inprogress", "in progress", "doing":
		return StatusInProgress, nil
	case "completed", "complete", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w %q, must be one of: scheduled, in-progress, completed", ErrInvalidStatus, input)
}

// Task is a single tracked task.
type Task struct {
	// ID is assigned when the task enters the in-memory sequence. Not persisted.
	ID     string `json:"-"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status Status `json:"status"`

	// Raw holds a persisted record that could not be decoded. Such records
	// are written back unchanged.
	Raw json.RawMessage `json:"-"`
}

type record struct {
	Title  string `json:"title"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status Status `json:"status"`
}

// Malformed reports whether the task came from an undecodable record.
func (t Task) Malformed() bool {
	return len(t.Raw) > 0
}

// MarshalJSON writes the four persisted fields, or the raw record for
// malformed tasks.
func (t Task) MarshalJSON() ([]byte, error) {
	if t.Malformed() {
		return t.Raw, nil
	}
	return json.Marshal(record{Title: t.Title, Date: t.Date, Time: t.Time, Status: t.Status})
}

// UnmarshalJSON never fails: records that do not decode are kept in Raw.
func (t *Task) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	var rec record
	if bytes.Equal(trimmed, []byte("null")) || json.Unmarshal(trimmed, &rec) != nil {
		*t = Task{Raw: append(json.RawMessage(nil), trimmed...)}
		return nil
	}
	*t = Task{Title: rec.Title, Date: rec.Date, Time: rec.Time, Status: rec.Status}
	return nil
}

// Deadline layouts accepted for date + "T" + time.
var deadlineLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Deadline parses date and time in the local timezone.
// ok is false when the fields do not form a valid instant.
func (t Task) Deadline() (deadline time.Time, ok bool) {
	return ParseDeadline(t.Date, t.Time, time.Local)
}

// ParseDeadline parses a YYYY-MM-DD date and HH:MM[:SS] time in loc.
func ParseDeadline(date, clock string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.TrimSpace(date) + "T" + strings.TrimSpace(clock)
	for _, layout := range deadlineLayouts {
		if d, err := time.ParseInLocation(layout, value, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Remaining returns max(deadline-now, 0). An invalid deadline is already past.
func Remaining(deadline time.Time, ok bool, now time.Time) time.Duration {
	if !ok {
		return 0
	}
	d := deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RemainingSeconds rounds d up to whole seconds, so only a zero duration
// reports zero.
func RemainingSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

// FormatCountdown renders d as "Hh Mm Ss". Hours do not roll over into days.
func FormatCountdown(d time.Duration) string {
	secs := RemainingSeconds(d)
	return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
}

// FormatDue renders the deadline as "01 Jan 2030, 9:00 am".
func FormatDue(date, clock string) string {
	d, ok := ParseDeadline(date, clock, time.Local)
	if !ok {
		return "Invalid Date"
	}
	return d.Format("02 Jan 2006, 3:04 pm")
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return strings.Repeat(".", max(n, 0))
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
