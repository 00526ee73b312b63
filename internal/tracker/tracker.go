// Package tracker is the controller between the user surface, the task
// store and the lifecycle scheduler.
//
// Every user action resolves a display position to a task ID, mutates the
// store, persists the whole sequence, reconciles the scheduler's timers and
// publishes a notification event. Expired timers flow through the same path
// as a manual change to completed. A Tracker is owned by a single event loop
// and is not safe for concurrent use; only the event channel crosses
// goroutines.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/nibzard/tasktrack-go/internal/logging"
	"github.com/nibzard/tasktrack-go/internal/notify"
	"github.com/nibzard/tasktrack-go/internal/scheduler"
	"github.com/nibzard/tasktrack-go/internal/store"
	"github.com/nibzard/tasktrack-go/internal/task"
)

// DefaultEventBuffer is the capacity of the event channel.
const DefaultEventBuffer = 64

var (
	// ErrIncompleteDraft is returned when a required form field is blank.
	ErrIncompleteDraft = errors.New("title, date and time are required")
	// ErrSaveFailed wraps a persistence failure that survived one retry.
	// The in-memory change is kept.
	ErrSaveFailed = errors.New("save failed")
)

// Draft holds the form fields of a task that is not in the sequence.
type Draft struct {
	Title  string
	Date   string
	Time   string
	Status task.Status
}

// DraftOf returns the form fields of t.
func DraftOf(t task.Task) Draft {
	return Draft{Title: t.Title, Date: t.Date, Time: t.Time, Status: t.Status}
}

// Recorder receives every published event, e.g. the activity journal.
type Recorder interface {
	Record(notify.Event) error
}

// HookFunc is called with the task after it auto-completes.
type HookFunc func(task.Task)

// Tracker coordinates the store and the scheduler.
type Tracker struct {
	store    *store.Store
	sched    *scheduler.Scheduler
	now      func() time.Time
	logger   *log.Logger
	recorder Recorder
	hook     HookFunc
	events   chan notify.Event
	saveLog  *rate.Sometimes
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithScheduler uses s instead of a scheduler with the default interval.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(t *Tracker) { t.sched = s }
}

// WithInterval sets the countdown tick interval.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) { t.sched = scheduler.New(d) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the console logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithRecorder adds an event recorder.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.events = make(chan notify.Event, n)
		}
	}
}

// WithHook sets the auto-completion hook.
func WithHook(fn HookFunc) Option {
	return func(t *Tracker) { t.hook = fn }
}

// WithSaveLogInterval limits how often persistence failures are logged.
func WithSaveLogInterval(d time.Duration) Option {
	return func(t *Tracker) { t.saveLog = &rate.Sometimes{First: 1, Interval: d} }
}

// New creates a tracker over s. Call Start before use.
func New(s *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   s,
		now:     time.Now,
		logger:  logging.Discard(),
		events:  make(chan notify.Event, DefaultEventBuffer),
		saveLog: &rate.Sometimes{First: 1, Interval: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.sched == nil {
		t.sched = scheduler.New(scheduler.DefaultInterval)
	}
	return t
}

// Start loads the persisted sequence and arms timers for in-progress tasks.
// A read error leaves the sequence empty and is returned.
func (t *Tracker) Start() error {
	err := t.store.Load()
	if err != nil {
		t.logger.Warn("could not read tasks, starting empty", "key", t.store.Key(), "err", err)
	}
	t.reconcile()
	t.logger.Debug("tasks loaded", "count", t.store.Len(), "timers", t.sched.Active())
	return err
}

// Submit adds a task built from d.
func (t *Tracker) Submit(d Draft) (task.Task, error) {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Date) == "" || strings.TrimSpace(d.Time) == "" {
		return task.Task{}, ErrIncompleteDraft
	}
	status := d.Status
	if status == "" {
		status = task.StatusScheduled
	}
	if !status.Valid() {
		return task.Task{}, fmt.Errorf("%w: %q", task.ErrInvalidStatus, status)
	}

	added := t.store.Add(task.Task{
		Title:  d.Title,
		Date:   strings.TrimSpace(d.Date),
		Time:   strings.TrimSpace(d.Time),
		Status: status,
	})
	err := t.save()
	t.reconcile()
	t.logger.Debug("task added", "id", added.ID, "title", added.Title, "status", added.Status)
	t.emit(notify.TaskAdded(added, t.now()))
	return added, t.saveFailed(err)
}

// Delete removes the task at pos.
func (t *Tracker) Delete(pos int) (task.Task, error) {
	removed, err := t.store.RemoveAt(pos)
	if err != nil {
		return task.Task{}, err
	}
	err = t.save()
	t.reconcile()
	t.logger.Debug("task deleted", "id", removed.ID, "title", removed.Title)
	t.emit(notify.TaskDeleted(removed, t.now()))
	return removed, t.saveFailed(err)
}

// Edit removes the task at pos and returns its fields for the form. The task
// only returns to the sequence if the draft is submitted again.
func (t *Tracker) Edit(pos int) (Draft, error) {
	removed, err := t.store.RemoveAt(pos)
	if err != nil {
		return Draft{}, err
	}
	err = t.save()
	t.reconcile()
	t.logger.Debug("task extracted for edit", "id", removed.ID, "title", removed.Title)
	return DraftOf(removed), t.saveFailed(err)
}

// SetStatus changes the status of the task at pos.
func (t *Tracker) SetStatus(pos int, status task.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", task.ErrInvalidStatus, status)
	}
	id, err := t.store.IDAt(pos)
	if err != nil {
		return err
	}
	_, err = t.changeStatus(id, status, false)
	return err
}

// Advance runs the scheduler ticks due now. Every expired task becomes
// completed and triggers the hook.
func (t *Tracker) Advance() scheduler.Result {
	now := t.now()
	res := t.sched.Advance(now)
	for _, id := range res.Expired {
		completed, err := t.changeStatus(id, task.StatusCompleted, true)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		t.logger.Info("task completed", "id", id, "title", completed.Title)
		if t.hook != nil {
			t.hook(completed)
		}
	}
	return res
}

func (t *Tracker) changeStatus(id string, status task.Status, auto bool) (task.Task, error) {
	if err := t.store.UpdateStatus(id, status); err != nil {
		return task.Task{}, err
	}
	changed, _ := t.store.Get(id)
	err := t.save()
	t.reconcile()
	t.logger.Debug("status changed", "id", id, "status", status, "auto", auto)
	t.emit(notify.StatusChanged(changed, status, auto, t.now()))
	return changed, t.saveFailed(err)
}

// Countdown returns the current countdown of the task with the given ID.
func (t *Tracker) Countdown(id string) (scheduler.Countdown, bool) {
	return t.sched.Countdown(id, t.now())
}

// Tasks returns a snapshot of the sequence in display order.
func (t *Tracker) Tasks() []task.Task {
	return t.store.Tasks()
}

// Len returns the number of tasks.
func (t *Tracker) Len() int {
	return t.store.Len()
}

// Active returns the number of running countdowns.
func (t *Tracker) Active() int {
	return t.sched.Active()
}

// NextDue reports when Advance next has work to do.
func (t *Tracker) NextDue() (time.Time, bool) {
	return t.sched.NextDue()
}

// Interval returns the countdown tick interval.
func (t *Tracker) Interval() time.Duration {
	return t.sched.Interval()
}

// Events returns the notification channel.
func (t *Tracker) Events() <-chan notify.Event {
	return t.events
}

// Stop cancels all timers.
func (t *Tracker) Stop() {
	t.sched.Stop()
}

func (t *Tracker) reconcile() {
	armed, cancelled := t.sched.Reconcile(t.store.Tasks(), t.now())
	if len(armed) > 0 || len(cancelled) > 0 {
		t.logger.Debug("timers reconciled", "armed", len(armed), "cancelled", len(cancelled), "active", t.sched.Active())
	}
}

// save persists the sequence, retrying once.
func (t *Tracker) save() error {
	if err := t.store.Persist(); err == nil {
		return nil
	}
	return t.store.Persist()
}

// saveFailed publishes save-failed for a non-nil save error. It runs after
// the action's own event so the failure is reported last. The in-memory
// state is kept either way.
func (t *Tracker) saveFailed(err error) error {
	if err == nil {
		return nil
	}
	t.saveLog.Do(func() {
		t.logger.Error("could not save tasks; changes are kept in memory", "key", t.store.Key(), "err", err)
	})
	t.emit(notify.SaveFailed(err, t.now()))
	return fmt.Errorf("%w: %w", ErrSaveFailed, err)
}

func (t *Tracker) emit(ev notify.Event) {
	if t.recorder != nil {
		if err := t.recorder.Record(ev); err != nil {
			t.logger.Warn("could not record event", "kind", ev.Kind, "err", err)
		}
	}
	select {
	case t.events <- ev:
	default:
		t.logger.Warn("event buffer full, dropping event", "kind", ev.Kind, "message", ev.Message)
	}
}
