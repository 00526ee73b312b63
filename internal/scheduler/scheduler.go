// Package scheduler runs per-task countdown timers for in-progress tasks.
//
// The scheduler owns no goroutines. The event loop that owns the task
// sequence calls Reconcile after every state change and Advance whenever
// NextDue has passed; timers are multiplexed cooperatively on that loop.
package scheduler

import (
	"sort"
	"time"

	"github.com/nibzard/tasktrack-go/internal/task"
)

// DefaultInterval is the countdown tick period.
const DefaultInterval = time.Second

// Countdown is the display state of one timer at one instant.
type Countdown struct {
	TaskID    string
	Remaining time.Duration
	// Progress is 1 - remaining/total, in [0, 1].
	Progress float64
	Text     string
}

// Result is the outcome of one Advance call.
type Result struct {
	// Countdowns holds one entry per timer that ticked and is still running.
	Countdowns []Countdown
	// Expired lists task IDs whose deadline elapsed on this tick. Their
	// timers have been stopped; each ID is reported exactly once.
	Expired []string
}

type timer struct {
	taskID   string
	date     string
	clock    string
	deadline time.Time
	valid    bool
	total    time.Duration
	armedAt  time.Time
	next     time.Time
}

// Scheduler tracks one timer per in-progress task, keyed by task ID.
// It is not safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	timers   map[string]*timer
}

// New creates a scheduler ticking every interval. A non-positive interval
// uses DefaultInterval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		timers:   make(map[string]*timer),
	}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Reconcile brings the timer set in line with tasks: timers are armed for
// in-progress tasks that lack one, cancelled for tasks no longer in progress,
// and kept untouched when the task and its date/time are unchanged. A task
// whose date or time changed gets a fresh timer.
func (s *Scheduler) Reconcile(tasks []task.Task, now time.Time) (armed, cancelled []string) {
	want := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		if t.ID == "" || t.Malformed() || t.Status != task.StatusInProgress {
			continue
		}
		want[t.ID] = t
	}

	for id, tm := range s.timers {
		t, ok := want[id]
		if ok && t.Date == tm.date && t.Time == tm.clock {
			continue
		}
		delete(s.timers, id)
		if !ok {
			cancelled = append(cancelled, id)
		}
	}

	for id, t := range want {
		if _, ok := s.timers[id]; ok {
			continue
		}
		s.timers[id] = s.arm(t, now)
		armed = append(armed, id)
	}

	sort.Strings(armed)
	sort.Strings(cancelled)
	return armed, cancelled
}

func (s *Scheduler) arm(t task.Task, now time.Time) *timer {
	deadline, ok := t.Deadline()
	return &timer{
		taskID:   t.ID,
		date:     t.Date,
		clock:    t.Time,
		deadline: deadline,
		valid:    ok,
		total:    task.Remaining(deadline, ok, now),
		armedAt:  now,
		next:     now.Add(s.interval),
	}
}

// Advance runs every timer whose next tick is due at now. A timer whose
// remaining time is zero is stopped and reported in Result.Expired; the
// expiry check never runs at arm time, only on a tick.
func (s *Scheduler) Advance(now time.Time) Result {
	var res Result

	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		tm := s.timers[id]
		if now.Before(tm.next) {
			continue
		}
		for !now.Before(tm.next) {
			tm.next = tm.next.Add(s.interval)
		}

		cd := tm.countdown(now)
		if cd.Remaining <= 0 {
			delete(s.timers, id)
			res.Expired = append(res.Expired, id)
			continue
		}
		res.Countdowns = append(res.Countdowns, cd)
	}
	return res
}

// Countdown returns the display state of the timer for taskID at now,
// without ticking it.
func (s *Scheduler) Countdown(taskID string, now time.Time) (Countdown, bool) {
	tm, ok := s.timers[taskID]
	if !ok {
		return Countdown{}, false
	}
	return tm.countdown(now), true
}

// NextDue returns the earliest pending tick. ok is false when no timers are
// armed.
func (s *Scheduler) NextDue() (due time.Time, ok bool) {
	for _, tm := range s.timers {
		if !ok || tm.next.Before(due) {
			due = tm.next
			ok = true
		}
	}
	return due, ok
}

// Active returns the number of armed timers.
func (s *Scheduler) Active() int {
	return len(s.timers)
}

// Armed reports whether taskID has a running timer.
func (s *Scheduler) Armed(taskID string) bool {
	_, ok := s.timers[taskID]
	return ok
}

// Stop cancels every timer.
func (s *Scheduler) Stop() {
	s.timers = make(map[string]*timer)
}

func (tm *timer) countdown(now time.Time) Countdown {
	remaining := task.Remaining(tm.deadline, tm.valid, now)
	return Countdown{
		TaskID:    tm.taskID,
		Remaining: remaining,
		Progress:  progress(remaining, tm.total),
		Text:      task.FormatCountdown(remaining),
	}
}

func progress(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := 1 - float64(remaining)/float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
