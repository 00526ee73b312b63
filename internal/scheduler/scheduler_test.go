package scheduler

import (
	"reflect"
	"testing"
	"time"

	"github.com/nibzard/tasktrack-go/internal/task"
)

var base = time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local)

func inProgress(id string, deadline time.Time) task.Task {
	return task.Task{
		ID:     id,
		Title:  id,
		Date:   deadline.Format("2006-01-02"),
		Time:   deadline.Format("15:04:05"),
		Status: task.StatusInProgress,
	}
}

func TestReconcileArmsOnlyInProgress(t *testing.T) {
	s := New(0)
	tasks := []task.Task{
		inProgress("a", base.Add(time.Minute)),
		{ID: "b", Date: "2030-01-01", Time: "10:00", Status: task.StatusScheduled},
		{ID: "c", Date: "2030-01-01", Time: "10:00", Status: task.StatusCompleted},
		{ID: "d", Raw: []byte(`{"title":1}`), Status: task.StatusInProgress},
	}

	armed, cancelled := s.Reconcile(tasks, base)
	if !reflect.DeepEqual(armed, []string{"a"}) {
		t.Errorf("armed = %v, want [a]", armed)
	}
	if len(cancelled) != 0 {
		t.Errorf("cancelled = %v", cancelled)
	}
	if s.Active() != 1 || !s.Armed("a") {
		t.Errorf("Active = %d", s.Active())
	}
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval = %v", s.Interval())
	}
}

func TestCountdownDecreasesThenExpiresOnce(t *testing.T) {
	s := New(time.Second)
	s.Reconcile([]task.Task{inProgress("a", base.Add(5*time.Second))}, base)

	var last time.Duration = 1 << 62
	expired := 0
	for i := 1; i <= 8; i++ {
		res := s.Advance(base.Add(time.Duration(i) * time.Second))
		expired += len(res.Expired)
		for _, cd := range res.Countdowns {
			if cd.Remaining >= last {
				t.Fatalf("tick %d: remaining %v did not decrease from %v", i, cd.Remaining, last)
			}
			last = cd.Remaining
		}
		if i == 5 && len(res.Expired) != 1 {
			t.Fatalf("tick 5: expected expiry, got %+v", res)
		}
	}
	if expired != 1 {
		t.Errorf("expired %d times, want 1", expired)
	}
	if s.Active() != 0 {
		t.Errorf("timer still armed after expiry")
	}
}

func TestTwoSecondScenario(t *testing.T) {
	s := New(time.Second)
	s.Reconcile([]task.Task{inProgress("a", base.Add(2*time.Second))}, base)

	res := s.Advance(base.Add(time.Second + 5*time.Millisecond))
	if len(res.Countdowns) != 1 || res.Countdowns[0].Text != "0h 0m 1s" {
		t.Fatalf("after ~1s: %+v", res)
	}
	if len(res.Expired) != 0 {
		t.Fatalf("expired early: %+v", res.Expired)
	}

	res = s.Advance(base.Add(2*time.Second + 5*time.Millisecond))
	if !reflect.DeepEqual(res.Expired, []string{"a"}) {
		t.Fatalf("after ~2s: %+v", res)
	}
}

func TestPastDeadlineExpiresOnNextTickNotAtArm(t *testing.T) {
	s := New(time.Second)
	s.Reconcile([]task.Task{inProgress("a", base.Add(-time.Hour))}, base)

	cd, ok := s.Countdown("a", base)
	if !ok || cd.Remaining != 0 || cd.Text != "0h 0m 0s" {
		t.Fatalf("Countdown = %+v, %v", cd, ok)
	}

	if res := s.Advance(base); len(res.Expired) != 0 {
		t.Fatalf("expired at arm time: %+v", res)
	}
	if res := s.Advance(base.Add(999 * time.Millisecond)); len(res.Expired) != 0 {
		t.Fatalf("expired before first tick: %+v", res)
	}
	if res := s.Advance(base.Add(time.Second)); !reflect.DeepEqual(res.Expired, []string{"a"}) {
		t.Fatalf("not expired on first tick: %+v", res)
	}
}

func TestInvalidDeadlineTreatedAsPast(t *testing.T) {
	s := New(time.Second)
	s.Reconcile([]task.Task{{ID: "a", Date: "someday", Time: "noon", Status: task.StatusInProgress}}, base)

	res := s.Advance(base.Add(time.Second))
	if !reflect.DeepEqual(res.Expired, []string{"a"}) {
		t.Fatalf("Expired = %v", res.Expired)
	}
}

func TestReconcileKeepsTotalAcrossUnrelatedChanges(t *testing.T) {
	s := New(time.Second)
	a := inProgress("a", base.Add(10*time.Second))
	s.Reconcile([]task.Task{a}, base)

	later := base.Add(5 * time.Second)
	armed, cancelled := s.Reconcile([]task.Task{a, {ID: "b", Status: task.StatusScheduled}}, later)
	if len(armed) != 0 || len(cancelled) != 0 {
		t.Fatalf("armed=%v cancelled=%v, want no changes", armed, cancelled)
	}

	cd, _ := s.Countdown("a", later)
	if cd.Progress < 0.49 || cd.Progress > 0.51 {
		t.Errorf("Progress = %v, want 0.5 (total preserved)", cd.Progress)
	}
}

func TestReconcileRearmsOnDeadlineChange(t *testing.T) {
	s := New(time.Second)
	a := inProgress("a", base.Add(10*time.Second))
	s.Reconcile([]task.Task{a}, base)

	a.Time = base.Add(20 * time.Second).Format("15:04:05")
	later := base.Add(5 * time.Second)
	armed, _ := s.Reconcile([]task.Task{a}, later)
	if !reflect.DeepEqual(armed, []string{"a"}) {
		t.Fatalf("armed = %v", armed)
	}
	cd, _ := s.Countdown("a", later)
	if cd.Progress != 0 {
		t.Errorf("Progress = %v, want 0 for a fresh timer", cd.Progress)
	}
}

func TestReconcileCancelsTimers(t *testing.T) {
	s := New(time.Second)
	a := inProgress("a", base.Add(time.Minute))
	b := inProgress("b", base.Add(time.Minute))
	s.Reconcile([]task.Task{a, b}, base)

	a.Status = task.StatusScheduled
	_, cancelled := s.Reconcile([]task.Task{a}, base)
	if !reflect.DeepEqual(cancelled, []string{"a", "b"}) {
		t.Errorf("cancelled = %v", cancelled)
	}
	if s.Active() != 0 {
		t.Errorf("Active = %d", s.Active())
	}
}

func TestCompletedTaskRestartsWhenMovedBack(t *testing.T) {
	s := New(time.Second)
	a := inProgress("a", base.Add(time.Second))
	s.Reconcile([]task.Task{a}, base)
	if res := s.Advance(base.Add(time.Second)); len(res.Expired) != 1 {
		t.Fatalf("expected expiry: %+v", res)
	}

	// Moving the completed task back to in-progress arms a fresh timer with a
	// past deadline, which expires on the next tick.
	now := base.Add(3 * time.Second)
	armed, _ := s.Reconcile([]task.Task{a}, now)
	if len(armed) != 1 {
		t.Fatalf("armed = %v", armed)
	}
	if res := s.Advance(now.Add(time.Second)); len(res.Expired) != 1 {
		t.Fatalf("expected second expiry: %+v", res)
	}
}

func TestTimersTickOnTheirOwnPhase(t *testing.T) {
	s := New(time.Second)
	a := inProgress("a", base.Add(time.Hour))
	s.Reconcile([]task.Task{a}, base)

	b := inProgress("b", base.Add(time.Hour))
	s.Reconcile([]task.Task{a, b}, base.Add(500*time.Millisecond))

	due, ok := s.NextDue()
	if !ok || !due.Equal(base.Add(time.Second)) {
		t.Fatalf("NextDue = %v, %v", due, ok)
	}

	res := s.Advance(base.Add(time.Second))
	if len(res.Countdowns) != 1 || res.Countdowns[0].TaskID != "a" {
		t.Fatalf("at 1s: %+v", res.Countdowns)
	}
	due, _ = s.NextDue()
	if !due.Equal(base.Add(1500 * time.Millisecond)) {
		t.Errorf("NextDue = %v, want b's tick", due)
	}
	res = s.Advance(due)
	if len(res.Countdowns) != 1 || res.Countdowns[0].TaskID != "b" {
		t.Fatalf("at 1.5s: %+v", res.Countdowns)
	}
}

func TestAdvanceSkipsMissedTicks(t *testing.T) {
	s := New(time.Second)
	s.Reconcile([]task.Task{inProgress("a", base.Add(time.Hour))}, base)

	s.Advance(base.Add(10*time.Second + 100*time.Millisecond))
	due, _ := s.NextDue()
	if !due.Equal(base.Add(11 * time.Second)) {
		t.Errorf("NextDue = %v, want %v", due, base.Add(11*time.Second))
	}
}

func TestNextDueEmptyAndStop(t *testing.T) {
	s := New(time.Second)
	if _, ok := s.NextDue(); ok {
		t.Error("NextDue should be false with no timers")
	}
	s.Reconcile([]task.Task{inProgress("a", base.Add(time.Hour))}, base)
	s.Stop()
	if s.Active() != 0 {
		t.Errorf("Active after Stop = %d", s.Active())
	}
	if _, ok := s.Countdown("a", base); ok {
		t.Error("Countdown should be unavailable after Stop")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		remaining, total time.Duration
		want             float64
	}{
		{10 * time.Second, 10 * time.Second, 0},
		{5 * time.Second, 10 * time.Second, 0.5},
		{0, 10 * time.Second, 1},
		{0, 0, 1},
		{20 * time.Second, 10 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := progress(tt.remaining, tt.total); got != tt.want {
			t.Errorf("progress(%v, %v) = %v, want %v", tt.remaining, tt.total, got, tt.want)
		}
	}
}
