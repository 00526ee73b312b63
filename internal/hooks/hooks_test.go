// Package hooks provides tests for the auto-completion hook.
package hooks

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktrack-go/internal/task"
)

var shipRelease = task.Task{
	ID:     "id-1",
	Title:  "Ship release",
	Date:   "2030-01-01",
	Time:   "09:00",
	Status: task.StatusCompleted,
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts use /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArgs(t *testing.T) {
	args := Args(shipRelease)
	if len(args) != 4 {
		t.Fatalf("got %d args, want 4", len(args))
	}
	if args[0] != "id-1" || args[1] != "completed" || args[2] != "Ship release" {
		t.Errorf("unexpected args: %v", args)
	}
	want := time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local).Format(time.RFC3339)
	if args[3] != want {
		t.Errorf("deadline = %q, want %q", args[3], want)
	}

	bad := shipRelease
	bad.Date = "soon"
	if got := Args(bad)[3]; got != "" {
		t.Errorf("invalid deadline = %q, want empty", got)
	}
}

// TestInvoke tests the Invoke function with various scenarios.
func TestInvoke(t *testing.T) {
	t.Run("empty command returns success without running", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Command: "  ", Task: shipRelease})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("successful hook receives task arguments", func(t *testing.T) {
		script := writeScript(t, `echo "$1|$2|$3"`)
		result, err := Invoke(context.Background(), Options{Command: script, Task: shipRelease})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Ran || result.ExitCode != 0 {
			t.Errorf("unexpected result: %+v", result)
		}
		if result.Output != "id-1|completed|Ship release" {
			t.Errorf("Output = %q", result.Output)
		}
		if len(result.Command) != 5 {
			t.Errorf("Command = %v", result.Command)
		}
	})

	t.Run("failing hook reports exit code", func(t *testing.T) {
		script := writeScript(t, "echo boom >&2\nexit 42")
		result, err := Invoke(context.Background(), Options{Command: script, Task: shipRelease})
		if err == nil {
			t.Fatal("expected error for failed hook, got nil")
		}
		if !result.Ran {
			t.Error("expected Ran to be true")
		}
		if result.ExitCode != 42 {
			t.Errorf("expected ExitCode 42, got %d", result.ExitCode)
		}
		if result.Output != "boom" {
			t.Errorf("Output = %q", result.Output)
		}
	})

	t.Run("runs in work dir", func(t *testing.T) {
		script := writeScript(t, "pwd")
		dir := t.TempDir()
		result, err := Invoke(context.Background(), Options{Command: script, Task: shipRelease, WorkDir: dir})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasSuffix(result.Output, filepath.Base(dir)) {
			t.Errorf("Output = %q, want suffix %q", result.Output, filepath.Base(dir))
		}
	})

	t.Run("timeout kills the hook", func(t *testing.T) {
		script := writeScript(t, "exec sleep 5")
		start := time.Now()
		result, err := Invoke(context.Background(), Options{Command: script, Task: shipRelease, Timeout: 50 * time.Millisecond})
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if time.Since(start) > 4*time.Second {
			t.Error("hook was not killed")
		}
		if result.ExitCode == 0 {
			t.Errorf("ExitCode = 0 after timeout")
		}
	})

	t.Run("missing command", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Command: "/nonexistent/hook", Task: shipRelease})
		if err == nil {
			t.Fatal("expected error")
		}
		if result.ExitCode != -1 {
			t.Errorf("ExitCode = %d, want -1", result.ExitCode)
		}
	})
}

func TestExitCodeFromError(t *testing.T) {
	if got := exitCodeFromError(nil); got != 0 {
		t.Errorf("nil: got %d", got)
	}
	if got := exitCodeFromError(errors.New("other")); got != -1 {
		t.Errorf("other: got %d", got)
	}
	if runtime.GOOS != "windows" {
		err := exec.Command("/bin/sh", "-c", "exit 3").Run()
		if got := exitCodeFromError(err); got != 3 {
			t.Errorf("exit 3: got %d", got)
		}
	}
}

func TestAsync(t *testing.T) {
	if fn := Async("", "", nil); fn != nil {
		t.Error("expected nil func for empty command")
	}

	out := filepath.Join(t.TempDir(), "ran")
	script := writeScript(t, `echo "$1" > "`+out+`"`)
	fn := Async(script, "", log.New(io.Discard))
	fn(shipRelease)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(out); err == nil && strings.TrimSpace(string(data)) == "id-1" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("hook did not run")
}

func TestSync(t *testing.T) {
	if fn := Sync(context.Background(), "  ", "", nil); fn != nil {
		t.Error("expected nil func for blank command")
	}

	out := filepath.Join(t.TempDir(), "ran")
	script := writeScript(t, `echo "$2" > "`+out+`"`)
	Sync(context.Background(), script, "", log.New(io.Discard))(shipRelease)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not run before returning: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "completed" {
		t.Errorf("status arg = %q, want completed", got)
	}
}
