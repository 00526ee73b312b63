// Package hooks invokes the external command configured to run when a task
// auto-completes.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktrack-go/internal/task"
)

// Options configures a hook invocation.
type Options struct {
	Command string
	Task    task.Task
	WorkDir string
	Timeout time.Duration
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
	Output   string
}

// Args returns the hook arguments for t: <task-id> <status> <title> <deadline>.
// The deadline is RFC 3339, or empty when the task has none.
func Args(t task.Task) []string {
	deadline := ""
	if d, ok := t.Deadline(); ok {
		deadline = d.Format(time.RFC3339)
	}
	return []string{t.ID, string(t.Status), t.Title, deadline}
}

// Invoke runs the hook command with the expected arguments. Output is
// captured rather than written to the terminal.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if strings.TrimSpace(opts.Command) == "" {
		return Result{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, opts.Command, Args(opts.Task)...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
		Output:   strings.TrimSpace(out.String()),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

// DefaultTimeout bounds a hook started by Async.
const DefaultTimeout = 30 * time.Second

// Async returns a function that runs the hook command for a task in its own
// goroutine and logs the outcome. It returns nil when command is empty.
func Async(command, workDir string, logger *log.Logger) func(task.Task) {
	run := Sync(context.Background(), command, workDir, logger)
	if run == nil {
		return nil
	}
	return func(t task.Task) {
		go run(t)
	}
}

// Sync is like Async but runs the hook before returning. Cancelling ctx
// kills a running hook.
func Sync(ctx context.Context, command, workDir string, logger *log.Logger) func(task.Task) {
	if strings.TrimSpace(command) == "" {
		return nil
	}
	return func(t task.Task) {
		res, err := Invoke(ctx, Options{
			Command: command,
			Task:    t,
			WorkDir: workDir,
			Timeout: DefaultTimeout,
		})
		if err != nil {
			logger.Warn("hook failed", "task", t.ID, "exit", res.ExitCode, "output", res.Output, "err", err)
			return
		}
		logger.Debug("hook ran", "task", t.ID, "output", res.Output)
	}
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
