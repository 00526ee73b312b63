package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nibzard/tasktrack-go/internal/config"
	"github.com/nibzard/tasktrack-go/internal/ui"
)

// tuiCommand launches the interactive tracker.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY; use ls or watch instead")
	}

	s, err := openSession(cfg, sessionOptions{journal: true, logToFile: true})
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.RunTUI(ctx, s.tracker, ui.Options{ToastTTL: cfg.ToastTTL()})
}

// watchCommand runs the countdowns without a UI, printing each tick, until no
// task is in progress or ctx is cancelled.
func watchCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	quiet := fs.Bool("q", false, "Only print notifications, not every tick")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := openSession(cfg, sessionOptions{journal: true, hookCtx: ctx})
	if err != nil {
		return err
	}
	defer s.Close()

	tr := s.tracker
	if tr.Active() == 0 {
		fmt.Fprintln(stdout, "No tasks in progress.")
		return nil
	}
	fmt.Fprintf(stdout, "Watching %d countdown(s) (Ctrl+C to stop)\n", tr.Active())

	for {
		due, ok := tr.NextDue()
		if !ok {
			break
		}
		wait := time.Until(due)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		res := tr.Advance()
		if !*quiet && len(res.Countdowns) > 0 {
			titles := make(map[string]string)
			for _, t := range tr.Tasks() {
				titles[t.ID] = t.Title
			}
			for _, cd := range res.Countdowns {
				fmt.Fprintf(stdout, "%s: %s\n", titles[cd.TaskID], cd.Text)
			}
		}
		s.printEvents(stdout)
	}

	fmt.Fprintln(stdout, "All countdowns finished.")
	return nil
}
