package cmd

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/tasktrack-go/internal/config"
	"github.com/nibzard/tasktrack-go/internal/task"
	"github.com/nibzard/tasktrack-go/internal/tracker"
)

// addCommand submits a new task.
func addCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "Task title")
	date := fs.String("date", "", "Due date (YYYY-MM-DD)")
	clock := fs.String("time", "", "Due time (HH:MM or HH:MM:SS)")
	status := fs.String("status", string(task.StatusScheduled), "Initial status (scheduled|in-progress|completed)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	parsed, err := task.ParseStatus(*status)
	if err != nil {
		return err
	}

	s, err := openSession(cfg, sessionOptions{journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	return submitDraft(s, tracker.Draft{Title: *title, Date: *date, Time: *clock, Status: parsed})
}

func submitDraft(s *session, d tracker.Draft) error {
	_, err := s.tracker.Submit(d)
	if errors.Is(err, tracker.ErrIncompleteDraft) {
		return fmt.Errorf("title, date and time are required")
	}
	s.printEvents(stdout)
	return err
}

// lsCommand lists tasks in sequence order with their 1-based positions.
func lsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	statusFilter := fs.String("status", "", "Only show tasks with this status")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	if fs.NArg() == 1 && *statusFilter == "" {
		*statusFilter = fs.Arg(0)
	}
	var filter task.Status
	if *statusFilter != "" {
		parsed, err := task.ParseStatus(*statusFilter)
		if err != nil {
			return err
		}
		filter = parsed
	}

	s, err := openSession(cfg, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	tasks := s.tracker.Tasks()
	shown := 0
	for i, t := range tasks {
		if filter != "" && t.Status != filter {
			continue
		}
		shown++
		if t.Malformed() {
			fmt.Fprintf(stdout, "%d. [Unreadable] %s\n", i+1, task.Truncate(string(t.Raw), 60))
			continue
		}
		fmt.Fprintf(stdout, "%d. [%s] %s\n", i+1, t.Status.Label(), t.Title)
		line := "   Due: " + task.FormatDue(t.Date, t.Time)
		if cd, ok := s.tracker.Countdown(t.ID); ok {
			line += fmt.Sprintf("  Time Left: %s (%.0f%%)", cd.Text, cd.Progress*100)
		}
		fmt.Fprintln(stdout, line)
	}
	if shown == 0 {
		fmt.Fprintln(stdout, "No tasks.")
	}
	return nil
}

// rmCommand deletes the task at a position.
func rmCommand(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasktrack rm <position>")
	}
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cfg, sessionOptions{journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.tracker.Delete(pos)
	s.printEvents(stdout)
	return actionError(pos, err)
}

// statusCommand sets the status of the task at a position.
func statusCommand(cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: tasktrack status <position> <status>")
	}
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	status, err := task.ParseStatus(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cfg, sessionOptions{journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.tracker.SetStatus(pos, status)
	s.printEvents(stdout)
	return actionError(pos, err)
}

// editCommand takes the task at a position out of the sequence and prints its
// fields. With field flags the edited task is submitted again right away.
func editCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "New title")
	date := fs.String("date", "", "New due date (YYYY-MM-DD)")
	clock := fs.String("time", "", "New due time")
	status := fs.String("status", "", "New status")

	// Accept the position before or after the flags.
	var posArg string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		posArg, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if posArg == "" && fs.NArg() > 0 {
		posArg = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if posArg == "" {
		return fmt.Errorf("usage: tasktrack edit <position> [-title T] [-date D] [-time HH:MM] [-status S]")
	}
	pos, err := parsePosition(posArg)
	if err != nil {
		return err
	}
	var newStatus task.Status
	if *status != "" {
		if newStatus, err = task.ParseStatus(*status); err != nil {
			return err
		}
	}

	s, err := openSession(cfg, sessionOptions{journal: true})
	if err != nil {
		return err
	}
	defer s.Close()

	draft, err := s.tracker.Edit(pos)
	if err != nil && !errors.Is(err, tracker.ErrSaveFailed) {
		return actionError(pos, err)
	}
	s.printEvents(stdout)
	fmt.Fprintf(stdout, "title:  %s\n", draft.Title)
	fmt.Fprintf(stdout, "date:   %s\n", draft.Date)
	fmt.Fprintf(stdout, "time:   %s\n", draft.Time)
	fmt.Fprintf(stdout, "status: %s\n", draft.Status)

	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "title":
			draft.Title = *title
		case "date":
			draft.Date = *date
		case "time":
			draft.Time = *clock
		case "status":
			draft.Status = newStatus
		}
	})
	if !changed {
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "The task was removed. Add it back with:")
		fmt.Fprintf(stdout, "  tasktrack add -title %s -date %s -time %s -status %s\n",
			strconv.Quote(draft.Title), strconv.Quote(draft.Date), strconv.Quote(draft.Time), draft.Status)
		return nil
	}
	if !draft.Status.Valid() {
		draft.Status = task.StatusScheduled
	}
	return submitDraft(s, draft)
}
