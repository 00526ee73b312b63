// Package cmd implements the CLI command structure for tasktrack.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktrack-go/internal/appdir"
	"github.com/nibzard/tasktrack-go/internal/config"
	"github.com/nibzard/tasktrack-go/internal/hooks"
	"github.com/nibzard/tasktrack-go/internal/logging"
	"github.com/nibzard/tasktrack-go/internal/storage"
	"github.com/nibzard/tasktrack-go/internal/store"
	"github.com/nibzard/tasktrack-go/internal/tracker"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams; tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the tasktrack CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasktrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No args or a leading flag means the TUI.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	cfg := cws.Config
	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(cfg, remainingArgs)
	case "status":
		return statusCommand(cfg, remainingArgs)
	case "edit":
		return editCommand(cfg, remainingArgs)
	case "watch":
		return watchCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// session is an opened tracker and the resources behind it.
type session struct {
	tracker *tracker.Tracker
	journal *logging.Journal
	logFile *os.File
	logger  *log.Logger
}

type sessionOptions struct {
	// journal records events to the per-run activity journal.
	journal bool
	// logToFile sends console logs to the journal directory instead of stderr.
	logToFile bool
	// hookCtx, when set, runs the hook inline under this context so it
	// finishes before the command exits.
	hookCtx context.Context
}

// openSession builds and starts a tracker over the configured storage file.
func openSession(cfg *config.Config, opts sessionOptions) (*session, error) {
	s := &session{}
	logOut := stderr
	if opts.logToFile {
		f, err := openConsoleLog(cfg)
		if err != nil {
			return nil, err
		}
		s.logFile = f
		logOut = f
	}
	s.logger = logging.NewConsoleFromConfig(logOut, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	kv, err := storage.OpenFile(cfg.StorageFile)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	hook := hooks.Async(cfg.HookCommand, "", s.logger)
	if opts.hookCtx != nil {
		hook = hooks.Sync(opts.hookCtx, cfg.HookCommand, "", s.logger)
	}
	trOpts := []tracker.Option{
		tracker.WithInterval(cfg.TickInterval()),
		tracker.WithLogger(s.logger),
		tracker.WithHook(hook),
	}
	if opts.journal && cfg.Journal {
		journal, err := logging.NewJournal(cfg.LogDir, cfg.StorageFile)
		if err != nil {
			s.logger.Warn("activity journal disabled", "err", err)
		} else {
			s.journal = journal
			trOpts = append(trOpts, tracker.WithRecorder(journal))
		}
	}

	s.tracker = tracker.New(store.New(kv, cfg.StorageKey), trOpts...)
	// A corrupt blob reads as empty; Start already logged it.
	_ = s.tracker.Start()
	return s, nil
}

func openConsoleLog(cfg *config.Config) (*os.File, error) {
	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.StorageFile)
	if err != nil {
		return nil, fmt.Errorf("finding log directory: %w", err)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, appdir.ConsoleLog), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open console log: %w", err)
	}
	return f, nil
}

// Close stops the timers and releases the journal and log file.
func (s *session) Close() {
	if s.tracker != nil {
		s.tracker.Stop()
	}
	if err := s.journal.Close(); err != nil && s.logger != nil {
		s.logger.Warn("closing journal", "err", err)
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// printEvents writes every pending notification.
func (s *session) printEvents(w io.Writer) {
	for {
		select {
		case ev := <-s.tracker.Events():
			if ev.Err != "" {
				fmt.Fprintf(w, "%s (%s)\n", ev.Message, ev.Err)
				continue
			}
			fmt.Fprintln(w, ev.Message)
		default:
			return
		}
	}
}

// parsePosition converts a 1-based position as shown by ls to an index.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q: expected a number from ls", arg)
	}
	return n - 1, nil
}

// actionError reports a failed action. A save failure is an error even though
// the change happened in memory, since the CLI exits right after.
func actionError(pos int, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrOutOfRange):
		return fmt.Errorf("no task at position %d", pos+1)
	default:
		return err
	}
}

// versionCommand prints the version.
func versionCommand() error {
	fmt.Fprintf(stdout, "tasktrack version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasktrack - A task tracker with live countdowns")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasktrack [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                       Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  add -title T -date D -time HH:MM [-status S]")
	fmt.Fprintln(w, "                            Add a task")
	fmt.Fprintln(w, "  ls [-status S]            List tasks with their countdowns")
	fmt.Fprintln(w, "  rm <position>             Delete a task")
	fmt.Fprintln(w, "  status <position> <S>     Change a task's status")
	fmt.Fprintln(w, "  edit <position> [fields]  Take a task back into a draft")
	fmt.Fprintln(w, "  watch                     Tick countdowns until no task is in progress")
	fmt.Fprintln(w, "  doctor [-v]               Check config, storage, and stored tasks")
	fmt.Fprintln(w, "  tail [-n N] [-f]          Show the latest activity journal")
	fmt.Fprintln(w, "  config [-init]            Show the effective configuration")
	fmt.Fprintln(w, "  version                   Show version information")
	fmt.Fprintln(w, "  help                      Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Positions are 1-based, as printed by ls.")
	fmt.Fprintln(w, "Statuses: scheduled, in-progress, completed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
