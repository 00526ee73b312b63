package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/tasktrack-go/internal/config"
	"github.com/nibzard/tasktrack-go/internal/logging"
)

// tailCommand prints the latest activity journal.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.StorageFile)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", config.DisplayPath(logPath))
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}

// configCommand prints the effective configuration and the source of each
// value. With -init it writes a starter user config file.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasktrack config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	initFile := fs.Bool("init", false, "Write an example user config file if none exists")
	example := fs.Bool("example", false, "Print the example config")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	switch {
	case *example:
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	case *initFile:
		return initUserConfig()
	}

	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "# config file: %s\n", config.DisplayPath(file))
	} else {
		fmt.Fprintln(stdout, "# no config file, using defaults")
	}
	for _, f := range cws.Config.Fields() {
		fmt.Fprintf(stdout, "%-16s = %-40q # %s\n", f.Key, displayValue(f), cws.Sources[f.Key])
	}
	return nil
}

func displayValue(f config.Field) string {
	switch f.Key {
	case "storage_file", "schema_file", "log_dir":
		if f.Value != "" {
			return config.DisplayPath(f.Value)
		}
	}
	return f.Value
}

func initUserConfig() error {
	path, err := config.UserConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stdout, "Config already exists: %s\n", config.DisplayPath(path))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", config.DisplayPath(path))
	return nil
}
