package config

import "flag"

// parseFlags defines the global flags on fs and parses args.
// Only flags that were explicitly set override earlier layers.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasktrack", flag.ContinueOnError)
	}

	storageFile := fs.String("storage", cfg.StorageFile, "Path to the storage file")
	storageKey := fs.String("key", cfg.StorageKey, "Storage key holding the task list")
	schemaFile := fs.String("schema", cfg.SchemaFile, "Schema file used by doctor (default: embedded)")
	logDir := fs.String("log-dir", cfg.LogDir, "Log directory")
	tick := fs.Int("tick", cfg.TickIntervalMS, "Countdown tick interval in milliseconds")
	toast := fs.Int("toast", cfg.ToastSeconds, "Toast duration in seconds")
	hook := fs.String("hook", cfg.HookCommand, "Hook command to run when a task auto-completes")
	journal := fs.Bool("journal", cfg.Journal, "Write the JSONL activity journal")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	logTimestamps := fs.Bool("log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	logCaller := fs.Bool("log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		var field string
		switch f.Name {
		case "storage":
			cfg.StorageFile, field = *storageFile, "storage_file"
		case "key":
			cfg.StorageKey, field = *storageKey, "storage_key"
		case "schema":
			cfg.SchemaFile, field = *schemaFile, "schema_file"
		case "log-dir":
			cfg.LogDir, field = *logDir, "log_dir"
		case "tick":
			cfg.TickIntervalMS, field = *tick, "tick_interval_ms"
		case "toast":
			cfg.ToastSeconds, field = *toast, "toast_seconds"
		case "hook":
			cfg.HookCommand, field = *hook, "hook_command"
		case "journal":
			cfg.Journal, field = *journal, "journal"
		case "log-level":
			cfg.LogLevel, field = *logLevel, "log_level"
		case "log-format":
			cfg.LogFormat, field = *logFormat, "log_format"
		case "log-timestamps":
			cfg.LogTimestamps, field = *logTimestamps, "log_timestamps"
		case "log-caller":
			cfg.LogCaller, field = *logCaller, "log_caller"
		}
		if field != "" && sources != nil {
			sources[field] = SourceFlag
		}
	})

	return nil
}
