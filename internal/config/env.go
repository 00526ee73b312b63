package config

import (
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from TASKTRACK_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	setString := func(env string, target *string, field string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			mark(field)
		}
	}
	setInt := func(env string, target *int, field string) {
		if v := os.Getenv(env); v != "" {
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*target = i
				mark(field)
			}
		}
	}
	setBool := func(env string, target *bool, field string) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			mark(field)
		}
	}

	setString("TASKTRACK_STORAGE", &cfg.StorageFile, "storage_file")
	setString("TASKTRACK_STORAGE_KEY", &cfg.StorageKey, "storage_key")
	setString("TASKTRACK_SCHEMA", &cfg.SchemaFile, "schema_file")
	setString("TASKTRACK_LOG_DIR", &cfg.LogDir, "log_dir")
	setInt("TASKTRACK_TICK_MS", &cfg.TickIntervalMS, "tick_interval_ms")
	setInt("TASKTRACK_TOAST_SECONDS", &cfg.ToastSeconds, "toast_seconds")
	setString("TASKTRACK_HOOK", &cfg.HookCommand, "hook_command")
	setBool("TASKTRACK_JOURNAL", &cfg.Journal, "journal")

	// Logging configuration
	setString("TASKTRACK_LOG_LEVEL", &cfg.LogLevel, "log_level")
	setString("TASKTRACK_LOG_FORMAT", &cfg.LogFormat, "log_format")
	setBool("TASKTRACK_LOG_TIMESTAMPS", &cfg.LogTimestamps, "log_timestamps")
	setBool("TASKTRACK_LOG_CALLER", &cfg.LogCaller, "log_caller")
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
