package config

import (
	"strconv"
	"time"

	"github.com/nibzard/tasktrack-go/internal/appdir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	userFile    string
	projectFile string
}

// Default values.
const (
	DefaultStorageFile    = "~/" + appdir.Dir + "/" + appdir.StorageFile
	DefaultStorageKey     = "tasks"
	DefaultTickIntervalMS = 1000
	DefaultToastSeconds   = 3
	DefaultLogDir         = "~/" + appdir.Dir + "/" + appdir.LogsDir
	DefaultJournal        = true
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for tasktrack.
type Config struct {
	// Paths
	StorageFile string `toml:"storage_file"`
	StorageKey  string `toml:"storage_key"`
	SchemaFile  string `toml:"schema_file"` // empty means the embedded schema
	LogDir      string `toml:"log_dir"`

	// Scheduling
	TickIntervalMS int `toml:"tick_interval_ms"`
	ToastSeconds   int `toml:"toast_seconds"`

	// Run on auto-completion
	HookCommand string `toml:"hook_command"`

	// Activity journal
	Journal bool `toml:"journal"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
}

// TickInterval returns the countdown tick as a duration.
func (c *Config) TickInterval() time.Duration {
	if c.TickIntervalMS <= 0 {
		return time.Duration(DefaultTickIntervalMS) * time.Millisecond
	}
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// ToastTTL returns how long a toast stays visible.
func (c *Config) ToastTTL() time.Duration {
	if c.ToastSeconds <= 0 {
		return time.Duration(DefaultToastSeconds) * time.Second
	}
	return time.Duration(c.ToastSeconds) * time.Second
}

// Field is one configuration key and its effective value.
type Field struct {
	Key   string
	Value string
}

// Fields returns the effective values in configFields order.
func (c *Config) Fields() []Field {
	values := map[string]string{
		"storage_file":     c.StorageFile,
		"storage_key":      c.StorageKey,
		"schema_file":      c.SchemaFile,
		"tick_interval_ms": strconv.Itoa(c.TickIntervalMS),
		"toast_seconds":    strconv.Itoa(c.ToastSeconds),
		"hook_command":     c.HookCommand,
		"log_dir":          c.LogDir,
		"journal":          strconv.FormatBool(c.Journal),
		"log_level":        c.LogLevel,
		"log_format":       c.LogFormat,
		"log_timestamps":   strconv.FormatBool(c.LogTimestamps),
		"log_caller":       strconv.FormatBool(c.LogCaller),
	}
	fields := make([]Field, 0, len(values))
	for _, key := range configFields() {
		fields = append(fields, Field{Key: key, Value: values[key]})
	}
	return fields
}
