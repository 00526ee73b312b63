package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasktrack configuration file
# Values can be overridden by TASKTRACK_* environment variables or CLI flags

# Storage file holding the key-value entries (supports ~ expansion)
storage_file = "~/.tasktrack/storage.json"

# Key under which the task list is stored
storage_key = "tasks"

# Schema used by "tasktrack doctor" (empty uses the embedded schema)
# schema_file = "tasks.schema.json"

# Countdown tick interval in milliseconds
tick_interval_ms = 1000

# How long toasts stay on screen (seconds)
toast_seconds = 3

# Command run when a task auto-completes.
# Arguments: <task-id> <status> <title> <deadline>
# hook_command = "/path/to/hook.sh"

# Activity journal directory and switch
log_dir = "~/.tasktrack/logs"
journal = true

# Console logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
