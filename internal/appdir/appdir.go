// Package appdir provides constants and utilities for the .tasktrack directory structure.
package appdir

import "path/filepath"

const (
	// Dir is the name of the tasktrack state directory.
	Dir = ".tasktrack"

	// StorageFile is the default storage file name (inside .tasktrack).
	StorageFile = "storage.json"

	// ConfigFile is the config file name (inside .tasktrack).
	ConfigFile = "tasktrack.toml"

	// SchemaFile is the file name the embedded schema is exported to.
	SchemaFile = "tasks.schema.json"

	// LogsDir is the journal directory name (inside .tasktrack).
	LogsDir = "logs"

	// ConsoleLog is the console log file used while the TUI owns the terminal.
	ConsoleLog = "tasktrack.log"
)

// ConfigPath returns the full path to the config file within a base directory.
func ConfigPath(baseDir string) string {
	return joinPath(baseDir, ConfigFile)
}

// SchemaPath returns the full path to the exported schema within a base directory.
func SchemaPath(baseDir string) string {
	return joinPath(baseDir, SchemaFile)
}

// DirPath returns the full path to the .tasktrack directory within a base directory.
func DirPath(baseDir string) string {
	if baseDir == "." || baseDir == "" {
		return Dir
	}
	return filepath.Join(baseDir, Dir)
}

func joinPath(baseDir, file string) string {
	return filepath.Join(DirPath(baseDir), file)
}
