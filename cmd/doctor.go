package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nibzard/tasktrack-go/internal/appdir"
	"github.com/nibzard/tasktrack-go/internal/config"
	"github.com/nibzard/tasktrack-go/internal/storage"
	"github.com/nibzard/tasktrack-go/internal/task"
)

// doctorCommand checks the configuration, the storage file and the stored
// task blob.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasktrack doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	writeSchema := fs.Bool("write-schema", false, "Export the built-in schema to ~/.tasktrack for editing")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	if *writeSchema {
		return writeSchemaFile()
	}

	fmt.Fprintln(stdout, "Tasktrack Doctor")
	fmt.Fprintln(stdout, "================")
	fmt.Fprintln(stdout)

	allOK := true

	// Config
	fmt.Fprintln(stdout, "Config:")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "  ✅ Loaded from %s\n", config.DisplayPath(file))
	} else {
		fmt.Fprintln(stdout, "  ⚠️  No config file, using defaults (run: tasktrack config -init)")
	}
	fmt.Fprintf(stdout, "  ✅ Tick interval: %s\n", cfg.TickInterval())
	fmt.Fprintf(stdout, "  ✅ Toast duration: %s\n", cfg.ToastTTL())
	if *verbose {
		for _, f := range cfg.Fields() {
			fmt.Fprintf(stdout, "     %s = %q (%s)\n", f.Key, f.Value, cws.Sources[f.Key])
		}
	}
	fmt.Fprintln(stdout)

	// Storage file
	fmt.Fprintf(stdout, "Storage file: %s\n", config.DisplayPath(cfg.StorageFile))
	storageOK := false
	if info, err := os.Stat(cfg.StorageFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(stdout, "  ⚠️  Not found (created on the first change)")
		} else {
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if info.IsDir() {
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
		storageOK = true
	}
	fmt.Fprintln(stdout)

	// Stored tasks
	if storageOK {
		fmt.Fprintf(stdout, "Tasks (key %q):\n", cfg.StorageKey)
		if !checkStoredTasks(cfg, *verbose) {
			allOK = false
		}
		fmt.Fprintln(stdout)
	}

	// Schema
	if cfg.SchemaFile != "" {
		fmt.Fprintf(stdout, "Schema file: %s\n", config.DisplayPath(cfg.SchemaFile))
		if info, err := os.Stat(cfg.SchemaFile); err != nil {
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		} else if info.IsDir() {
			fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Fprintln(stdout, "  ✅ OK")
		}
	} else {
		fmt.Fprintln(stdout, "Schema file: (built-in)")
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	// Log directory
	fmt.Fprintf(stdout, "Log directory: %s\n", config.DisplayPath(cfg.LogDir))
	if !cfg.Journal {
		fmt.Fprintln(stdout, "  ⚠️  Activity journal disabled")
	} else if _, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(stdout, "  ⚠️  Not found (created on the first change)")
		} else {
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	// Hook
	fmt.Fprintln(stdout, "Completion hook:")
	if !checkBinary("Command", cfg.HookCommand) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. Tasktrack may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkStoredTasks validates the blob stored under the configured key.
func checkStoredTasks(cfg *config.Config, verbose bool) bool {
	kv, err := storage.OpenFile(cfg.StorageFile)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	}
	if verbose {
		if keys, err := kv.Keys(); err == nil {
			fmt.Fprintf(stdout, "  Keys in file: %s\n", strings.Join(keys, ", "))
		}
	}
	if copies, err := kv.CorruptCopies(); err == nil {
		for _, c := range copies {
			fmt.Fprintf(stdout, "  ⚠️  Unreadable earlier file kept at %s\n", config.DisplayPath(c))
		}
	}
	blob, ok, err := kv.GetItem(cfg.StorageKey)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	}
	if !ok {
		fmt.Fprintln(stdout, "  ⚠️  No tasks stored yet")
		return true
	}

	result := task.ValidateBlob([]byte(blob), task.ValidationOptions{SchemaPath: cfg.SchemaFile})
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Fprintln(stdout, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(stdout, "     - %v\n", e)
		}
		return false
	}
	fmt.Fprintln(stdout, "  ✅ Valid")

	if verbose {
		var tasks []task.Task
		if err := json.Unmarshal([]byte(blob), &tasks); err == nil {
			fmt.Fprintf(stdout, "  Tasks: %d\n", len(tasks))
			for i, t := range tasks {
				fmt.Fprintf(stdout, "    %d. [%s] %s (%s)\n", i+1, t.Status, t.Title, task.FormatDue(t.Date, t.Time))
			}
		}
	}
	return true
}

// writeSchemaFile exports the built-in schema so it can be customized and
// pointed to with schema_file.
func writeSchemaFile() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home directory: %w", err)
	}
	path := appdir.SchemaPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create schema dir: %w", err)
	}
	if err := os.WriteFile(path, task.EmbeddedSchema(), 0644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", config.DisplayPath(path))
	fmt.Fprintf(stdout, "Set schema_file = %q to use it.\n", filepath.ToSlash(config.DisplayPath(path)))
	return nil
}

// checkBinary reports whether binary resolves to an executable. An empty
// value is fine.
func checkBinary(label, binary string) bool {
	fmt.Fprintf(stdout, "  %s: %s\n", label, binary)
	if strings.TrimSpace(binary) == "" {
		fmt.Fprintln(stdout, "  ⚠️  Not configured")
		return true
	}
	if info, err := os.Stat(binary); err == nil {
		if info.IsDir() {
			fmt.Fprintln(stdout, "  ❌ Path is a directory")
			return false
		}
		if !isExecutablePath(binary, info) {
			fmt.Fprintln(stdout, "  ❌ Not executable")
			return false
		}
		fmt.Fprintln(stdout, "  ✅ OK")
		return true
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Not found: %v\n", err)
		return false
	}
	fmt.Fprintf(stdout, "  ✅ OK (found in PATH: %s)\n", resolved)
	return true
}

func isExecutablePath(path string, info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return isWindowsExecutable(path)
	}
	return info.Mode().Perm()&0111 != 0
}

func isWindowsExecutable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return windowsExecutableExts()[ext]
}

func windowsExecutableExts() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}
