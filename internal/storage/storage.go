// Package storage provides a flat key-value store holding opaque string
// values, in memory or in a JSON file on disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// errCorrupt marks a storage file that exists but does not hold a JSON
// object of strings.
var errCorrupt = errors.New("parse storage file")

// Storage is a flat key-value store of opaque string values.
type Storage interface {
	// GetItem returns the value for key. ok is false if the key is absent.
	GetItem(key string) (value string, ok bool, err error)
	// SetItem overwrites the value for key.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error
}

// Memory is an in-memory Storage.
type Memory struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem implements Storage.
func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Storage.
func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// RemoveItem implements Storage.
func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// File is a Storage backed by a JSON object on disk, mapping keys to string
// values. Every write replaces the file atomically.
type File struct {
	mu   sync.Mutex
	path string
}

// OpenFile returns a file-backed store at path. The file is created lazily on
// the first write; its parent directory is created now.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// GetItem implements Storage.
func (f *File) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

// SetItem implements Storage. A file that cannot be parsed is moved aside
// and replaced by a fresh one.
func (f *File) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.readForWrite()
	if err != nil {
		return err
	}
	items[key] = value
	return f.write(items)
}

// RemoveItem implements Storage.
func (f *File) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.write(items)
}

// Keys returns the stored keys in sorted order.
func (f *File) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	items := make(map[string]string)
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return items, nil
}

// readForWrite is read for the mutating calls. An unparseable file is renamed
// to <path>.corrupt-<timestamp> and the write starts from an empty object.
func (f *File) readForWrite() (map[string]string, error) {
	items, err := f.read()
	if !errors.Is(err, errCorrupt) {
		return items, err
	}
	aside := fmt.Sprintf("%s.corrupt-%s", f.path, time.Now().Format("20060102-150405.000"))
	if err := os.Rename(f.path, aside); err != nil {
		return nil, fmt.Errorf("move corrupt storage file aside: %w", err)
	}
	return make(map[string]string), nil
}

// CorruptCopies returns the files that unparseable versions of the storage
// file were moved to, oldest first.
func (f *File) CorruptCopies() ([]string, error) {
	matches, err := filepath.Glob(f.path + ".corrupt-*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (f *File) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage file: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close storage file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
