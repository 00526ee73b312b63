package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	if _, ok, err := m.GetItem("tasks"); ok || err != nil {
		t.Fatalf("GetItem on empty store: ok=%v err=%v", ok, err)
	}
	if err := m.SetItem("tasks", "[]"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	v, ok, err := m.GetItem("tasks")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("GetItem = %q, %v, %v", v, ok, err)
	}
	if err := m.RemoveItem("tasks"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := m.GetItem("tasks"); ok {
		t.Error("key still present after RemoveItem")
	}
}

func TestFileSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	if _, ok, err := f.GetItem("tasks"); ok || err != nil {
		t.Fatalf("GetItem before any write: ok=%v err=%v", ok, err)
	}

	if err := f.SetItem("tasks", `[{"title":"a"}]`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := f.SetItem("other", "x"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	// A second handle sees the same data.
	g, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	v, ok, err := g.GetItem("tasks")
	if err != nil || !ok {
		t.Fatalf("GetItem: ok=%v err=%v", ok, err)
	}
	if v != `[{"title":"a"}]` {
		t.Errorf("GetItem = %q", v)
	}

	keys, err := g.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if strings.Join(keys, ",") != "other,tasks" {
		t.Errorf("Keys = %v", keys)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("storage file should end with a newline")
	}
}

func TestFileRemoveItem(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "storage.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.RemoveItem("missing"); err != nil {
		t.Errorf("RemoveItem of absent key: %v", err)
	}
	if err := f.SetItem("tasks", "[]"); err != nil {
		t.Fatal(err)
	}
	if err := f.RemoveItem("tasks"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := f.GetItem("tasks"); ok {
		t.Error("key still present after RemoveItem")
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.GetItem("tasks"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFileCorruptIsReplacedOnWrite(t *testing.T) {
	tests := []struct {
		name  string
		write func(f *File) error
		want  map[string]string
	}{
		{
			name:  "set item",
			write: func(f *File) error { return f.SetItem("tasks", `[{"id":"a"}]`) },
			want:  map[string]string{"tasks": `[{"id":"a"}]`},
		},
		{
			name:  "remove item",
			write: func(f *File) error { return f.RemoveItem("tasks") },
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "storage.json")
			if err := os.WriteFile(path, []byte("[1,2"), 0644); err != nil {
				t.Fatal(err)
			}
			f, err := OpenFile(path)
			if err != nil {
				t.Fatal(err)
			}

			if err := tt.write(f); err != nil {
				t.Fatalf("write over corrupt file: %v", err)
			}
			for key, want := range tt.want {
				got, ok, err := f.GetItem(key)
				if err != nil || !ok || got != want {
					t.Errorf("GetItem(%q) = %q, %v, %v; want %q", key, got, ok, err, want)
				}
			}

			copies, err := f.CorruptCopies()
			if err != nil {
				t.Fatal(err)
			}
			if len(copies) != 1 {
				t.Fatalf("corrupt copies = %v, want one", copies)
			}
			data, err := os.ReadFile(copies[0])
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "[1,2" {
				t.Errorf("corrupt copy = %q, want original bytes", data)
			}

			// A second write goes through the repaired file without moving it again.
			if err := f.SetItem("other", "x"); err != nil {
				t.Fatalf("second write: %v", err)
			}
			if copies, _ := f.CorruptCopies(); len(copies) != 1 {
				t.Errorf("corrupt copies after second write = %v", copies)
			}
		})
	}
}

func TestFileEmptyPath(t *testing.T) {
	if _, err := OpenFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
