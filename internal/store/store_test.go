package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/nibzard/tasktrack-go/internal/storage"
	"github.com/nibzard/tasktrack-go/internal/task"
)

type failingStorage struct {
	*storage.Memory
	readErr  error
	writeErr error
}

func (f *failingStorage) GetItem(key string) (string, bool, error) {
	if f.readErr != nil {
		return "", false, f.readErr
	}
	return f.Memory.GetItem(key)
}

func (f *failingStorage) SetItem(key, value string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.Memory.SetItem(key, value)
}

func sequentialIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func titles(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		blob    *string
		want    []string
		wantErr bool
	}{
		{name: "absent", blob: nil, want: []string{}},
		{name: "unparseable", blob: strPtr("{not json"), want: []string{}},
		{name: "not a list", blob: strPtr(`{"title":"x"}`), want: []string{}},
		{name: "null", blob: strPtr("null"), want: []string{}},
		{
			name: "two tasks",
			blob: strPtr(`[{"title":"a","date":"2030-01-01","time":"09:00","status":"scheduled"},{"title":"b","date":"2030-01-02","time":"10:00","status":"completed"}]`),
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			if tt.blob != nil {
				if err := kv.SetItem(DefaultKey, *tt.blob); err != nil {
					t.Fatal(err)
				}
			}
			s := New(kv, "", sequentialIDs())
			if err := s.Load(); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got := titles(s.Tasks()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("titles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadAssignsIDs(t *testing.T) {
	kv := storage.NewMemory()
	kv.SetItem(DefaultKey, `[{"title":"a"},{"title":"b"}]`)
	s := New(kv, "", sequentialIDs())
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if id, _ := s.IDAt(0); id != "id-1" {
		t.Errorf("IDAt(0) = %q", id)
	}
	if id, _ := s.IDAt(1); id != "id-2" {
		t.Errorf("IDAt(1) = %q", id)
	}
}

func TestLoadReadError(t *testing.T) {
	kv := &failingStorage{Memory: storage.NewMemory(), readErr: errors.New("disk gone")}
	s := New(kv, "")
	if err := s.Load(); err == nil {
		t.Fatal("expected read error")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestAddRemovePersistRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, "", sequentialIDs())

	ops := []struct {
		add    string
		remove int
	}{
		{add: "a"}, {add: "b"}, {add: "c"}, {remove: 1}, {add: "d"}, {remove: 0},
	}
	var want []string
	for _, op := range ops {
		if op.add != "" {
			s.Add(task.Task{Title: op.add, Date: "2030-01-01", Time: "09:00", Status: task.StatusScheduled})
			want = append(want, op.add)
		} else {
			if _, err := s.RemoveAt(op.remove); err != nil {
				t.Fatalf("RemoveAt(%d) failed: %v", op.remove, err)
			}
			want = append(want[:op.remove], want[op.remove+1:]...)
		}
		if err := s.Persist(); err != nil {
			t.Fatalf("Persist failed: %v", err)
		}

		if got := titles(s.Tasks()); !reflect.DeepEqual(got, want) {
			t.Fatalf("order = %v, want %v", got, want)
		}

		reloaded := New(kv, "")
		if err := reloaded.Load(); err != nil {
			t.Fatal(err)
		}
		if got := titles(reloaded.Tasks()); !reflect.DeepEqual(got, want) {
			t.Fatalf("reloaded order = %v, want %v", got, want)
		}
	}
}

func TestPersistedLayout(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, "")
	s.Add(task.Task{Title: "Ship release", Date: "2030-01-01", Time: "09:00", Status: task.StatusScheduled})
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}

	raw, ok, _ := kv.GetItem(DefaultKey)
	if !ok {
		t.Fatal("blob not written")
	}
	var records []map[string]string
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("blob is not a list of string records: %v", err)
	}
	want := []map[string]string{{"title": "Ship release", "date": "2030-01-01", "time": "09:00", "status": "scheduled"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}

	if _, err := s.RemoveAt(0); err != nil {
		t.Fatal(err)
	}
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}
	raw, _, _ = kv.GetItem(DefaultKey)
	if raw != "[]" {
		t.Errorf("blob after delete = %q, want []", raw)
	}
}

func TestOutOfRangeIsNoOp(t *testing.T) {
	s := New(storage.NewMemory(), "")
	s.Add(task.Task{Title: "a", Status: task.StatusScheduled})

	for _, pos := range []int{-1, 1, 99} {
		if _, err := s.RemoveAt(pos); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("RemoveAt(%d) error = %v", pos, err)
		}
		if err := s.UpdateStatusAt(pos, task.StatusCompleted); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("UpdateStatusAt(%d) error = %v", pos, err)
		}
		if _, err := s.IDAt(pos); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("IDAt(%d) error = %v", pos, err)
		}
	}
	if s.Len() != 1 || s.Tasks()[0].Status != task.StatusScheduled {
		t.Errorf("sequence changed: %+v", s.Tasks())
	}
}

func TestIDOperations(t *testing.T) {
	s := New(storage.NewMemory(), "", sequentialIDs())
	a := s.Add(task.Task{Title: "a", Status: task.StatusScheduled})
	b := s.Add(task.Task{Title: "b", Status: task.StatusScheduled})

	if err := s.UpdateStatus(b.ID, task.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err := s.Get(b.ID)
	if err != nil || got.Status != task.StatusInProgress {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	removed, err := s.Remove(a.ID)
	if err != nil || removed.Title != "a" {
		t.Fatalf("Remove = %+v, %v", removed, err)
	}
	if s.IndexOf(b.ID) != 0 {
		t.Errorf("IndexOf(b) = %d, want 0", s.IndexOf(b.ID))
	}

	if _, err := s.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(missing) error = %v", err)
	}
	if err := s.UpdateStatus("missing", task.StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v", err)
	}
}

func TestMalformedRecordsSurvivePersist(t *testing.T) {
	kv := storage.NewMemory()
	blob := `[{"title":7},{"title":"ok","date":"2030-01-01","time":"09:00","status":"scheduled"}]`
	kv.SetItem(DefaultKey, blob)

	s := New(kv, "")
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 || !s.Tasks()[0].Malformed() {
		t.Fatalf("tasks = %+v", s.Tasks())
	}
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}
	raw, _, _ := kv.GetItem(DefaultKey)
	if raw != blob {
		t.Errorf("persisted = %s, want %s", raw, blob)
	}
}

func TestPersistError(t *testing.T) {
	kv := &failingStorage{Memory: storage.NewMemory(), writeErr: errors.New("quota exceeded")}
	s := New(kv, "custom")
	s.Add(task.Task{Title: "a"})
	if err := s.Persist(); err == nil {
		t.Fatal("expected write error")
	}
	if s.Key() != "custom" {
		t.Errorf("Key = %q", s.Key())
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	s := New(storage.NewMemory(), "")
	s.Add(task.Task{Title: "a"})
	snapshot := s.Tasks()
	snapshot[0].Title = "changed"
	if s.Tasks()[0].Title != "a" {
		t.Error("Tasks() exposed internal slice")
	}
}

func strPtr(s string) *string {
	return &s
}
