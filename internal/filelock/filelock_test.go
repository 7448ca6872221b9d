package filelock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	fl := New(path)

	if err := fl.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("lock file should exist after use: %v", err)
	}
}

func TestTryLockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	first := New(path)
	if err := first.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	defer first.Unlock()

	second := New(path)
	acquired, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if acquired {
		t.Error("TryLock should not acquire a held lock")
	}
}

func TestTryLockUncontended(t *testing.T) {
	fl := New(filepath.Join(t.TempDir(), "test.lock"))
	acquired, err := fl.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !acquired {
		t.Error("TryLock should acquire an uncontended lock")
	}
	fl.Unlock()
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "artifact.json")

	if err := AtomicWrite(path, []byte("hello")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the artifact, found %d entries", len(entries))
	}
}

func TestAtomicWriteOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")

	if err := AtomicWrite(path, []byte("first")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	if err := AtomicWrite(path, []byte("second")); err != nil {
		t.Fatalf("AtomicWrite overwrite failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("got %q, want %q", data, "second")
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")

	if err := AtomicWriteJSON(path, map[string]int{"count": 3}); err != nil {
		t.Fatalf("AtomicWriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["count"] != 3 {
		t.Errorf("got %d, want 3", decoded["count"])
	}
}

func TestLockAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")

	if err := LockAndWrite(path, []byte("locked write")); err != nil {
		t.Fatalf("LockAndWrite failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "locked write" {
		t.Errorf("got %q, want %q", data, "locked write")
	}
	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Errorf("sibling lock file should exist: %v", err)
	}
}
