package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// countingReader wraps OSReader and counts disk reads.
type countingReader struct {
	inner OSReader
	reads int
}

func (r *countingReader) Stat(path string) (FileInfo, error) {
	return r.inner.Stat(path)
}

func (r *countingReader) Read(path string) ([]byte, FileInfo, error) {
	r.reads++
	return r.inner.Read(path)
}

func TestStoreCachesUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reader := &countingReader{}
	store := NewStore(reader, 10)

	first, err := store.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := store.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if reader.reads != 1 {
		t.Errorf("reads = %d, want 1 (second Get should hit cache)", reader.reads)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Error("cached fingerprint differs from first read")
	}
	if string(second.Data) != "hello\n" {
		t.Errorf("data = %q, want %q", second.Data, "hello\n")
	}
}

func TestStoreRereadsModifiedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reader := &countingReader{}
	store := NewStore(reader, 10)

	first, err := store.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Rewrite with different content and a different mtime.
	if err := os.WriteFile(path, []byte("v2 longer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	second, err := store.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if reader.reads != 2 {
		t.Errorf("reads = %d, want 2", reader.reads)
	}
	if first.Fingerprint == second.Fingerprint {
		t.Error("fingerprint unchanged after modification")
	}
	if string(second.Data) != "v2 longer\n" {
		t.Errorf("data = %q, want %q", second.Data, "v2 longer\n")
	}
}

func TestStoreMissingFile(t *testing.T) {
	store := NewStore(OSReader{}, 10)

	_, err := store.Get(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStoreForget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("data\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reader := &countingReader{}
	store := NewStore(reader, 10)

	if _, err := store.Get(path); err != nil {
		t.Fatalf("Get: %v", err)
	}
	store.Forget(path)
	if _, err := store.Get(path); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if reader.reads != 2 {
		t.Errorf("reads = %d, want 2 after Forget", reader.reads)
	}
}
