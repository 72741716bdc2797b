package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDebouncesCreateAndWrite(t *testing.T) {
	dir := t.TempDir()

	batches, handle, err := Watch(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer handle.Stop()

	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(path, []byte("one-two"), 0o644); err != nil {
		t.Fatalf("write again: %v", err)
	}

	select {
	case batch := <-batches:
		if len(batch.Paths) == 0 {
			t.Fatal("expected at least one changed path")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
}
