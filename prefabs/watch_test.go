package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchedFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "prefabs/brawler.yaml", want: true},
		{path: "prefabs/brawler.YAML", want: true},
		{path: "specs/old.yml", want: true},
		{path: "prefabs/scripts/volley.tengo", want: true},
		{path: "prefabs/readme.txt", want: false},
		{path: "prefabs/spec.go", want: false},
		{path: "prefabs", want: false},
	}
	for _, tt := range tests {
		if got := watchedFile(tt.path); got != tt.want {
			t.Fatalf("watchedFile(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestWatcherReportsSpecEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bolt.yaml")
	if err := os.WriteFile(path, []byte("name: bolt\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("name: bolt\nspeed: 700\n"), 0o644); err != nil {
		t.Fatalf("edit file: %v", err)
	}

	select {
	case got, ok := <-w.Events:
		if !ok {
			t.Fatalf("events channel closed early")
		}
		if filepath.Base(got) != "bolt.yaml" {
			t.Fatalf("expected bolt.yaml event, got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change event")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	// The forwarding goroutine closes the channel on its way out.
	select {
	case _, ok := <-w.Events:
		if ok {
			t.Fatalf("expected no events after close")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected events channel to close")
	}
}

func TestWatcherRejectsMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for a missing directory")
	}
}
