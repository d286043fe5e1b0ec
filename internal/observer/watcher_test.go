package observer

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestManifestWatcher_FiresOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[general]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := NewManifestWatcher(path, func(string) {
		fired.Add(1)
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	// A burst of writes should fold into one callback.
	for i := 0; i < 3; i++ {
		os.WriteFile(path, []byte("[general]\nx = 1\n"), 0644)
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := fired.Load(); got != 1 {
		t.Errorf("got %d callbacks, want 1 (debounced)", got)
	}
}

func TestManifestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte(""), 0644)

	var fired atomic.Int32
	w, err := NewManifestWatcher(path, func(string) {
		fired.Add(1)
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644)

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("got %d callbacks for sibling file, want 0", got)
	}
}
