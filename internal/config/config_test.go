package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scheduler.MaxConcurrentJobs != 3 {
		t.Errorf("got max_concurrent_jobs=%d, want default 3", cfg.Scheduler.MaxConcurrentJobs)
	}
	if cfg.LLM.BaseURL == "" {
		t.Error("default llm base_url should be set")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[scheduler]
max_concurrent_jobs = 8
default_job_timeout = "45m"
cleanup_interval = "10m"

[llm]
model = "llama3"

[[repos]]
id = "acme/widgets"
url = "https://example.com/acme/widgets.git"
branch = "main"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scheduler.MaxConcurrentJobs != 8 {
		t.Errorf("got max_concurrent_jobs=%d, want 8", cfg.Scheduler.MaxConcurrentJobs)
	}
	if cfg.Scheduler.DefaultJobTimeout.Std() != 45*time.Minute {
		t.Errorf("got timeout=%v, want 45m", cfg.Scheduler.DefaultJobTimeout.Std())
	}
	if cfg.Scheduler.CleanupInterval.Std() != 10*time.Minute {
		t.Errorf("got cleanup_interval=%v, want 10m", cfg.Scheduler.CleanupInterval.Std())
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("got model=%q, want llama3", cfg.LLM.Model)
	}
	// Untouched sections keep defaults.
	if cfg.Web.Port != 8080 {
		t.Errorf("got port=%d, want default 8080", cfg.Web.Port)
	}

	if len(cfg.Repos) != 1 {
		t.Fatalf("got %d repos, want 1", len(cfg.Repos))
	}
	if cfg.Repos[0].ID != "acme/widgets" {
		t.Errorf("got repo id %q, want acme/widgets", cfg.Repos[0].ID)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("[scheduler]\ndefault_job_timeout = \"soon\"\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("invalid duration should fail to load")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~/docs")
	want := filepath.Join(home, "docs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("got %q, want unchanged", got)
	}
}
