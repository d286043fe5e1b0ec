package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

type fakeCloner struct {
	path string
}

func (f *fakeCloner) Clone(ctx context.Context, repo domain.Repository) (string, error) {
	return f.path, nil
}

type fakeLLM struct {
	prompt string
	reply  string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, nil
}

func TestGenerator_Generate(t *testing.T) {
	checkout := t.TempDir()
	os.WriteFile(filepath.Join(checkout, "main.go"), []byte("package main"), 0644)
	os.WriteFile(filepath.Join(checkout, "README.md"), []byte("# Widgets"), 0644)

	outputDir := t.TempDir()
	llm := &fakeLLM{reply: "# Widgets\n\nGenerated docs."}
	repos := []domain.Repository{{ID: "acme/widgets", URL: "https://example.com/w.git"}}

	g := NewGenerator(&fakeCloner{path: checkout}, llm, repos, outputDir)

	job := domain.NewJob("acme/widgets", domain.PriorityNormal)
	outPath, err := g.Generate(context.Background(), job)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if filepath.Base(outPath) != "acme__widgets.md" {
		t.Errorf("got output file %q", filepath.Base(outPath))
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != llm.reply {
		t.Errorf("output file should contain the generated text")
	}

	if !strings.Contains(llm.prompt, "acme/widgets") {
		t.Error("prompt should name the repository")
	}
	if !strings.Contains(llm.prompt, "Main language: Go") {
		t.Errorf("prompt should include the analysis summary, got:\n%s", llm.prompt)
	}
}

func TestGenerator_UnknownRepo(t *testing.T) {
	g := NewGenerator(&fakeCloner{}, &fakeLLM{}, nil, t.TempDir())
	job := domain.NewJob("nobody/knows", domain.PriorityNormal)
	if _, err := g.Generate(context.Background(), job); err == nil {
		t.Error("unknown repo should fail")
	}
}

func TestGenerator_PromptHonorsOverrides(t *testing.T) {
	checkout := t.TempDir()
	os.WriteFile(filepath.Join(checkout, ".docsmith.yml"),
		[]byte("title: Widget Factory\naudience: operators\nsections:\n  - setup\n"), 0644)

	llm := &fakeLLM{reply: "docs"}
	repos := []domain.Repository{{ID: "acme/widgets"}}
	g := NewGenerator(&fakeCloner{path: checkout}, llm, repos, t.TempDir())

	if _, err := g.Generate(context.Background(), domain.NewJob("acme/widgets", domain.PriorityNormal)); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.Contains(llm.prompt, "Widget Factory") {
		t.Error("prompt should use the override title")
	}
	if !strings.Contains(llm.prompt, "operators") {
		t.Error("prompt should mention the audience override")
	}
	if !strings.Contains(llm.prompt, "setup") {
		t.Error("prompt should list required sections")
	}
}
