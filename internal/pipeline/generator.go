// Package pipeline drives the documentation jobs: workers pop jobs from the
// scheduler, run the clone → analyze → generate steps, and report the outcome
// back. The per-job timeout is enforced here, never by the scheduler itself.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hochfrequenz/docsmith/internal/analyzer"
	"github.com/hochfrequenz/docsmith/internal/domain"
)

// Cloner fetches a repository checkout
type Cloner interface {
	Clone(ctx context.Context, repo domain.Repository) (string, error)
}

// TextGenerator produces documentation text from a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator runs the documentation pipeline for one job
type Generator struct {
	cloner    Cloner
	llm       TextGenerator
	repos     map[string]domain.Repository
	outputDir string
}

// NewGenerator creates a generator writing results under outputDir
func NewGenerator(cloner Cloner, llm TextGenerator, repos []domain.Repository, outputDir string) *Generator {
	byID := make(map[string]domain.Repository, len(repos))
	for _, r := range repos {
		byID[r.ID] = r
	}
	return &Generator{
		cloner:    cloner,
		llm:       llm,
		repos:     byID,
		outputDir: outputDir,
	}
}

// Generate produces the documentation file for a job and returns its path
func (g *Generator) Generate(ctx context.Context, job *domain.Job) (string, error) {
	repo, ok := g.repos[job.RepoID]
	if !ok {
		return "", fmt.Errorf("unknown repository %q", job.RepoID)
	}

	path, err := g.cloner.Clone(ctx, repo)
	if err != nil {
		return "", fmt.Errorf("cloning: %w", err)
	}

	report, err := analyzer.Analyze(path)
	if err != nil {
		return "", fmt.Errorf("analyzing: %w", err)
	}

	text, err := g.llm.Generate(ctx, buildPrompt(repo, report))
	if err != nil {
		return "", fmt.Errorf("generating: %w", err)
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", err
	}
	outPath := filepath.Join(g.outputDir, outputName(repo.ID))
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return outPath, nil
}

func buildPrompt(repo domain.Repository, report *analyzer.Report) string {
	var b strings.Builder
	title := repo.ID
	if report.Overrides != nil && report.Overrides.Title != "" {
		title = report.Overrides.Title
	}

	fmt.Fprintf(&b, "You are a technical writer. Write developer documentation in Markdown for the repository %q.\n\n", title)
	b.WriteString("Repository structure:\n")
	b.WriteString(report.Summary())

	if report.Overrides != nil {
		if report.Overrides.Audience != "" {
			fmt.Fprintf(&b, "\nTarget audience: %s\n", report.Overrides.Audience)
		}
		if len(report.Overrides.Sections) > 0 {
			fmt.Fprintf(&b, "\nRequired sections: %s\n", strings.Join(report.Overrides.Sections, ", "))
		}
	}

	b.WriteString("\nRespond with the Markdown document only.\n")
	return b.String()
}

func outputName(repoID string) string {
	r := strings.NewReplacer("/", "__", ":", "_", " ", "_")
	return r.Replace(repoID) + ".md"
}
