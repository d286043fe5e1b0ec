// Package gitrepo fetches documentation targets into a local working area.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hochfrequenz/docsmith/internal/domain"
)

// Cloner manages shallow checkouts of target repositories under workDir
type Cloner struct {
	workDir string
}

// NewCloner creates a cloner rooted at workDir
func NewCloner(workDir string) *Cloner {
	return &Cloner{workDir: workDir}
}

// Clone ensures a checkout of the repository exists and is current, returning
// its path. Existing checkouts are fetched and reset instead of re-cloned.
func (c *Cloner) Clone(ctx context.Context, repo domain.Repository) (string, error) {
	if err := os.MkdirAll(c.workDir, 0755); err != nil {
		return "", fmt.Errorf("creating work dir: %w", err)
	}

	path := filepath.Join(c.workDir, sanitize(repo.ID))
	branch := repo.Branch
	if branch == "" {
		branch = "main"
	}

	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		if err := c.update(ctx, path, branch); err != nil {
			return "", err
		}
		return path, nil
	}

	args := []string{"clone", "--depth", "1", "--branch", branch, repo.URL, path}
	cmd := exec.CommandContext(ctx, "git", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git clone %s: %s: %w", repo.URL, strings.TrimSpace(string(out)), err)
	}
	return path, nil
}

func (c *Cloner) update(ctx context.Context, path, branch string) error {
	fetch := exec.CommandContext(ctx, "git", "fetch", "--depth", "1", "origin", branch)
	fetch.Dir = path
	if out, err := fetch.CombinedOutput(); err != nil {
		return fmt.Errorf("git fetch: %s: %w", strings.TrimSpace(string(out)), err)
	}

	reset := exec.CommandContext(ctx, "git", "reset", "--hard", "origin/"+branch)
	reset.Dir = path
	if out, err := reset.CombinedOutput(); err != nil {
		return fmt.Errorf("git reset: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Remove deletes a checkout
func (c *Cloner) Remove(repoID string) error {
	return os.RemoveAll(filepath.Join(c.workDir, sanitize(repoID)))
}

// sanitize maps a repo id to a safe directory name
func sanitize(id string) string {
	r := strings.NewReplacer("/", "__", ":", "_", " ", "_")
	return r.Replace(id)
}
