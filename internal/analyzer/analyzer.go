// Package analyzer inspects a checked-out repository and summarizes its code
// structure for the prompt builder.
package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Report is the structural summary of one repository
type Report struct {
	FileCount   int
	Languages   map[string]int // language -> file count
	TopDirs     []string
	ReadmeHead  string
	EntryPoints []string
	Overrides   *DocConfig
}

var extLanguages = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".rs":    "Rust",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".rb":    "Ruby",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cs":    "C#",
	".kt":    "Kotlin",
	".swift": "Swift",
	".sh":    "Shell",
	".sql":   "SQL",
}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
}

const readmeHeadLimit = 2000

// Analyze walks the checkout at root and builds a Report
func Analyze(root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	rep := &Report{Languages: make(map[string]int)}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rep.FileCount++
		if lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
			rep.Languages[lang]++
		}

		name := strings.ToLower(d.Name())
		if name == "main.go" || name == "__main__.py" || name == "index.js" || name == "main.rs" {
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				rep.EntryPoints = append(rep.EntryPoints, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && !skipDirs[e.Name()] && !strings.HasPrefix(e.Name(), ".") {
			rep.TopDirs = append(rep.TopDirs, e.Name())
		}
		if !e.IsDir() && strings.EqualFold(e.Name(), "README.md") {
			data, readErr := os.ReadFile(filepath.Join(root, e.Name()))
			if readErr == nil {
				if len(data) > readmeHeadLimit {
					data = data[:readmeHeadLimit]
				}
				rep.ReadmeHead = string(data)
			}
		}
	}
	sort.Strings(rep.TopDirs)
	sort.Strings(rep.EntryPoints)

	overrides, err := LoadDocConfig(root)
	if err != nil {
		return nil, err
	}
	rep.Overrides = overrides

	return rep, nil
}

// MainLanguage returns the most common language in the report
func (r *Report) MainLanguage() string {
	best, bestCount := "", 0
	for lang, count := range r.Languages {
		if count > bestCount || (count == bestCount && lang < best) {
			best, bestCount = lang, count
		}
	}
	return best
}

// Summary renders the report as prompt-ready text
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Files: %d\n", r.FileCount)
	if lang := r.MainLanguage(); lang != "" {
		fmt.Fprintf(&b, "Main language: %s\n", lang)
	}
	if len(r.TopDirs) > 0 {
		fmt.Fprintf(&b, "Top-level directories: %s\n", strings.Join(r.TopDirs, ", "))
	}
	if len(r.EntryPoints) > 0 {
		fmt.Fprintf(&b, "Entry points: %s\n", strings.Join(r.EntryPoints, ", "))
	}
	if r.ReadmeHead != "" {
		fmt.Fprintf(&b, "\nREADME excerpt:\n%s\n", r.ReadmeHead)
	}
	return b.String()
}
