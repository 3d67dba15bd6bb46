package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/docgrep/internal/classify"
	"github.com/harrison/docgrep/internal/models"
)

// Options configures the directory walk
type Options struct {
	// Extensions is the text-file allowlist (e.g., ".txt", ".md")
	Extensions []string
	// ExcludeDirs is a list of directory names to prune (e.g., ".git", "node_modules")
	ExcludeDirs []string
}

// Totals holds the candidate counts of one counting pass, grouped by
// pipeline. The counts size the progress displays before scanning starts.
type Totals struct {
	Text int
	PDF  int
}

// Total returns the number of candidates across both pipelines
func (t Totals) Total() int {
	return t.Text + t.PDF
}

// Walker enumerates candidate files beneath a root directory. Construct
// with NewWalker; a Walker is immutable and safe for concurrent use.
type Walker struct {
	classifier *classify.Classifier
	exclude    map[string]bool
}

// NewWalker builds a Walker for the given options
func NewWalker(opts Options) *Walker {
	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, dir := range opts.ExcludeDirs {
		exclude[dir] = true
	}
	return &Walker{
		classifier: classify.New(opts.Extensions),
		exclude:    exclude,
	}
}

// Walk streams candidate files to visit in lexical walk order. A non-nil
// error from visit stops the walk immediately and is returned unchanged,
// which is how callers abort on context cancellation. Per-entry failures
// (unreadable subdirectories, unresolvable paths) are returned as
// diagnostics and do not stop the walk. An unusable root is fatal.
func (w *Walker) Walk(root string, visit func(models.CandidateFile) error) ([]models.Diagnostic, error) {
	// Validate root exists and is a directory
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	var diagnostics []models.Diagnostic

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			diagnostics = append(diagnostics, models.Diagnostic{
				Path:  path,
				Stage: models.StageWalk,
				Err:   err,
			})
			return nil // Continue walking
		}

		// Skip the root directory itself
		if path == root {
			return nil
		}

		if d.IsDir() {
			if w.exclude[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		category := w.classifier.Classify(ext)
		if category == models.CategorySkip {
			return nil
		}

		// Convert to absolute path
		absPath, err := filepath.Abs(path)
		if err != nil {
			diagnostics = append(diagnostics, models.Diagnostic{
				Path:  path,
				Stage: models.StageWalk,
				Err:   err,
			})
			return nil
		}

		return visit(models.CandidateFile{
			Path:     absPath,
			Ext:      ext,
			Category: category,
		})
	})

	// The walk callback swallows entry errors into diagnostics, so any
	// error here came from visit and belongs to the caller unchanged.
	if err != nil {
		return diagnostics, err
	}

	return diagnostics, nil
}

// Count walks the tree once and returns how many candidates each
// pipeline would receive from a subsequent Walk over the same root.
// Walk failures are left for the streaming pass to report, so each
// failure surfaces exactly once.
func (w *Walker) Count(root string) (Totals, error) {
	var totals Totals
	_, err := w.Walk(root, func(f models.CandidateFile) error {
		switch f.Category {
		case models.CategoryText:
			totals.Text++
		case models.CategoryPDF:
			totals.PDF++
		}
		return nil
	})
	if err != nil {
		return Totals{}, err
	}
	return totals, nil
}
