// Package classify decides which pipeline scans a file, based on its
// extension, and owns the per-extension display colors used in reports.
package classify

import (
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/docgrep/internal/models"
)

// DefaultTextExtensions is the built-in allowlist for the text pipeline.
// Callers may override it via configuration; PDFs are always routed to the
// PDF pipeline regardless of the active allowlist.
func DefaultTextExtensions() []string {
	return []string{
		".html", ".htm", ".txt", ".css", ".js", ".py", ".md", ".xml",
		".json", ".log", ".csv", ".sh", ".yml", ".yaml", ".conf",
	}
}

// extColors maps extensions to report colors. Extensions without an entry
// render in the default white.
var extColors = map[string]*color.Color{
	".html": color.New(color.FgGreen),
	".htm":  color.New(color.FgGreen),
	".css":  color.New(color.FgBlue),
	".conf": color.New(color.FgBlue),
	".js":   color.New(color.FgRed),
	".xml":  color.New(color.FgRed),
	".json": color.New(color.FgRed),
	".py":   color.New(color.FgCyan),
	".sh":   color.New(color.FgCyan),
	".md":   color.New(color.FgMagenta),
	".yml":  color.New(color.FgMagenta),
	".yaml": color.New(color.FgMagenta),
	".log":  color.New(color.FgYellow),
	".pdf":  color.New(color.FgYellow),
}

var defaultColor = color.New(color.FgWhite)

// Color returns the display color for an extension. Never nil.
func Color(ext string) *color.Color {
	if c, ok := extColors[Normalize(ext)]; ok {
		return c
	}
	return defaultColor
}

// Normalize lowercases an extension and ensures the leading dot, so that
// "TXT", "txt" and ".txt" all address the same allowlist entry.
func Normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Classifier maps extensions to file categories. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	text map[string]struct{}
}

// New builds a Classifier for the given text allowlist. Entries are
// normalized; ".pdf" in the allowlist is ignored because PDF routing is
// fixed.
func New(textExtensions []string) *Classifier {
	text := make(map[string]struct{}, len(textExtensions))
	for _, ext := range textExtensions {
		normalized := Normalize(ext)
		if normalized == "" || normalized == ".pdf" {
			continue
		}
		text[normalized] = struct{}{}
	}
	return &Classifier{text: text}
}

// Classify returns the pipeline category for an extension. Unknown
// extensions are skipped.
func (c *Classifier) Classify(ext string) models.FileCategory {
	normalized := Normalize(ext)
	if normalized == ".pdf" {
		return models.CategoryPDF
	}
	if _, ok := c.text[normalized]; ok {
		return models.CategoryText
	}
	return models.CategorySkip
}

// TextExtensions returns the active text allowlist, sorted.
func (c *Classifier) TextExtensions() []string {
	exts := make([]string, 0, len(c.text))
	for ext := range c.text {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
