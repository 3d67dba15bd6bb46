// Package report merges, orders, and renders search results.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/harrison/docgrep/internal/classify"
	"github.com/harrison/docgrep/internal/display"
	"github.com/harrison/docgrep/internal/models"
)

// Aggregate concatenates the text and PDF pipeline results and sorts them
// deterministically by (file path, page, line). Plain-text occurrences carry
// page 0 so they sort ahead of paged occurrences within the same file.
// The sort is stable, so equal keys keep their pipeline order.
func Aggregate(text, pdf []models.Occurrence) []models.Occurrence {
	merged := make([]models.Occurrence, 0, len(text)+len(pdf))
	merged = append(merged, text...)
	merged = append(merged, pdf...)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.Line < b.Line
	})

	return merged
}

// Renderer writes the human-readable results section and summary.
// Color decorates each file reference with its extension's display color;
// Hyperlinks wraps references in OSC 8 file:// links for terminals that
// support clicking them. Both are disabled for plain exports.
type Renderer struct {
	Color      bool
	Hyperlinks bool
}

// NewRenderer creates a renderer with the given decoration settings.
func NewRenderer(color, hyperlinks bool) *Renderer {
	return &Renderer{Color: color, Hyperlinks: hyperlinks}
}

// Render writes one line per occurrence followed by a summary count.
// An empty result set renders the explicit no-match message instead.
func (r *Renderer) Render(w io.Writer, occurrences []models.Occurrence) {
	if len(occurrences) == 0 {
		fmt.Fprintf(w, "\nNo matches found.\n")
		return
	}

	if r.Hyperlinks {
		fmt.Fprintf(w, "\n--- Matches (click to open) ---\n\n")
	} else {
		fmt.Fprintf(w, "\n--- Matches ---\n\n")
	}

	files := make(map[string]struct{})
	for _, occ := range occurrences {
		files[occ.FilePath] = struct{}{}
		fmt.Fprintf(w, "%s:%d%s: %s\n", r.fileRef(occ), occ.Line, pageInfo(occ), occ.Content)
	}

	occLabel := "occurrences"
	if len(occurrences) == 1 {
		occLabel = "occurrence"
	}
	fileLabel := "files"
	if len(files) == 1 {
		fileLabel = "file"
	}
	fmt.Fprintf(w, "\nFound %d %s in %d %s.\n", len(occurrences), occLabel, len(files), fileLabel)
}

// fileRef decorates an occurrence's file path per the renderer settings.
func (r *Renderer) fileRef(occ models.Occurrence) string {
	ref := occ.FilePath
	if r.Color {
		ref = classify.Color(occ.Ext).Sprint(ref)
	}
	if r.Hyperlinks {
		ref = display.Hyperlink(ref, occ.FilePath)
	}
	return ref
}

// pageInfo renders the page suffix for occurrences with a real page number.
// Page 0 means the extraction path numbered lines across the whole document.
func pageInfo(occ models.Occurrence) string {
	if occ.Page >= 1 {
		return fmt.Sprintf(" (page %d)", occ.Page)
	}
	return ""
}
