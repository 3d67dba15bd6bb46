package models

import (
	"errors"
	"strings"
	"time"
)

// FileCategory routes an enumerated file to the pipeline that scans it.
type FileCategory int

const (
	// CategorySkip marks files whose extension is outside the allowlist.
	CategorySkip FileCategory = iota
	// CategoryText marks files scanned by the sequential text pipeline.
	CategoryText
	// CategoryPDF marks files scanned by the concurrent PDF pipeline.
	CategoryPDF
)

// String returns the lowercase category name for logs and diagnostics.
func (c FileCategory) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryPDF:
		return "pdf"
	default:
		return "skip"
	}
}

// SearchRequest describes a single search run: the phrase to find and the
// directory tree to find it in.
type SearchRequest struct {
	Phrase string // Literal phrase, matched case-insensitively
	Root   string // Directory to walk recursively
}

// Validate checks that the request can be executed. A phrase that is empty
// or all whitespace can never match a trimmed line, so it is rejected up
// front rather than silently returning nothing.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Phrase) == "" {
		return errors.New("search phrase must not be empty")
	}
	if r.Root == "" {
		return errors.New("search root directory must not be empty")
	}
	return nil
}

// CandidateFile is a file admitted by the extension allowlist during
// enumeration, tagged with the pipeline that will scan it.
type CandidateFile struct {
	Path     string       // Absolute or root-relative path as walked
	Ext      string       // Lowercase extension including the dot
	Category FileCategory // Pipeline routing decision
}

// Diagnostic stages, in the order a file passes through them.
const (
	StageWalk    = "walk"    // Directory enumeration
	StageRead    = "read"    // Opening or reading file contents
	StageExtract = "extract" // PDF text extraction
)

// Diagnostic records a per-file failure that was skipped over. A run
// accumulates diagnostics instead of aborting on them.
type Diagnostic struct {
	Path  string // File or directory the failure applies to
	Stage string // One of the Stage constants
	Err   error  // Underlying cause
}

// String formats the diagnostic for warning output.
func (d Diagnostic) String() string {
	return d.Path + ": " + d.Stage + ": " + d.Err.Error()
}

// Occurrence is a single matching line. Page is 0 for plain-text files and
// for PDFs whose text was extracted document-wide; native PDF extraction
// reports real 1-based pages with line numbers restarting on each page.
type Occurrence struct {
	FilePath string // Path of the file containing the match
	Ext      string // Lowercase extension, drives report coloring
	Page     int    // 1-based PDF page, 0 when not applicable
	Line     int    // 1-based line number within the file or page
	Content  string // Matching line, whitespace-trimmed
}

// SearchStats summarizes a completed run.
type SearchStats struct {
	TextFiles int           // Text files scanned
	PDFFiles  int           // PDF files scanned
	Duration  time.Duration // Wall-clock time for the whole run
}

// SearchResult is the aggregate outcome of a run: every occurrence found,
// every per-file failure skipped, and the run totals.
type SearchResult struct {
	Occurrences []Occurrence
	Diagnostics []Diagnostic
	Stats       SearchStats
}

// MatchedFileCount returns the number of distinct files with at least one
// occurrence.
func (r *SearchResult) MatchedFileCount() int {
	seen := make(map[string]struct{}, len(r.Occurrences))
	for _, occ := range r.Occurrences {
		seen[occ.FilePath] = struct{}{}
	}
	return len(seen)
}
