package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PageLine is one line of text extracted from a PDF. Page is 0 when the
// extraction was document-wide, with line numbers running across the whole
// document; native extraction reports real 1-based pages with line numbers
// restarting on each page.
type PageLine struct {
	Page int
	Line int
	Text string
}

// PDFStrategy extracts the text lines of a single PDF file. Implementations
// must be safe for concurrent use; the PDF pipeline calls Extract from
// multiple workers.
type PDFStrategy interface {
	// Name identifies the strategy in logs and diagnostics
	Name() string
	// Extract returns the text lines of the PDF at path
	Extract(ctx context.Context, path string) ([]PageLine, error)
}

// Probe selects the PDF strategies for a run. The external tool is probed
// once here, not per file. When found it becomes the primary strategy with
// the native parser as per-file fallback; when missing the native parser
// runs alone and warning carries the one-time notice to show the user.
func Probe(toolPath string, timeout time.Duration) (primary, fallback PDFStrategy, warning string) {
	native := &NativeStrategy{}

	resolved, err := exec.LookPath(toolPath)
	if err != nil {
		warning = fmt.Sprintf("%s not found on PATH, PDFs will use the built-in parser", toolPath)
		return native, nil, warning
	}

	return &ToolStrategy{Path: resolved, Timeout: timeout}, native, ""
}

// ExtractWithFallback runs the primary strategy and, when it fails and a
// fallback exists, retries the same file once on the fallback. The file is
// unparseable only when every strategy has failed on it.
func ExtractWithFallback(ctx context.Context, primary, fallback PDFStrategy, path string) ([]PageLine, error) {
	lines, err := primary.Extract(ctx, path)
	if err == nil {
		return lines, nil
	}
	if fallback == nil {
		return nil, fmt.Errorf("%s: %w", primary.Name(), err)
	}

	lines, fallbackErr := fallback.Extract(ctx, path)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%s: %v; %s: %w", primary.Name(), err, fallback.Name(), fallbackErr)
	}
	return lines, nil
}

// splitLines breaks extracted text into matchable lines. Carriage returns
// and form feeds (the pdftotext page separator) count as line breaks,
// interior empty lines keep their positions, and invalid UTF-8 sequences
// are dropped like in the plain-text reader.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	normalized := strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n").Replace(text)
	lines := strings.Split(normalized, "\n")

	// A trailing newline is a terminator, not an extra empty line
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lines[i] = strings.ToValidUTF8(line, "")
	}
	return lines
}
