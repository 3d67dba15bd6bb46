package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ToolStrategy extracts PDF text by invoking the pdftotext binary.
// Output is requested on stdout so no scratch files are written next to
// the scanned tree.
type ToolStrategy struct {
	// Path is the resolved tool binary
	Path string
	// Timeout bounds a single invocation (0 = none)
	Timeout time.Duration
}

// Name identifies the strategy in logs and diagnostics
func (s *ToolStrategy) Name() string {
	return "pdftotext"
}

// Extract runs `pdftotext -enc UTF-8 <path> -` and numbers the captured
// stdout lines document-wide, with page set to 0.
func (s *ToolStrategy) Extract(ctx context.Context, path string) ([]PageLine, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	// Create command with context (for timeout)
	cmd := exec.CommandContext(ctx, s.Path, "-enc", "UTF-8", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("pdftotext timed out after %v", s.Timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = exitErr.String()
			}
			return nil, fmt.Errorf("pdftotext failed: %s", detail)
		}
		return nil, fmt.Errorf("failed to run pdftotext: %w", err)
	}

	var lines []PageLine
	for i, line := range splitLines(stdout.String()) {
		lines = append(lines, PageLine{Page: 0, Line: i + 1, Text: line})
	}
	return lines, nil
}
