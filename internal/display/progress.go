package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/harrison/docgrep/internal/logger"
	"github.com/mattn/go-isatty"
)

// maxNameLen bounds the file name shown on the progress line so long
// names don't wrap and break in-place overwriting.
const maxNameLen = 50

// ProgressPrinter renders in-place progress lines for a scan pipeline.
// Each step overwrites the previous one with a carriage return; Done moves
// to a fresh line when a progress line is on screen. When not enabled
// (writer is not a terminal) every method is a no-op, so piped output
// carries no progress noise.
type ProgressPrinter struct {
	writer  io.Writer
	enabled bool
	active  bool
	mu      sync.Mutex
}

// NewProgressPrinter creates a progress printer writing to w.
// Pass enabled=false to suppress all output, e.g. when w is not a terminal.
func NewProgressPrinter(w io.Writer, enabled bool) *ProgressPrinter {
	return &ProgressPrinter{
		writer:  w,
		enabled: enabled,
	}
}

// IsTerminal reports whether w is backed by an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TextStep displays progress for the text pipeline:
// "[N/total] P% - Processing: name..." with the file's base name
// truncated to keep the line from wrapping.
func (p *ProgressPrinter) TextStep(current, total int, path string) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var percent float64
	if total > 0 {
		percent = float64(current) / float64(total) * 100
	}

	name := []rune(filepath.Base(path))
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	fmt.Fprintf(p.writer, "\r[%d/%d] %.1f%% - Processing: %s...\x1b[K", current, total, percent, string(name))
	p.active = true
}

// PDFStep displays progress for the PDF pipeline as a progress bar:
// "Scanning PDFs [=====     ] N/total (P%)".
func (p *ProgressPrinter) PDFStep(current, total int) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bar := logger.NewProgressBar(total, 20, p.enabled)
	bar.Update(current)
	bar.SetPrefix("Scanning PDFs ")

	fmt.Fprintf(p.writer, "\r%s\x1b[K", bar.Render())
	p.active = true
}

// Done finishes the current progress line, if any, by moving to a new line.
func (p *ProgressPrinter) Done() {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		fmt.Fprint(p.writer, "\n")
		p.active = false
	}
}
