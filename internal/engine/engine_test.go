package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/docgrep/internal/classify"
	"github.com/harrison/docgrep/internal/extract"
	"github.com/harrison/docgrep/internal/models"
)

// stubStrategy serves canned pages and errors keyed by base filename
type stubStrategy struct {
	name  string
	pages map[string][]extract.PageLine
	errs  map[string]error

	mu    sync.Mutex
	calls []string
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, path string) ([]extract.PageLine, error) {
	base := filepath.Base(path)
	s.mu.Lock()
	s.calls = append(s.calls, base)
	s.mu.Unlock()

	if err, ok := s.errs[base]; ok {
		return nil, err
	}
	return s.pages[base], nil
}

func (s *stubStrategy) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type captureLogger struct {
	mu      sync.Mutex
	events  []string
	diags   []models.Diagnostic
	summary *models.SearchResult
}

func (l *captureLogger) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *captureLogger) LogScanStart(req models.SearchRequest) {
	l.record("scan start")
}

func (l *captureLogger) LogPipelineStart(name string, files, workers int) {
	l.record(fmt.Sprintf("start %s files=%d workers=%d", name, files, workers))
}

func (l *captureLogger) LogPipelineComplete(name string, duration time.Duration) {
	l.record("complete " + name)
}

func (l *captureLogger) LogDiagnostic(d models.Diagnostic) {
	l.mu.Lock()
	l.diags = append(l.diags, d)
	l.mu.Unlock()
	l.record("diagnostic")
}

func (l *captureLogger) LogSummary(result models.SearchResult) {
	l.mu.Lock()
	l.summary = &result
	l.mu.Unlock()
	l.record("summary")
}

type captureProgress struct {
	mu        sync.Mutex
	textSteps [][2]int
	pdfSteps  [][2]int
	doneCalls int
}

func (p *captureProgress) TextStep(current, total int, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textSteps = append(p.textSteps, [2]int{current, total})
}

func (p *captureProgress) PDFStep(current, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pdfSteps = append(p.pdfSteps, [2]int{current, total})
}

func (p *captureProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doneCalls++
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
	return tmpDir
}

func testOptions(primary extract.PDFStrategy) Options {
	return Options{
		Extensions: classify.DefaultTextExtensions(),
		Workers:    2,
		Primary:    primary,
	}
}

func TestSearchTextFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"notes.txt":   "first line\nthe needle is here\nlast line",
		"readme.md":   "NEEDLE in caps\nnothing else",
		"other.txt":   "no match at all",
		"skipped.bin": "needle but wrong extension",
	})

	eng := New(testOptions(&stubStrategy{name: "stub"}))
	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Occurrences) != 2 {
		t.Fatalf("occurrences = %d, want 2", len(result.Occurrences))
	}

	// Path order puts notes.txt before readme.md
	first, second := result.Occurrences[0], result.Occurrences[1]
	if filepath.Base(first.FilePath) != "notes.txt" || first.Line != 2 {
		t.Errorf("first occurrence = %s:%d, want notes.txt:2", first.FilePath, first.Line)
	}
	if first.Content != "the needle is here" {
		t.Errorf("first content = %q, want trimmed line", first.Content)
	}
	if filepath.Base(second.FilePath) != "readme.md" || second.Line != 1 {
		t.Errorf("second occurrence = %s:%d, want readme.md:1", second.FilePath, second.Line)
	}

	if len(result.Diagnostics) != 0 {
		t.Errorf("diagnostics = %d, want 0", len(result.Diagnostics))
	}
	if result.Stats.TextFiles != 3 {
		t.Errorf("Stats.TextFiles = %d, want 3", result.Stats.TextFiles)
	}
	if result.Stats.PDFFiles != 0 {
		t.Errorf("Stats.PDFFiles = %d, want 0", result.Stats.PDFFiles)
	}
	if result.Stats.Duration <= 0 {
		t.Errorf("Stats.Duration = %v, want > 0", result.Stats.Duration)
	}
}

func TestSearchTrimsAndMatchesInsideWhitespace(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"doc.txt": "   padded NEEDLE line   \n",
	})

	eng := New(testOptions(&stubStrategy{name: "stub"}))
	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(result.Occurrences))
	}
	if got := result.Occurrences[0].Content; got != "padded NEEDLE line" {
		t.Errorf("content = %q, want whitespace trimmed", got)
	}
}

func TestSearchMixedPipelineOrdering(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.txt": "needle on line one",
		"c.pdf": "%PDF-1.4 placeholder",
		"d.txt": "line\nneedle again",
	})

	stub := &stubStrategy{
		name: "stub",
		pages: map[string][]extract.PageLine{
			"c.pdf": {
				{Page: 1, Line: 3, Text: "a needle in page one"},
				{Page: 2, Line: 1, Text: "no match on page two"},
			},
		},
	}

	eng := New(testOptions(stub))
	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	wantOrder := []struct {
		base string
		page int
		line int
	}{
		{"a.txt", 0, 1},
		{"c.pdf", 1, 3},
		{"d.txt", 0, 2},
	}
	if len(result.Occurrences) != len(wantOrder) {
		t.Fatalf("occurrences = %d, want %d", len(result.Occurrences), len(wantOrder))
	}
	for i, want := range wantOrder {
		got := result.Occurrences[i]
		if filepath.Base(got.FilePath) != want.base || got.Page != want.page || got.Line != want.line {
			t.Errorf("occurrence[%d] = %s page %d line %d, want %s page %d line %d",
				i, filepath.Base(got.FilePath), got.Page, got.Line, want.base, want.page, want.line)
		}
	}

	if result.Stats.TextFiles != 2 || result.Stats.PDFFiles != 1 {
		t.Errorf("stats = %d text %d pdf, want 2 text 1 pdf", result.Stats.TextFiles, result.Stats.PDFFiles)
	}
}

func TestSearchPDFFailureDoesNotStopRun(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"bad.pdf":  "x",
		"good.pdf": "x",
	})

	stub := &stubStrategy{
		name: "stub",
		pages: map[string][]extract.PageLine{
			"good.pdf": {{Page: 1, Line: 1, Text: "needle survives"}},
		},
		errs: map[string]error{
			"bad.pdf": errors.New("malformed xref table"),
		},
	}

	eng := New(testOptions(stub))
	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Occurrences) != 1 || filepath.Base(result.Occurrences[0].FilePath) != "good.pdf" {
		t.Fatalf("occurrences = %+v, want one from good.pdf", result.Occurrences)
	}

	if len(result.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(result.Diagnostics))
	}
	diag := result.Diagnostics[0]
	if filepath.Base(diag.Path) != "bad.pdf" {
		t.Errorf("diagnostic path = %s, want bad.pdf", diag.Path)
	}
	if diag.Stage != models.StageExtract {
		t.Errorf("diagnostic stage = %q, want %q", diag.Stage, models.StageExtract)
	}
	if !strings.Contains(diag.Err.Error(), "malformed xref table") {
		t.Errorf("diagnostic err = %v, want the extraction failure", diag.Err)
	}
}

func TestSearchPDFFallback(t *testing.T) {
	root := writeFiles(t, map[string]string{"doc.pdf": "x"})

	primary := &stubStrategy{
		name: "tool",
		errs: map[string]error{"doc.pdf": errors.New("exit status 1")},
	}
	fallback := &stubStrategy{
		name: "native",
		pages: map[string][]extract.PageLine{
			"doc.pdf": {{Page: 1, Line: 1, Text: "needle recovered"}},
		},
	}

	opts := testOptions(primary)
	opts.Fallback = fallback
	eng := New(opts)

	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1 from the fallback", len(result.Occurrences))
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("diagnostics = %d, want 0 when the fallback succeeds", len(result.Diagnostics))
	}
	if primary.callCount() != 1 || fallback.callCount() != 1 {
		t.Errorf("primary called %d times, fallback %d, want 1 and 1", primary.callCount(), fallback.callCount())
	}
}

func TestSearchUnreadableTextFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}

	root := writeFiles(t, map[string]string{
		"locked.txt": "needle hidden",
		"open.txt":   "needle visible",
	})
	if err := os.Chmod(filepath.Join(root, "locked.txt"), 0000); err != nil {
		t.Fatalf("failed to chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "locked.txt"), 0644) })

	eng := New(testOptions(&stubStrategy{name: "stub"}))
	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Occurrences) != 1 || filepath.Base(result.Occurrences[0].FilePath) != "open.txt" {
		t.Fatalf("occurrences = %+v, want one from open.txt", result.Occurrences)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Stage != models.StageRead {
		t.Fatalf("diagnostics = %+v, want one read failure", result.Diagnostics)
	}
	// Both files were visited even though one failed
	if result.Stats.TextFiles != 2 {
		t.Errorf("Stats.TextFiles = %d, want 2", result.Stats.TextFiles)
	}
}

func TestSearchInvalidRequest(t *testing.T) {
	eng := New(testOptions(&stubStrategy{name: "stub"}))

	tests := []struct {
		name string
		req  models.SearchRequest
	}{
		{"empty phrase", models.SearchRequest{Phrase: "", Root: "/tmp"}},
		{"whitespace phrase", models.SearchRequest{Phrase: "   ", Root: "/tmp"}},
		{"empty root", models.SearchRequest{Phrase: "needle", Root: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eng.Search(context.Background(), tt.req)
			if err == nil {
				t.Fatalf("Search() expected error, got result %+v", result)
			}
			if !strings.Contains(err.Error(), "invalid search request") {
				t.Errorf("Search() error = %v, want invalid request", err)
			}
		})
	}
}

func TestSearchBadRoot(t *testing.T) {
	eng := New(testOptions(&stubStrategy{name: "stub"}))

	_, err := eng.Search(context.Background(), models.SearchRequest{
		Phrase: "needle",
		Root:   "/nonexistent/directory/path",
	})
	if err == nil {
		t.Fatal("Search() expected error for missing root")
	}
	if !strings.Contains(err.Error(), "failed to access directory") {
		t.Errorf("Search() error = %v, want access failure", err)
	}
}

func TestSearchPreCancelledContext(t *testing.T) {
	root := writeFiles(t, map[string]string{"doc.txt": "needle"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(testOptions(&stubStrategy{name: "stub"}))
	result, err := eng.Search(ctx, models.SearchRequest{Phrase: "needle", Root: root})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() error = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Errorf("Search() result = %+v, want nil before any work started", result)
	}
}

// cancellingStrategy cancels the run from inside the first extraction,
// then holds its worker long enough for the launch loop to notice.
type cancellingStrategy struct {
	cancel func()
	once   sync.Once

	mu    sync.Mutex
	calls int
}

func (s *cancellingStrategy) Name() string { return "cancelling" }

func (s *cancellingStrategy) Extract(ctx context.Context, path string) ([]extract.PageLine, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	s.once.Do(s.cancel)
	time.Sleep(50 * time.Millisecond)
	return nil, ctx.Err()
}

func TestSearchCancelledDuringPDFs(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.txt": "needle early",
		"b.pdf": "x",
		"c.pdf": "x",
		"d.pdf": "x",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy := &cancellingStrategy{cancel: cancel}
	opts := testOptions(strategy)
	opts.Workers = 1
	eng := New(opts)

	result, err := eng.Search(ctx, models.SearchRequest{Phrase: "needle", Root: root})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("Search() returned nil result, want the partial result")
	}

	// The text pipeline ran to completion before cancellation
	if len(result.Occurrences) != 1 || filepath.Base(result.Occurrences[0].FilePath) != "a.txt" {
		t.Errorf("occurrences = %+v, want the text match only", result.Occurrences)
	}

	strategy.mu.Lock()
	calls := strategy.calls
	strategy.mu.Unlock()
	if calls != 1 {
		t.Errorf("extractions launched after cancel = %d, want 1", calls)
	}

	// Cancelled extractions are not parse failures
	for _, d := range result.Diagnostics {
		if errors.Is(d.Err, context.Canceled) {
			t.Errorf("cancellation recorded as diagnostic: %v", d)
		}
	}
}

// boundedStrategy records the highest number of concurrent extractions
type boundedStrategy struct {
	mu      sync.Mutex
	current int
	maxSeen int
}

func (s *boundedStrategy) Name() string { return "bounded" }

func (s *boundedStrategy) Extract(ctx context.Context, path string) ([]extract.PageLine, error) {
	s.mu.Lock()
	s.current++
	if s.current > s.maxSeen {
		s.maxSeen = s.current
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(25 * time.Millisecond):
	}

	s.mu.Lock()
	s.current--
	s.mu.Unlock()

	return nil, nil
}

func TestSearchRespectsWorkerBound(t *testing.T) {
	files := make(map[string]string, 6)
	for i := 0; i < 6; i++ {
		files[fmt.Sprintf("doc%d.pdf", i)] = "x"
	}
	root := writeFiles(t, files)

	strategy := &boundedStrategy{}
	opts := testOptions(strategy)
	opts.Workers = 2
	eng := New(opts)

	if _, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if strategy.maxSeen > 2 {
		t.Errorf("max concurrent extractions = %d, want <= 2", strategy.maxSeen)
	}
}

func TestSearchTelemetry(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.txt": "needle",
		"b.pdf": "x",
	})

	stub := &stubStrategy{
		name:  "stub",
		pages: map[string][]extract.PageLine{"b.pdf": {{Page: 1, Line: 1, Text: "needle"}}},
	}

	log := &captureLogger{}
	progress := &captureProgress{}
	opts := testOptions(stub)
	opts.Workers = 4
	opts.Logger = log
	opts.Progress = progress
	eng := New(opts)

	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	wantEvents := []string{
		"scan start",
		"start text scan files=1 workers=1",
		"complete text scan",
		"start PDF scan files=1 workers=1", // Pool clamped to the file count
		"complete PDF scan",
		"summary",
	}
	if len(log.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", log.events, wantEvents)
	}
	for i, want := range wantEvents {
		if log.events[i] != want {
			t.Errorf("event[%d] = %q, want %q", i, log.events[i], want)
		}
	}

	if log.summary == nil {
		t.Fatal("summary was not logged")
	}
	if len(log.summary.Occurrences) != len(result.Occurrences) {
		t.Errorf("summary occurrences = %d, result has %d", len(log.summary.Occurrences), len(result.Occurrences))
	}

	if len(progress.textSteps) != 1 || progress.textSteps[0] != [2]int{1, 1} {
		t.Errorf("text steps = %v, want [[1 1]]", progress.textSteps)
	}
	if len(progress.pdfSteps) != 1 || progress.pdfSteps[0] != [2]int{1, 1} {
		t.Errorf("pdf steps = %v, want [[1 1]]", progress.pdfSteps)
	}
	if progress.doneCalls != 2 {
		t.Errorf("Done() calls = %d, want one per pipeline", progress.doneCalls)
	}
}

func TestSearchEmptyPipelinesSkipped(t *testing.T) {
	root := writeFiles(t, map[string]string{"image.png": "x"})

	log := &captureLogger{}
	opts := testOptions(&stubStrategy{name: "stub"})
	opts.Logger = log
	eng := New(opts)

	result, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Occurrences) != 0 {
		t.Errorf("occurrences = %d, want 0", len(result.Occurrences))
	}

	wantEvents := []string{
		"scan start",
		"start text scan files=0 workers=1",
		"start PDF scan files=0 workers=0",
		"summary",
	}
	if len(log.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", log.events, wantEvents)
	}
	for i, want := range wantEvents {
		if log.events[i] != want {
			t.Errorf("event[%d] = %q, want %q", i, log.events[i], want)
		}
	}
}

func TestSearchProgressCountsEveryFile(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.txt": "one",
		"b.txt": "two",
		"c.txt": "three",
	})

	progress := &captureProgress{}
	opts := testOptions(&stubStrategy{name: "stub"})
	opts.Progress = progress
	eng := New(opts)

	if _, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(progress.textSteps) != len(want) {
		t.Fatalf("text steps = %v, want %v", progress.textSteps, want)
	}
	for i, step := range want {
		if progress.textSteps[i] != step {
			t.Errorf("text step[%d] = %v, want %v", i, progress.textSteps[i], step)
		}
	}
}

func TestNewClampsWorkers(t *testing.T) {
	root := writeFiles(t, map[string]string{"doc.txt": "needle"})

	opts := testOptions(&stubStrategy{name: "stub"})
	opts.Workers = 0
	eng := New(opts)

	if _, err := eng.Search(context.Background(), models.SearchRequest{Phrase: "needle", Root: root}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if eng.workers != 1 {
		t.Errorf("workers = %d, want clamped to 1", eng.workers)
	}
}
