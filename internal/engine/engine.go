// Package engine orchestrates a search run end to end: a counting pass
// sizes the progress displays, the streaming walk scans text files as it
// reaches them, and PDFs fan out to a bounded worker pool. Results come
// back aggregated in deterministic path, page, line order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harrison/docgrep/internal/extract"
	"github.com/harrison/docgrep/internal/logger"
	"github.com/harrison/docgrep/internal/match"
	"github.com/harrison/docgrep/internal/models"
	"github.com/harrison/docgrep/internal/report"
	"github.com/harrison/docgrep/internal/scan"
)

// Pipeline names used in telemetry.
const (
	textPipeline = "text scan"
	pdfPipeline  = "PDF scan"
)

// Logger receives run telemetry. Implementations must tolerate being
// called from the start of a run through its summary; all calls happen
// on the goroutine that called Search.
type Logger interface {
	LogScanStart(req models.SearchRequest)
	LogPipelineStart(name string, files, workers int)
	LogPipelineComplete(name string, duration time.Duration)
	LogDiagnostic(d models.Diagnostic)
	LogSummary(result models.SearchResult)
}

// ProgressSink receives in-place progress updates as files complete.
// Like Logger, all calls happen on the goroutine that called Search.
type ProgressSink interface {
	TextStep(current, total int, path string)
	PDFStep(current, total int)
	Done()
}

// noopProgress discards progress updates
type noopProgress struct{}

func (noopProgress) TextStep(current, total int, path string) {}
func (noopProgress) PDFStep(current, total int)               {}
func (noopProgress) Done()                                    {}

// Options configures an Engine.
type Options struct {
	// Extensions is the text-file allowlist
	Extensions []string
	// ExcludeDirs lists directory names pruned during enumeration
	ExcludeDirs []string
	// Workers bounds the PDF extraction pool; values below 1 mean 1
	Workers int
	// Primary extracts PDF text; required if the tree may contain PDFs
	Primary extract.PDFStrategy
	// Fallback retries files the primary failed on; may be nil
	Fallback extract.PDFStrategy
	// Logger receives telemetry; nil discards it
	Logger Logger
	// Progress receives in-place updates; nil discards them
	Progress ProgressSink
}

// Engine runs searches: it walks the tree, scans text files inline,
// fans PDF files out to a bounded worker pool, and aggregates the
// occurrences into deterministic order. An Engine is immutable and can
// run any number of searches.
type Engine struct {
	walker   *scan.Walker
	primary  extract.PDFStrategy
	fallback extract.PDFStrategy
	workers  int
	logger   Logger
	progress ProgressSink
}

// New builds an Engine from options, substituting no-op telemetry for
// nil Logger and Progress.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	progress := opts.Progress
	if progress == nil {
		progress = noopProgress{}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		walker: scan.NewWalker(scan.Options{
			Extensions:  opts.Extensions,
			ExcludeDirs: opts.ExcludeDirs,
		}),
		primary:  opts.Primary,
		fallback: opts.Fallback,
		workers:  workers,
		logger:   log,
		progress: progress,
	}
}

// Search runs one search and returns every occurrence of the phrase
// beneath the request root, sorted by path, page, and line. Per-file
// failures become diagnostics on the result rather than errors; Search
// fails only on an invalid request or an unusable root. Cancelling ctx
// stops the run at the next file boundary and returns the partial
// result alongside the context's error.
func (e *Engine) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}
	matcher, err := match.Compile(req.Phrase)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	e.logger.LogScanStart(req)

	// Counting pass sizes the progress displays and validates the root
	// before any file content is read
	totals, err := e.walker.Count(req.Root)
	if err != nil {
		return nil, err
	}

	result := &models.SearchResult{}
	var textOccs []models.Occurrence
	var pdfFiles []models.CandidateFile

	// Streaming pass: text files are scanned as the walk reaches them,
	// PDFs are collected for the concurrent pipeline that follows
	textStart := time.Now()
	e.logger.LogPipelineStart(textPipeline, totals.Text, 1)

	scanned := 0
	walkDiags, walkErr := e.walker.Walk(req.Root, func(f models.CandidateFile) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch f.Category {
		case models.CategoryPDF:
			pdfFiles = append(pdfFiles, f)
		case models.CategoryText:
			scanned++
			e.progress.TextStep(scanned, totals.Text, f.Path)
			occs, diag := e.scanTextFile(matcher, f)
			textOccs = append(textOccs, occs...)
			if diag != nil {
				result.Diagnostics = append(result.Diagnostics, *diag)
				e.logger.LogDiagnostic(*diag)
			}
		}
		return nil
	})
	e.progress.Done()
	for _, d := range walkDiags {
		result.Diagnostics = append(result.Diagnostics, d)
		e.logger.LogDiagnostic(d)
	}
	if walkErr != nil {
		result.Occurrences = report.Aggregate(textOccs, nil)
		result.Stats = models.SearchStats{TextFiles: scanned, Duration: time.Since(start)}
		return result, walkErr
	}
	if totals.Text > 0 {
		e.logger.LogPipelineComplete(textPipeline, time.Since(textStart))
	}

	workers := e.workers
	if workers > len(pdfFiles) {
		workers = len(pdfFiles)
	}
	pdfStart := time.Now()
	e.logger.LogPipelineStart(pdfPipeline, len(pdfFiles), workers)

	var pdfOccs []models.Occurrence
	extracted := 0
	if len(pdfFiles) > 0 {
		var poolErr error
		pdfOccs, extracted, poolErr = e.runPDFPool(ctx, matcher, pdfFiles, workers, result)
		e.progress.Done()
		if poolErr != nil {
			result.Occurrences = report.Aggregate(textOccs, pdfOccs)
			result.Stats = models.SearchStats{TextFiles: scanned, PDFFiles: extracted, Duration: time.Since(start)}
			return result, poolErr
		}
		e.logger.LogPipelineComplete(pdfPipeline, time.Since(pdfStart))
	}

	result.Occurrences = report.Aggregate(textOccs, pdfOccs)
	result.Stats = models.SearchStats{
		TextFiles: scanned,
		PDFFiles:  extracted,
		Duration:  time.Since(start),
	}
	e.logger.LogSummary(*result)

	return result, nil
}

// scanTextFile reads one text file and matches its lines. A read
// failure is returned as a diagnostic so the run can continue.
func (e *Engine) scanTextFile(matcher *match.Matcher, f models.CandidateFile) ([]models.Occurrence, *models.Diagnostic) {
	lines, err := extract.Lines(f.Path)
	if err != nil {
		return nil, &models.Diagnostic{Path: f.Path, Stage: models.StageRead, Err: err}
	}

	var occs []models.Occurrence
	for _, line := range lines {
		if !matcher.Matches(line.Text) {
			continue
		}
		occs = append(occs, models.Occurrence{
			FilePath: f.Path,
			Ext:      f.Ext,
			Line:     line.Number,
			Content:  strings.TrimSpace(line.Text),
		})
	}
	return occs, nil
}

// scanPDFFile extracts one PDF and matches its lines
func (e *Engine) scanPDFFile(ctx context.Context, matcher *match.Matcher, f models.CandidateFile) ([]models.Occurrence, error) {
	pageLines, err := extract.ExtractWithFallback(ctx, e.primary, e.fallback, f.Path)
	if err != nil {
		return nil, err
	}

	var occs []models.Occurrence
	for _, pl := range pageLines {
		if !matcher.Matches(pl.Text) {
			continue
		}
		occs = append(occs, models.Occurrence{
			FilePath: f.Path,
			Ext:      f.Ext,
			Page:     pl.Page,
			Line:     pl.Line,
			Content:  strings.TrimSpace(pl.Text),
		})
	}
	return occs, nil
}

type pdfResult struct {
	file        models.CandidateFile
	occurrences []models.Occurrence
	err         error
}

// runPDFPool extracts the PDF files on a bounded worker pool. Workers
// only extract and match; diagnostics, progress, and telemetry all
// happen on this goroutine as results are collected, so the pool never
// writes to the terminal from two goroutines at once. Returns the
// occurrences found, the number of files completed, and the context's
// error if the launch loop was cancelled.
func (e *Engine) runPDFPool(ctx context.Context, matcher *match.Matcher, files []models.CandidateFile, workers int, result *models.SearchResult) ([]models.Occurrence, int, error) {
	semaphore := make(chan struct{}, workers)
	resultsCh := make(chan pdfResult, len(files))

	var wg sync.WaitGroup
	var launchErr error

	for _, f := range files {
		select {
		case <-ctx.Done():
			launchErr = ctx.Err()
		case semaphore <- struct{}{}:
		}
		if launchErr != nil {
			break
		}

		wg.Add(1)
		go func(f models.CandidateFile) {
			defer wg.Done()
			defer func() { <-semaphore }()

			occs, err := e.scanPDFFile(ctx, matcher, f)
			// resultsCh is buffered for every file, the send cannot block
			resultsCh <- pdfResult{file: f, occurrences: occs, err: err}
		}(f)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var occurrences []models.Occurrence
	completed := 0
	for res := range resultsCh {
		completed++
		e.progress.PDFStep(completed, len(files))

		if res.err != nil {
			// Files cut off by cancellation were not parse failures
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				continue
			}
			diag := models.Diagnostic{Path: res.file.Path, Stage: models.StageExtract, Err: res.err}
			result.Diagnostics = append(result.Diagnostics, diag)
			e.logger.LogDiagnostic(diag)
			continue
		}
		occurrences = append(occurrences, res.occurrences...)
	}

	return occurrences, completed, launchErr
}
