// Package logger provides logging implementations for docgrep scans.
//
// The logger package offers leveled logging of scan progress at the
// pipeline and summary levels. Implementations are thread-safe and
// support various output destinations (console, file, etc.).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/docgrep/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs scan progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps for tracking scan flow.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	eraseLine   bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// logLevel determines the minimum log level for messages to be output.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
// Color output is automatically enabled when writing to os.Stdout or os.Stderr with TTY support.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	// Normalize and validate log level
	normalizedLevel := normalizeLogLevel(logLevel)

	// Detect if we should use color output
	useColor := isTerminal(writer)

	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizedLevel,
		mutex:       sync.Mutex{},
		colorOutput: useColor,
		eraseLine:   isTTY(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	// Check if writer is os.Stdout or os.Stderr
	if w == os.Stdout || w == os.Stderr {
		// Use color library's built-in TTY detection
		// This will return false if NO_COLOR env var is set
		return !color.NoColor
	}

	return false
}

// isTTY reports whether the writer is backed by an interactive terminal,
// independent of color settings. Diagnostics erase any in-place progress
// line before printing when this is true.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info" // Default level
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	configuredLevel := logLevelToInt(cl.logLevel)
	msgLevel := logLevelToInt(messageLevel)
	return msgLevel >= configuredLevel
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo // Default to info if unknown
	}
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}

	// Check if this level should be logged
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string

	if cl.colorOutput {
		// Format with colors
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		// Plain text format
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogScanStart logs the start of a search run at INFO level.
// Format: "[HH:MM:SS] Searching for "<phrase>" under <root>"
func (cl *ConsoleLogger) LogScanStart(req models.SearchRequest) {
	if cl.writer == nil {
		return
	}

	// Scan logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()

	var message string
	if cl.colorOutput {
		phrase := color.New(color.Bold).Sprintf("%q", req.Phrase)
		message = fmt.Sprintf("[%s] Searching for %s under %s\n", ts, phrase, req.Root)
	} else {
		message = fmt.Sprintf("[%s] Searching for %q under %s\n", ts, req.Phrase, req.Root)
	}

	cl.writer.Write([]byte(message))
}

// LogPipelineStart logs the start of a scan pipeline at INFO level.
// Format: "[HH:MM:SS] Starting <name>: <count> files (<n> workers)"
// A pipeline with zero eligible files logs a skip notice instead.
func (cl *ConsoleLogger) LogPipelineStart(name string, files, workers int) {
	if cl.writer == nil {
		return
	}

	// Pipeline logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()

	displayName := name
	if cl.colorOutput {
		displayName = color.New(color.Bold).Sprint(name)
	}

	if files == 0 {
		cl.writer.Write([]byte(fmt.Sprintf("[%s] %s: no eligible files, skipping\n", ts, displayName)))
		return
	}

	fileLabel := "file"
	if files != 1 {
		fileLabel = "files"
	}

	message := fmt.Sprintf("[%s] Starting %s: %d %s", ts, displayName, files, fileLabel)
	if workers > 1 {
		message += fmt.Sprintf(" (%d workers)", workers)
	}
	message += "\n"

	cl.writer.Write([]byte(message))
}

// LogPipelineComplete logs the completion of a scan pipeline at INFO level.
// Format: "[HH:MM:SS] <name> complete (<duration>)"
func (cl *ConsoleLogger) LogPipelineComplete(name string, duration time.Duration) {
	if cl.writer == nil {
		return
	}

	// Pipeline logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(duration)

	var message string
	if cl.colorOutput {
		// Green for successful completion
		displayName := color.New(color.Bold).Sprint(name)
		completeText := color.New(color.FgGreen).Sprint("complete")
		message = fmt.Sprintf("[%s] %s %s (%s)\n", ts, displayName, completeText, durationStr)
	} else {
		message = fmt.Sprintf("[%s] %s complete (%s)\n", ts, name, durationStr)
	}

	cl.writer.Write([]byte(message))
}

// LogDiagnostic logs a skipped file at WARN level.
// Format: "[HH:MM:SS] [WARN] skipped <path>: <stage>: <error>"
// On a terminal, any in-place progress line is erased first so the
// diagnostic lands on its own line.
func (cl *ConsoleLogger) LogDiagnostic(d models.Diagnostic) {
	if cl.writer == nil {
		return
	}

	// Diagnostics are at WARN level
	if !cl.shouldLog("warn") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()

	var line string
	if cl.colorOutput {
		tag := color.New(color.FgYellow).Sprint("WARN")
		line = fmt.Sprintf("[%s] [%s] skipped %s\n", ts, tag, d.String())
	} else {
		line = fmt.Sprintf("[%s] [WARN] skipped %s\n", ts, d.String())
	}

	if cl.eraseLine {
		line = "\r\x1b[K" + line
	}

	cl.writer.Write([]byte(line))
}

// LogSummary logs the search summary with scan statistics at INFO level.
// Format: "[HH:MM:SS] === Search Summary ===\n[HH:MM:SS] Files scanned: <n> ...\n"
func (cl *ConsoleLogger) LogSummary(result models.SearchResult) {
	if cl.writer == nil {
		return
	}

	// Summary logging is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	scanned := result.Stats.TextFiles + result.Stats.PDFFiles
	occurrences := len(result.Occurrences)
	skipped := len(result.Diagnostics)
	durationStr := formatDuration(result.Stats.Duration)

	var output string

	if cl.colorOutput {
		// Colorized summary
		header := color.New(color.Bold).Sprint("=== Search Summary ===")
		output = fmt.Sprintf("[%s] %s\n", ts, header)
		output += fmt.Sprintf("[%s] Files scanned: %d (%d text, %d PDF)\n", ts, scanned, result.Stats.TextFiles, result.Stats.PDFFiles)

		// Green for occurrences when anything matched
		if occurrences > 0 {
			occText := color.New(color.FgGreen).Sprintf("Occurrences: %d", occurrences)
			output += fmt.Sprintf("[%s] %s\n", ts, occText)
		} else {
			output += fmt.Sprintf("[%s] Occurrences: %d\n", ts, occurrences)
		}

		output += fmt.Sprintf("[%s] Matched files: %d\n", ts, result.MatchedFileCount())

		// Yellow for skipped files if any, otherwise show in default color
		if skipped > 0 {
			skippedText := color.New(color.FgYellow).Sprintf("Skipped: %d", skipped)
			output += fmt.Sprintf("[%s] %s\n", ts, skippedText)
		} else {
			output += fmt.Sprintf("[%s] Skipped: %d\n", ts, skipped)
		}

		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if skipped > 0 {
			skippedHeader := color.New(color.FgYellow).Sprint("Skipped files:")
			output += fmt.Sprintf("[%s] %s\n", ts, skippedHeader)
			for _, d := range result.Diagnostics {
				output += fmt.Sprintf("[%s]   - %s\n", ts, d.String())
			}
		}
	} else {
		// Plain text summary
		output = fmt.Sprintf("[%s] === Search Summary ===\n", ts)
		output += fmt.Sprintf("[%s] Files scanned: %d (%d text, %d PDF)\n", ts, scanned, result.Stats.TextFiles, result.Stats.PDFFiles)
		output += fmt.Sprintf("[%s] Occurrences: %d\n", ts, occurrences)
		output += fmt.Sprintf("[%s] Matched files: %d\n", ts, result.MatchedFileCount())
		output += fmt.Sprintf("[%s] Skipped: %d\n", ts, skipped)
		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if skipped > 0 {
			output += fmt.Sprintf("[%s] Skipped files:\n", ts)
			for _, d := range result.Diagnostics {
				output += fmt.Sprintf("[%s]   - %s\n", ts, d.String())
			}
		}
	}

	cl.writer.Write([]byte(output))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogScanStart is a no-op implementation.
func (n *NoOpLogger) LogScanStart(req models.SearchRequest) {
}

// LogPipelineStart is a no-op implementation.
func (n *NoOpLogger) LogPipelineStart(name string, files, workers int) {
}

// LogPipelineComplete is a no-op implementation.
func (n *NoOpLogger) LogPipelineComplete(name string, duration time.Duration) {
}

// LogDiagnostic is a no-op implementation.
func (n *NoOpLogger) LogDiagnostic(d models.Diagnostic) {
}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(result models.SearchResult) {
}
