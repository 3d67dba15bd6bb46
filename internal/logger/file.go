package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/docgrep/internal/models"
)

// FileLogger logs scan events to files in a log directory.
// It creates timestamped per-scan log files and maintains a latest.log
// symlink pointing to the most recent scan. Each scan log carries a
// unique scan ID in its header so runs can be correlated.
// It is thread-safe and implements the engine.Logger interface.
// It supports log level filtering to control message verbosity.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	scanID   string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a new FileLogger that writes to .docgrep/logs/.
// It creates the log directory if it doesn't exist, opens a timestamped
// scan log file, and creates/updates the latest.log symlink.
// Uses default log level "info".
func NewFileLogger() (*FileLogger, error) {
	// Default log directory is .docgrep/logs/ in current working directory
	logDir := filepath.Join(".docgrep", "logs")
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDir creates a new FileLogger with a custom log directory.
// This is useful for testing or custom deployments.
// Uses default log level "info".
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a new FileLogger with a custom log directory and log level.
// This is useful for testing or custom deployments.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Generate timestamped filename: scan-YYYYMMDD-HHMMSS.log
	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("scan-%s.log", timestamp))

	// Open scan log file for writing
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan log file: %w", err)
	}

	// Create/update latest.log symlink
	symlinkPath := filepath.Join(logDir, "latest.log")

	// Remove existing symlink if it exists
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}

	// Create new symlink pointing to current scan log
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	// Normalize and validate log level
	normalizedLevel := normalizeLogLevel(logLevel)

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		scanID:   uuid.New().String(),
		logLevel: normalizedLevel,
		mu:       sync.Mutex{},
	}

	// Write header to scan log
	logger.writeRunLog("=== docgrep scan log ===\n")
	logger.writeRunLog(fmt.Sprintf("Scan ID: %s\n", logger.scanID))
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// ScanID returns the unique identifier written to this scan log's header.
func (fl *FileLogger) ScanID() string {
	return fl.scanID
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	configuredLevel := logLevelToInt(fl.logLevel)
	msgLevel := logLevelToInt(messageLevel)
	return msgLevel >= configuredLevel
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (fl *FileLogger) logWithLevel(level string, message string) {
	// Check if this level should be logged
	levelLower := strings.ToLower(level)
	if !fl.shouldLog(levelLower) {
		return
	}

	formatted := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message)
	fl.writeRunLog(formatted)
}

// LogScanStart logs the start of a search run at INFO level.
// It records the phrase and root directory being searched.
func (fl *FileLogger) LogScanStart(req models.SearchRequest) {
	// Scan logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf(
		"[%s] Searching for %q under %s\n",
		time.Now().Format("15:04:05"),
		req.Phrase,
		req.Root,
	)

	fl.writeRunLog(message)
}

// LogPipelineStart logs the start of a scan pipeline at INFO level.
// It records the pipeline name, number of files, and worker count.
func (fl *FileLogger) LogPipelineStart(name string, files, workers int) {
	// Pipeline logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	if files == 0 {
		message := fmt.Sprintf("[%s] %s: no eligible files, skipping\n", time.Now().Format("15:04:05"), name)
		fl.writeRunLog(message)
		return
	}

	fileLabel := "file"
	if files != 1 {
		fileLabel = "files"
	}

	message := fmt.Sprintf(
		"[%s] Starting %s: %d %s (workers: %d)\n",
		time.Now().Format("15:04:05"),
		name,
		files,
		fileLabel,
		workers,
	)

	fl.writeRunLog(message)
}

// LogPipelineComplete logs the completion of a scan pipeline at INFO level.
// It records the pipeline name and duration.
func (fl *FileLogger) LogPipelineComplete(name string, duration time.Duration) {
	// Pipeline logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf(
		"[%s] %s complete: duration %.1fs\n",
		time.Now().Format("15:04:05"),
		name,
		duration.Seconds(),
	)

	fl.writeRunLog(message)
}

// LogDiagnostic logs a skipped file at WARN level.
// Format: "[HH:MM:SS] [WARN] skipped <path>: <stage>: <error>"
func (fl *FileLogger) LogDiagnostic(d models.Diagnostic) {
	fl.logWithLevel("WARN", "skipped "+d.String())
}

// LogSummary logs the search summary with final statistics at INFO level.
// It records files scanned, occurrences, matched files, skipped files,
// duration, and overall status.
func (fl *FileLogger) LogSummary(result models.SearchResult) {
	// Summary logging is at INFO level
	if !fl.shouldLog("info") {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	scanned := result.Stats.TextFiles + result.Stats.PDFFiles
	skipped := len(result.Diagnostics)

	// Determine status
	status := "COMPLETE"
	if skipped > 0 {
		status = fmt.Sprintf("PARTIAL (%d skipped)", skipped)
	}

	// Build summary output
	message := fmt.Sprintf(
		"\n[%s] === SCAN SUMMARY ===\n"+
			"[%s] Files scanned: %d (%d text, %d PDF)\n"+
			"[%s] Occurrences:   %d\n"+
			"[%s] Matched files: %d\n"+
			"[%s] Skipped:       %d\n"+
			"[%s] Total time:    %.1fs\n"+
			"[%s] Status:        %s\n"+
			"[%s] Completed at:  %s\n",
		timestamp,
		timestamp,
		scanned,
		result.Stats.TextFiles,
		result.Stats.PDFFiles,
		timestamp,
		len(result.Occurrences),
		timestamp,
		result.MatchedFileCount(),
		timestamp,
		skipped,
		timestamp,
		result.Stats.Duration.Seconds(),
		timestamp,
		status,
		timestamp,
		time.Now().Format(time.RFC3339),
	)

	fl.writeRunLog(message)

	for _, d := range result.Diagnostics {
		fl.writeRunLog(fmt.Sprintf("[%s]   - %s\n", timestamp, d.String()))
	}
}

// Close flushes and closes the scan log file.
// It should be called when the logger is no longer needed.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync scan log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close scan log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the scan log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}
