package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/docgrep/internal/config"
	"github.com/harrison/docgrep/internal/display"
	"github.com/harrison/docgrep/internal/engine"
	"github.com/harrison/docgrep/internal/extract"
	"github.com/harrison/docgrep/internal/filelock"
	"github.com/harrison/docgrep/internal/logger"
	"github.com/harrison/docgrep/internal/models"
	"github.com/harrison/docgrep/internal/report"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [phrase] [directory]",
		Short: "Search a directory tree for a literal phrase",
		Long: `Search every eligible file beneath a directory for a literal phrase,
case-insensitively. Text files on the extension allowlist are scanned
line by line. PDFs are extracted with pdftotext when it is installed,
falling back to the built-in parser, and scanned by a concurrent
worker pool.

Omitted arguments are prompted for interactively. Matches are printed
sorted by file path, page, and line. Files that cannot be read are
skipped with a warning and counted in the summary.

Configuration is loaded from .docgrep/config.yaml when present; flags
override file settings.

Examples:
  # Search the current directory
  docgrep search "connection refused" .

  # Prompt for the phrase and directory
  docgrep search

  # Narrow the allowlist and skip vendored trees
  docgrep search TODO ./src --ext .go --ext .md --exclude-dir vendor

  # Export the report and keep a run log
  docgrep search "invoice 42" ~/docs --output report.txt --log-dir ./logs`,
		Args: cobra.MaximumNArgs(2),
		RunE: searchCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .docgrep/config.yaml)")
	cmd.Flags().Int("workers", 0, "Concurrent PDF extraction workers (default: CPU count)")
	cmd.Flags().StringSlice("ext", nil, "Text extension allowlist override (repeatable)")
	cmd.Flags().StringSlice("exclude-dir", nil, "Directory name to prune from the walk (repeatable)")
	cmd.Flags().String("output", "", "Write the plain-text report to a file")
	cmd.Flags().String("log-dir", "", "Directory for scan log files")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("tool-timeout", "", "Maximum duration for one pdftotext run (e.g., 30s)")
	cmd.Flags().Bool("no-color", false, "Disable colorized output")
	cmd.Flags().Bool("no-banner", false, "Suppress the startup banner")

	return cmd
}

func searchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSearchConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.NoColor {
		color.NoColor = true
	}

	out := cmd.OutOrStdout()
	isTTY := display.IsTerminal(out)

	if !cfg.NoBanner {
		display.Banner(out)
	}

	phrase, root, err := resolveRequest(cmd, args)
	if err != nil {
		return err
	}

	primary, fallback, toolWarning := extract.Probe(cfg.PdftotextPath, cfg.ToolTimeout)
	if toolWarning != "" {
		display.Warning{
			Title:      "PDF extraction tool not found",
			Message:    toolWarning,
			Suggestion: "Install poppler-utils to extract PDFs with " + cfg.PdftotextPath + ".",
		}.Display(out)
	}

	loggers := []engine.Logger{logger.NewConsoleLogger(out, cfg.LogLevel)}

	var fileLog *logger.FileLogger
	if cfg.LogDir != "" {
		fileLog, err = logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}

	eng := engine.New(engine.Options{
		Extensions:  cfg.Extensions,
		ExcludeDirs: cfg.ExcludeDirs,
		Workers:     cfg.Workers,
		Primary:     primary,
		Fallback:    fallback,
		Logger:      &multiLogger{loggers: loggers},
		Progress:    display.NewProgressPrinter(out, isTTY),
	})

	// Ctrl+C stops the scan at the next file boundary
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := eng.Search(ctx, models.SearchRequest{Phrase: phrase, Root: root})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	report.NewRenderer(!cfg.NoColor, isTTY).Render(out, result.Occurrences)

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		var buf bytes.Buffer
		report.NewRenderer(false, false).Render(&buf, result.Occurrences)
		if err := filelock.Write(outputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		fmt.Fprintf(out, "Report written to: %s\n", outputPath)
	}

	if fileLog != nil {
		fmt.Fprintf(out, "Logs written to: %s\n", cfg.LogDir)
	}

	return nil
}

// loadSearchConfig loads the config file and applies flag overrides
func loadSearchConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	workersFlag, _ := cmd.Flags().GetInt("workers")
	extFlag, _ := cmd.Flags().GetStringSlice("ext")
	excludeFlag, _ := cmd.Flags().GetStringSlice("exclude-dir")
	toolTimeoutStr, _ := cmd.Flags().GetString("tool-timeout")
	logDirFlag, _ := cmd.Flags().GetString("log-dir")
	logLevelFlag, _ := cmd.Flags().GetString("log-level")
	noColorFlag, _ := cmd.Flags().GetBool("no-color")
	noBannerFlag, _ := cmd.Flags().GetBool("no-banner")

	// Only pass flags the user explicitly set so config file values survive
	var workersPtr *int
	if cmd.Flags().Changed("workers") {
		workersPtr = &workersFlag
	}

	var extPtr *[]string
	if cmd.Flags().Changed("ext") {
		extPtr = &extFlag
	}

	var excludePtr *[]string
	if cmd.Flags().Changed("exclude-dir") {
		excludePtr = &excludeFlag
	}

	var toolTimeoutPtr *time.Duration
	if cmd.Flags().Changed("tool-timeout") {
		timeout, parseErr := time.ParseDuration(toolTimeoutStr)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid tool-timeout format '%s': %w", toolTimeoutStr, parseErr)
		}
		toolTimeoutPtr = &timeout
	}

	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDirPtr = &logDirFlag
	}

	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		logLevelPtr = &logLevelFlag
	}

	var noColorPtr *bool
	if cmd.Flags().Changed("no-color") {
		noColorPtr = &noColorFlag
	}

	var noBannerPtr *bool
	if cmd.Flags().Changed("no-banner") {
		noBannerPtr = &noBannerFlag
	}

	cfg.MergeWithFlags(workersPtr, extPtr, excludePtr, toolTimeoutPtr, logDirPtr, logLevelPtr, noColorPtr, noBannerPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolveRequest returns the phrase and directory from positional args,
// prompting for whichever the user omitted. Both prompts share one reader
// so buffered readahead from the first cannot swallow the second line.
func resolveRequest(cmd *cobra.Command, args []string) (string, string, error) {
	var phrase, root string
	if len(args) > 0 {
		phrase = args[0]
	}
	if len(args) > 1 {
		root = args[1]
	}
	if len(args) >= 2 {
		return phrase, root, nil
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	var err error
	if len(args) < 1 {
		phrase, err = promptLine(out, reader, "Search phrase: ")
		if err != nil {
			return "", "", err
		}
	}

	root, err = promptLine(out, reader, "Directory to search: ")
	if err != nil {
		return "", "", err
	}

	return phrase, root, nil
}

// promptLine prints a prompt and reads one line, trimmed of surrounding
// whitespace. A final line without a trailing newline is still accepted.
func promptLine(out io.Writer, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// multiLogger implements engine.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []engine.Logger
}

// LogScanStart forwards to all loggers
func (ml *multiLogger) LogScanStart(req models.SearchRequest) {
	for _, logger := range ml.loggers {
		logger.LogScanStart(req)
	}
}

// LogPipelineStart forwards to all loggers
func (ml *multiLogger) LogPipelineStart(name string, files, workers int) {
	for _, logger := range ml.loggers {
		logger.LogPipelineStart(name, files, workers)
	}
}

// LogPipelineComplete forwards to all loggers
func (ml *multiLogger) LogPipelineComplete(name string, duration time.Duration) {
	for _, logger := range ml.loggers {
		logger.LogPipelineComplete(name, duration)
	}
}

// LogDiagnostic forwards to all loggers
func (ml *multiLogger) LogDiagnostic(diag models.Diagnostic) {
	for _, logger := range ml.loggers {
		logger.LogDiagnostic(diag)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(result models.SearchResult) {
	for _, logger := range ml.loggers {
		logger.LogSummary(result)
	}
}
