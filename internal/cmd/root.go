package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root docgrep command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docgrep",
		Short: "Search documents for a phrase across text files and PDFs",
		Long: `docgrep searches a directory tree for a literal phrase, case-insensitively.

Text files on the extension allowlist are scanned line by line. PDFs are
extracted with pdftotext when it is installed, falling back to a built-in
parser, and processed by a concurrent worker pool. Matches are reported
sorted by file path, page, and line; unreadable files are skipped and
summarized instead of aborting the run.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewSearchCommand())
	rootCmd.AddCommand(NewExtensionsCommand())

	return rootCmd
}
