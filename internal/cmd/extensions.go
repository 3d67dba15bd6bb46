package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/docgrep/internal/classify"
	"github.com/harrison/docgrep/internal/config"
)

// NewExtensionsCommand creates the extensions command
func NewExtensionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "Show which file extensions are scanned",
		Long: `Show the active extension allowlist and the pipeline each entry routes
to, in the color its matches are reported with. PDFs always go to the
PDF pipeline regardless of the allowlist.

The allowlist comes from .docgrep/config.yaml when present, otherwise
the built-in defaults apply.`,
		Args: cobra.NoArgs,
		RunE: extensionsCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .docgrep/config.yaml)")
	cmd.Flags().Bool("no-color", false, "Disable colorized output")

	return cmd
}

func extensionsCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || cfg.NoColor {
		color.NoColor = true
	}

	out := cmd.OutOrStdout()
	classifier := classify.New(cfg.Extensions)
	exts := classifier.TextExtensions()

	fmt.Fprintf(out, "Scanned extensions (%d text + PDF):\n", len(exts))
	for _, ext := range exts {
		// Pad before colorizing so ANSI codes do not skew the column
		padded := fmt.Sprintf("%-8s", ext)
		fmt.Fprintf(out, "  %s %s\n", classify.Color(ext).Sprint(padded), classifier.Classify(ext))
	}

	padded := fmt.Sprintf("%-8s", ".pdf")
	fmt.Fprintf(out, "  %s %s\n", classify.Color(".pdf").Sprint(padded), classifier.Classify(".pdf"))

	return nil
}
