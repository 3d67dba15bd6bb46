// Package display provides terminal UI utilities for progress, warnings, and the startup banner.
//
// This package centralizes user-facing terminal output for the docgrep CLI:
// in-place progress lines, the ASCII-art banner, OSC 8 file hyperlinks, and
// formatted warnings. Leveled telemetry lives in the logger package; display
// renders only what an interactive user watches during a scan.
//
// # Progress
//
// Use ProgressPrinter for in-place progress during a scan pipeline:
//
//	printer := display.NewProgressPrinter(os.Stdout, display.IsTerminal(os.Stdout))
//	for i, file := range files {
//	    printer.TextStep(i+1, len(files), file)
//	    // ... scan file ...
//	}
//	printer.Done()
//
// Progress lines overwrite each other with carriage returns and are suppressed
// entirely when the writer is not a terminal, so piped output stays clean.
//
// # Warnings
//
// Display warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "pdftotext not found",
//	    Message:    "PDF files will be parsed with the built-in reader.",
//	    Suggestion: "Install poppler-utils for faster PDF scanning.",
//	}
//	warning.Display(os.Stderr)
//
// # Hyperlinks
//
// Wrap a file reference in an OSC 8 terminal hyperlink so supporting
// terminals make it clickable:
//
//	fmt.Println(display.Hyperlink(coloredPath, absPath))
//
// All functions accept io.Writer interfaces for testability and flexibility.
package display
