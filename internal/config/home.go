package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDocgrepHome returns the docgrep home directory
// Priority order:
//  1. DOCGREP_HOME environment variable (if set)
//  2. .docgrep under the current working directory
//
// The directory is only resolved, never created; a search run must not
// leave directories behind unless file logging asks for them.
func GetDocgrepHome() (string, error) {
	// Try env var first
	if home := os.Getenv("DOCGREP_HOME"); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	return filepath.Join(cwd, ".docgrep"), nil
}

// DefaultConfigPath returns the path checked for configuration when no
// --config flag is given: $DOCGREP_HOME/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := GetDocgrepHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}
