package extract

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Line is one line of a plain-text file
type Line struct {
	Number int    // 1-based position in the file
	Text   string // Line content without the trailing newline
}

const (
	// initialBufferSize is the starting scanner buffer
	initialBufferSize = 64 * 1024
	// maxLineSize caps a single line; minified assets and logs can run long
	maxLineSize = 8 * 1024 * 1024
)

// Lines reads a plain-text file into numbered lines. Decoding is lenient:
// invalid UTF-8 byte sequences are dropped rather than failing the file,
// and empty lines keep their line numbers. A final line without a trailing
// newline is included. I/O failures return an error and no lines.
func Lines(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)

	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		lines = append(lines, Line{
			Number: number,
			Text:   strings.ToValidUTF8(scanner.Text(), ""),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return lines, nil
}
