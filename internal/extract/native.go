package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeStrategy extracts PDF text with the pure-Go parser. The parser
// panics on some malformed documents, so every library call runs behind a
// recover and a bad page loses only that page.
type NativeStrategy struct{}

// Name identifies the strategy in logs and diagnostics
func (s *NativeStrategy) Name() string {
	return "native"
}

// Extract parses the PDF at path and returns its text with real 1-based
// page numbers, line numbering restarting on each page.
func (s *NativeStrategy) Extract(ctx context.Context, path string) (result []PageLine, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, ok := pageText(reader, pageNum)
		if !ok {
			continue // Skip page on error
		}
		for i, line := range splitLines(text) {
			result = append(result, PageLine{Page: pageNum, Line: i + 1, Text: line})
		}
	}

	return result, nil
}

// pageText isolates the library calls for one page so a panic there only
// loses that page
func pageText(reader *pdf.Reader, pageNum int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", false
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return text, true
}
