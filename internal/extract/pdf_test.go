package extract

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

// stubStrategy is a canned PDFStrategy for exercising the fallback chain
type stubStrategy struct {
	name  string
	lines []PageLine
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, path string) ([]PageLine, error) {
	s.calls++
	return s.lines, s.err
}

func TestExtractWithFallbackPrimarySucceeds(t *testing.T) {
	primary := &stubStrategy{name: "tool", lines: []PageLine{{Page: 0, Line: 1, Text: "hello"}}}
	fallback := &stubStrategy{name: "native"}

	lines, err := ExtractWithFallback(context.Background(), primary, fallback, "a.pdf")
	if err != nil {
		t.Fatalf("ExtractWithFallback() error = %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "hello" {
		t.Errorf("lines = %v, want the primary result", lines)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestExtractWithFallbackPrimaryFails(t *testing.T) {
	primary := &stubStrategy{name: "tool", err: errors.New("exit status 1")}
	fallback := &stubStrategy{name: "native", lines: []PageLine{{Page: 1, Line: 1, Text: "rescued"}}}

	lines, err := ExtractWithFallback(context.Background(), primary, fallback, "a.pdf")
	if err != nil {
		t.Fatalf("ExtractWithFallback() error = %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "rescued" {
		t.Errorf("lines = %v, want the fallback result", lines)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestExtractWithFallbackBothFail(t *testing.T) {
	primary := &stubStrategy{name: "tool", err: errors.New("exit status 1")}
	fallback := &stubStrategy{name: "native", err: errors.New("parser panic")}

	_, err := ExtractWithFallback(context.Background(), primary, fallback, "a.pdf")
	if err == nil {
		t.Fatal("ExtractWithFallback() expected error, got nil")
	}
	for _, want := range []string{"tool", "native", "exit status 1", "parser panic"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestExtractWithFallbackNoFallback(t *testing.T) {
	primary := &stubStrategy{name: "native", err: errors.New("parser panic")}

	_, err := ExtractWithFallback(context.Background(), primary, nil, "a.pdf")
	if err == nil {
		t.Fatal("ExtractWithFallback() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "native") {
		t.Errorf("error %q should name the strategy", err)
	}
}

func TestProbeToolMissing(t *testing.T) {
	primary, fallback, warning := Probe("definitely-not-a-real-binary-7c1f", 0)

	if _, ok := primary.(*NativeStrategy); !ok {
		t.Errorf("primary = %T, want *NativeStrategy", primary)
	}
	if fallback != nil {
		t.Errorf("fallback = %v, want nil", fallback)
	}
	if warning == "" {
		t.Error("warning should not be empty when the tool is missing")
	}
}

func TestProbeToolPresent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("probe test relies on sh being on PATH")
	}

	primary, fallback, warning := Probe("sh", 0)

	tool, ok := primary.(*ToolStrategy)
	if !ok {
		t.Fatalf("primary = %T, want *ToolStrategy", primary)
	}
	if tool.Path == "" {
		t.Error("tool path should be resolved")
	}
	if _, ok := fallback.(*NativeStrategy); !ok {
		t.Errorf("fallback = %T, want *NativeStrategy", fallback)
	}
	if warning != "" {
		t.Errorf("warning = %q, want empty", warning)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single line", "alpha", []string{"alpha"}},
		{"trailing newline dropped", "alpha\nbeta\n", []string{"alpha", "beta"}},
		{"interior empty kept", "alpha\n\nbeta", []string{"alpha", "", "beta"}},
		{"crlf", "alpha\r\nbeta", []string{"alpha", "beta"}},
		{"form feed page break", "page one\fpage two", []string{"page one", "page two"}},
		{"invalid utf8 dropped", "he\xffllo", []string{"hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("splitLines(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}
