package display

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Banner writes the docgrep ASCII-art startup banner in bold red.
func Banner(w io.Writer) {
	art := figure.NewFigure("docgrep", "slant", true).String()
	fmt.Fprintf(w, "\n%s\n", color.New(color.FgRed, color.Bold).Sprint(art))
}
