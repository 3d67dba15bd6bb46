// Package extract turns files into numbered text lines for matching.
//
// Plain-text files are read directly with a lenient decoder. PDFs go
// through one of two strategies: the external pdftotext tool, preferred
// when installed because its text layout is closest to what a reader
// sees, or a pure-Go parser used as fallback. Probe picks the strategy
// chain once per run; a file that fails the primary strategy is retried
// on the fallback before it is given up on.
package extract
