package display

import "net/url"

// Hyperlink wraps text in an OSC 8 terminal hyperlink pointing at the
// given file path, so supporting terminals make the reference clickable.
// The path is percent-encoded into a file:// URI.
func Hyperlink(text, path string) string {
	uri := url.URL{Scheme: "file", Path: path}
	return "\x1b]8;;" + uri.String() + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}
