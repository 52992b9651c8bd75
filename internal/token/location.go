// Package token implements a position-tracking character tokenizer used as
// the shared lexing substrate for line-oriented text protocols, starting
// with HTTP/1.1 start-lines and header blocks.
package token

import "fmt"

// Location identifies a position within a source. Line is 1-based, Column
// is 0-based, and Position is the 0-based byte offset. File is the name the
// source was created with, or "" if none was given.
type Location struct {
	Line     int
	Column   int
	Position int
	File     string
}

// String renders a location the way compiler diagnostics usually do:
// "file:line:column".
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}
