package testutil

import "io"

// Lines is a LineReader over a fixed list of command lines.
//
// Readline returns io.EOF once every line has been consumed.
type Lines struct {
	lines []string
}

// NewLines creates a reader that yields lines in order.
func NewLines(lines ...string) *Lines {
	return &Lines{lines: lines}
}

// Readline returns the next line.
func (l *Lines) Readline() (string, error) {
	if len(l.lines) == 0 {
		return "", io.EOF
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, nil
}

// Remaining reports how many lines have not been read.
func (l *Lines) Remaining() int {
	return len(l.lines)
}
