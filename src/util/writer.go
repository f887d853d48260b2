// writer.go buffers textual output (the -dump-ir path or stdout) the way
// the teacher's util/io.go Writer does, minus the channel/goroutine
// plumbing the teacher uses to let multiple backend worker threads share
// one sink: spec.md section 5 makes code generation single-threaded, so a
// plain strings.Builder suffices.

package util

import (
	"os"
	"strings"
)

// IRWriter buffers textual IR and flushes it either to a file (-dump-ir
// PATH) or to stdout.
type IRWriter struct {
	sb   strings.Builder
	path string
}

// NewIRWriter returns a writer that flushes to path, or to stdout when
// path is empty.
func NewIRWriter(path string) *IRWriter {
	return &IRWriter{path: path}
}

// WriteString appends s to the buffer.
func (w *IRWriter) WriteString(s string) {
	w.sb.WriteString(s)
}

// Flush writes the buffered text to its destination and resets the buffer.
func (w *IRWriter) Flush() error {
	defer w.sb.Reset()
	if w.path == "" {
		_, err := os.Stdout.WriteString(w.sb.String())
		return err
	}
	return os.WriteFile(w.path, []byte(w.sb.String()), 0644)
}
