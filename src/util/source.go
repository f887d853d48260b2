// source.go implements the Source Registry: it owns the text of every input
// file for the lifetime of a compilation. Tokens and AST nodes never copy
// source text; they hold a Location that points back into a SourceFile.

package util

import (
	"fmt"
	"os"
)

// SourceFile owns the full text of one input file. SourceFiles are never
// mutated after Load returns; every Location referencing one is safe to
// copy and compare for the life of the compilation.
type SourceFile struct {
	Name string // Path as given on the command line.
	Text string // Full file contents.
}

// SourceSet is the Source Registry: the ordered collection of files that
// make up a single compilation.
type SourceSet struct {
	Files []*SourceFile
}

// NewSourceSet returns an empty Source Registry.
func NewSourceSet() *SourceSet {
	return &SourceSet{Files: make([]*SourceFile, 0, 4)}
}

// Load reads path into the registry and returns the resulting SourceFile.
func (s *SourceSet) Load(path string) (*SourceFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	f := &SourceFile{Name: path, Text: string(b)}
	s.Files = append(s.Files, f)
	return f, nil
}

// Location pinpoints a span of source text: the owning file, a 1-based
// line, a 0-based column, the span length in bytes and the byte offset at
// which that line begins. Locations are immutable after construction and
// copy cheaply.
type Location struct {
	File      *SourceFile
	Line      int
	Col       int
	Length    int
	LineStart int
}

// Snippet returns the source line containing this Location, stripped of its
// trailing newline, for use in caret-underlined diagnostics.
func (l Location) Snippet() string {
	if l.File == nil {
		return ""
	}
	text := l.File.Text
	if l.LineStart > len(text) {
		return ""
	}
	end := l.LineStart
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return text[l.LineStart:end]
}

// String renders "file:line:col" for use in diagnostic headers.
func (l Location) String() string {
	name := "<unknown>"
	if l.File != nil {
		name = l.File.Name
	}
	return fmt.Sprintf("%s:%d:%d", name, l.Line, l.Col)
}
