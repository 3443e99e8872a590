// Package source defines the neutral position type shared by the resolver,
// the code generator, diagnostics and source maps.
package source

import "fmt"

// Position identifies a location in an original source file.
// Line and Column are 1-based. The zero value is "no position".
type Position struct {
	File   string
	Line   int
	Column int
}

// At builds a Position.
func At(file string, line, column int) Position {
	return Position{File: file, Line: line, Column: column}
}

// IsValid reports whether the position points into a file.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	switch {
	case p.File == "" && !p.IsValid():
		return "-"
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	case !p.IsValid():
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Before orders positions by file, then line, then column.
func (p Position) Before(o Position) bool {
	if p.File != o.File {
		return p.File < o.File
	}
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}
