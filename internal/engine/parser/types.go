package parser

import (
	"time"

	"javaindex/internal/engine/syntax"
)

// File is one parsed compilation unit.
type File struct {
	Path     string
	Language string
	Root     *syntax.Node
	// ErrorCount counts ERROR and MISSING nodes left by error recovery.
	ErrorCount int
	Lines      int
	ParsedAt   time.Time
}

type Location struct {
	File   string
	Line   int
	Column int
}

func (f *File) Location(n *syntax.Node) Location {
	return Location{File: f.Path, Line: n.Start.Line, Column: n.Start.Column}
}
