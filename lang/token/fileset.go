package token

import gotoken "go/token"

// Position identifies a source location by filename, line and column. It is
// a direct alias of the standard library's go/token.Position, which is also
// what go/scanner.ErrorList (used by lang/scanner, matching the teacher's own
// choice to reuse the stdlib error-collection type) expects.
type Position = gotoken.Position

// File is the single source file being scanned and parsed in one run. Unlike
// the teacher's byte-offset FileSet (built for a multi-file bytecode
// compiler), a program here is always one statement list read from one named
// source, so File only needs to turn a packed Pos back into a Position for
// error reporting.
type File struct {
	name string
}

// Name returns the file's name, as given to FileSet.AddFile.
func (f *File) Name() string { return f.name }

// Position converts a packed Pos into a reportable Position.
func (f *File) Position(p Pos) Position {
	line, col := p.LineCol()
	return Position{Filename: f.name, Line: line, Column: col}
}

// FileSet is a thin registry of the (at most one, in practice) files
// involved in a parse session, kept for API symmetry with the teacher's own
// lang/token.FileSet.
type FileSet struct{}

// NewFileSet returns an empty FileSet.
func NewFileSet() *FileSet { return &FileSet{} }

// AddFile registers a new file of the given name and returns a handle used
// to convert its positions for reporting.
func (fs *FileSet) AddFile(name string) *File { return &File{name: name} }
