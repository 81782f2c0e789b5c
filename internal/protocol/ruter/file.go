package ruter

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"olexparser/internal/protocol/diag"
)

// Header is the literal first line of every Ruter file ("completely simplified")
const Header = "Ferdig forenklet"

// File is a parsed Ruter file. Routes keep file order.
type File struct {
	Path   string
	Routes []*Route

	diagnostics diag.Log
}

// ParseFile reads the Ruter file at path. A missing or unreadable file, or
// one without the header line, yields no routes and a single diagnostic.
func ParseFile(path string) *File {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		f := &File{Path: path}
		f.diagnostics.Addf(diag.PathNotFound, path, "Ruter path %s is a directory", path)
		return f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		f := &File{Path: path}
		if errors.Is(err, fs.ErrNotExist) {
			f.diagnostics.Addf(diag.PathNotFound, path, "Ruter file %s does not exist", path)
		} else {
			f.diagnostics.Addf(diag.ReadFailure, path, "cannot read Ruter file: %v", err)
		}
		return f
	}
	return Parse(path, data)
}

// Parse parses Ruter content already in memory. path only labels diagnostics.
func Parse(path string, data []byte) *File {
	f := &File{Path: path}
	body := strings.ReplaceAll(string(data), "\r\n", "\n")

	first, _, _ := strings.Cut(body, "\n")
	if first != Header {
		f.diagnostics.Addf(diag.InvalidHeader, path, "Ruter file does not start with %q", Header)
		return f
	}

	for _, block := range SplitBlocks(body) {
		f.Routes = append(f.Routes, ParseRoute(block))
	}
	return f
}

// SplitBlocks cuts body into route blocks. A block starts at a line beginning
// with "Rute" and runs to the first blank line; a block still open at the end
// of input is kept. Lines outside any block are ignored.
func SplitBlocks(body string) []string {
	var (
		blocks  []string
		current []string
		open    bool
	)
	for _, line := range strings.Split(body, "\n") {
		blank := strings.TrimSpace(line) == ""
		switch {
		case open && blank:
			blocks = append(blocks, strings.Join(current, "\n"))
			current, open = nil, false
		case open:
			current = append(current, line)
		case strings.HasPrefix(line, FieldName):
			current, open = []string{line}, true
		}
	}
	if open {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// Diagnostics returns the file's own diagnostics followed by each route's
func (f *File) Diagnostics() []diag.Diagnostic {
	out := f.diagnostics.Items()
	for _, r := range f.Routes {
		out = append(out, r.Diagnostics()...)
	}
	return out
}
