// Package discovery classifies the files of an Olex data folder
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"olexparser/internal/protocol/diag"
	"olexparser/internal/protocol/segment"
)

// File names Olex gives its text stores
const (
	TripFileName  = "Turdata"
	RouteFileName = "Ruter"
)

var ErrNotDirectory = errors.New("case root is not a directory")

// Result lists the files found under Root. Paths are in walk order, which
// is lexical within each directory.
type Result struct {
	Root       string
	TripFiles  []string
	RouteFiles []string
	Segments   map[int]string
	Other      []string

	diagnostics diag.Log
}

// Walk classifies every regular file under root. Only a missing or
// non-directory root is an error; unreadable subdirectories become diagnostics.
func Walk(root string) (*Result, error) {
	res := &Result{Root: root, Segments: make(map[int]string)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			res.diagnostics.Addf(diag.ReadFailure, path, "cannot read directory: %v", err)
			return nil
		}
		if path == root && !d.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotDirectory, root)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		res.classify(path, d.Name())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Result) classify(path, name string) {
	switch {
	case name == TripFileName:
		r.TripFiles = append(r.TripFiles, path)
	case name == RouteFileName:
		r.RouteFiles = append(r.RouteFiles, path)
	case strings.HasSuffix(name, "_A"):
		n, err := segment.NumberFromName(name)
		if err != nil {
			r.diagnostics.Addf(diag.InvalidSegmentName, path, "%v", err)
			r.Other = append(r.Other, path)
			return
		}
		if first, dup := r.Segments[n]; dup {
			r.diagnostics.Addf(diag.DuplicateSegmentFile, path,
				"segment %d already found at %s, ignoring this copy", n, first)
			return
		}
		r.Segments[n] = path
	default:
		r.Other = append(r.Other, path)
	}
}

// SegmentNumbers returns the discovered segment numbers in ascending order
func (r *Result) SegmentNumbers() []int {
	out := make([]int, 0, len(r.Segments))
	for n := range r.Segments {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Diagnostics returns anomalies found while classifying
func (r *Result) Diagnostics() []diag.Diagnostic {
	return r.diagnostics.Items()
}
