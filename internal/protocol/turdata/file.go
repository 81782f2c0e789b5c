package turdata

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"olexparser/internal/protocol/diag"
)

// Marker opens every trip block
const Marker = "Tur Tur"

// File is a parsed Turdata file. Trips are keyed by number and keep file order.
type File struct {
	Path string

	trips map[int]*Trip
	order []int

	diagnostics diag.Log
}

// ParseFile reads the Turdata file at path. An unreadable file yields no
// trips and one diagnostic.
func ParseFile(path string) *File {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		f := newFile(path)
		f.diagnostics.Addf(diag.PathNotFound, path, "Turdata path %s is a directory", path)
		return f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		f := newFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			f.diagnostics.Addf(diag.PathNotFound, path, "Turdata file %s does not exist", path)
		} else {
			f.diagnostics.Addf(diag.ReadFailure, path, "cannot read Turdata file: %v", err)
		}
		return f
	}
	return Parse(path, data)
}

func newFile(path string) *File {
	return &File{Path: path, trips: make(map[int]*Trip)}
}

// Parse parses Turdata content already in memory. A block whose marker is
// not followed by a trip number is skipped; a repeated trip number keeps the
// first.
func Parse(path string, data []byte) *File {
	f := newFile(path)
	for _, b := range splitTrips(string(data)) {
		m := tripNumberPattern.FindStringSubmatch(b)
		if m == nil {
			f.diagnostics.Addf(diag.MalformedTripNumber, path,
				"trip marker %q has no trip number, block skipped", firstLine(b))
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			f.diagnostics.Addf(diag.MalformedTripNumber, path,
				"trip number in %q is out of range, block skipped", firstLine(b))
			continue
		}
		if _, dup := f.trips[n]; dup {
			f.diagnostics.Addf(diag.DuplicateTrip, path,
				"Tur Tur %d appears more than once, keeping the first", n)
			continue
		}
		f.trips[n] = NewTrip(n, ParseSummaries(b[len(m[0]):]))
		f.order = append(f.order, n)
	}
	return f
}

var tripNumberPattern = regexp.MustCompile(`^Tur Tur (\d+)`)

var markerLine = regexp.MustCompile(`(?m)^` + Marker)

// splitTrips cuts data at every line starting with the marker. A block runs
// up to the next marker line or the end of data; text before the first marker
// line belongs to no trip, and a marker in the middle of a line stays part of
// the current block.
func splitTrips(data string) []string {
	idx := markerLine.FindAllStringIndex(data, -1)
	blocks := make([]string, 0, len(idx))
	for i, loc := range idx {
		end := len(data)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		blocks = append(blocks, data[loc[0]:end])
	}
	return blocks
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// Trip returns trip n
func (f *File) Trip(n int) (*Trip, bool) {
	t, ok := f.trips[n]
	return t, ok
}

// Numbers returns the trip numbers in file order
func (f *File) Numbers() []int {
	out := make([]int, len(f.order))
	copy(out, f.order)
	return out
}

// Trips returns the trips in file order
func (f *File) Trips() []*Trip {
	out := make([]*Trip, 0, len(f.order))
	for _, n := range f.order {
		out = append(out, f.trips[n])
	}
	return out
}

// SetTolerance overrides the coordinate tolerance of every trip
func (f *File) SetTolerance(tol float64) {
	for _, t := range f.trips {
		t.Tolerance = tol
	}
}

// Diagnostics returns the file's own diagnostics followed by each trip's
func (f *File) Diagnostics() []diag.Diagnostic {
	out := f.diagnostics.Items()
	for _, t := range f.Trips() {
		out = append(out, t.Diagnostics()...)
	}
	return out
}
