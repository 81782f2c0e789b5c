package turdata

import (
	"fmt"
	"math"
	"strconv"

	"olexparser/internal/protocol/diag"
	"olexparser/internal/protocol/segment"
)

// DefaultTolerance is the largest coordinate difference, in native minutes,
// still treated as equal. Turdata prints coordinates with two decimals.
const DefaultTolerance = 0.01

// Trip is one Tur Tur: its segment summaries and the segment files attached
// to it afterwards. A segment number is attached at most once.
type Trip struct {
	Number    int
	Tolerance float64

	summaries map[int]Summary
	order     []int
	segments  map[int]*segment.File
	attached  []int

	diagnostics diag.Log
}

// NewTrip builds a trip from summaries in file order. A repeated segment
// number keeps the first summary.
func NewTrip(number int, summaries []Summary) *Trip {
	t := &Trip{
		Number:    number,
		Tolerance: DefaultTolerance,
		summaries: make(map[int]Summary, len(summaries)),
		segments:  make(map[int]*segment.File),
	}
	for _, s := range summaries {
		if _, dup := t.summaries[s.Segment]; dup {
			t.diagnostics.Addf(diag.DuplicateSummary, t.source(),
				"segment %d is summarized more than once, keeping the first summary", s.Segment)
			continue
		}
		t.summaries[s.Segment] = s
		t.order = append(t.order, s.Segment)
	}
	return t
}

func (t *Trip) source() string {
	return "Tur Tur " + strconv.Itoa(t.Number)
}

// SegmentNumbers returns the summarized segment numbers in file order
func (t *Trip) SegmentNumbers() []int {
	out := make([]int, len(t.order))
	copy(out, t.order)
	return out
}

// Summary returns the summary of segment n
func (t *Trip) Summary(n int) (Summary, bool) {
	s, ok := t.summaries[n]
	return s, ok
}

// Summaries returns all summaries in file order
func (t *Trip) Summaries() []Summary {
	out := make([]Summary, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.summaries[n])
	}
	return out
}

// Segment returns the file attached as segment n
func (t *Trip) Segment(n int) (*segment.File, bool) {
	f, ok := t.segments[n]
	return f, ok
}

// Segments returns the attached files in attachment order
func (t *Trip) Segments() []*segment.File {
	out := make([]*segment.File, 0, len(t.attached))
	for _, n := range t.attached {
		out = append(out, t.segments[n])
	}
	return out
}

// AddSegment attaches f as segment n. The first attachment wins: a second
// file for the same number is rejected with a diagnostic and false.
func (t *Trip) AddSegment(n int, f *segment.File) bool {
	if f == nil {
		return false
	}
	if _, ok := t.segments[n]; ok {
		t.diagnostics.Addf(diag.AlreadyAttached, t.source(),
			"segment %d is already attached to Tur Tur %d, ignoring %s", n, t.Number, f.Path)
		return false
	}
	t.segments[n] = f
	t.attached = append(t.attached, n)
	return true
}

// CheckSampleSize compares the attached file size of segment n with the
// summary's record count. A segment without a summary is not checked.
func (t *Trip) CheckSampleSize(n int) bool {
	s, ok := t.summaries[n]
	if !ok {
		return false
	}
	f, ok := t.attachedOrMissing(n)
	if !ok {
		return false
	}
	return t.checkSize(s, f)
}

// CheckSampleSizes checks every attached segment that has a summary
func (t *Trip) CheckSampleSizes() bool {
	ok := true
	for _, n := range t.attached {
		s, found := t.summaries[n]
		if !found {
			continue
		}
		if !t.checkSize(s, t.segments[n]) {
			ok = false
		}
	}
	return ok
}

func (t *Trip) checkSize(s Summary, f *segment.File) bool {
	want := s.ExpectedSize()
	if f.Size == want {
		return true
	}
	t.diagnostics.Add(diag.Diagnostic{
		Kind:   diag.SummarySizeMismatch,
		Source: t.source(),
		Message: fmt.Sprintf("Tur Tur %d expects segment %d to have file size %d, actual size is %d",
			t.Number, s.Segment, want, f.Size),
		Expected: strconv.FormatInt(want, 10),
		Actual:   strconv.FormatInt(f.Size, 10),
	})
	return false
}

// CheckMinMax recomputes the six extrema of segment n from its records and
// compares each against the summary. Every mismatch is its own diagnostic.
func (t *Trip) CheckMinMax(n int) bool {
	s, ok := t.summaries[n]
	if !ok {
		return false
	}
	f, ok := t.attachedOrMissing(n)
	if !ok {
		return false
	}
	return t.checkExtrema(s, f)
}

// CheckMinMaxes runs CheckMinMax for every summarized segment
func (t *Trip) CheckMinMaxes() bool {
	ok := true
	for _, n := range t.order {
		if !t.CheckMinMax(n) {
			ok = false
		}
	}
	return ok
}

// Validate runs the size and extrema checks for every summary. A segment
// that was never attached is reported once.
func (t *Trip) Validate() bool {
	ok := true
	for _, n := range t.order {
		f, attached := t.attachedOrMissing(n)
		if !attached {
			ok = false
			continue
		}
		s := t.summaries[n]
		sizeOK := t.checkSize(s, f)
		extremaOK := t.checkExtrema(s, f)
		if !sizeOK || !extremaOK {
			ok = false
		}
	}
	return ok
}

func (t *Trip) attachedOrMissing(n int) (*segment.File, bool) {
	f, ok := t.segments[n]
	if !ok {
		t.diagnostics.Addf(diag.MissingExpectedSegment, t.source(),
			"Tur Tur %d references segment %d but no such segment file is attached", t.Number, n)
	}
	return f, ok
}

func (t *Trip) checkExtrema(s Summary, f *segment.File) bool {
	e, ok := f.Extrema()
	if !ok {
		t.diagnostics.Addf(diag.EmptySegment, t.source(),
			"segment %d has no valid records to compare with its summary", s.Segment)
		return false
	}

	ok = true
	coords := []struct {
		kind     diag.Extremum
		expected float64
		actual   float64
	}{
		{diag.MinLatitude, s.MinLatitude, e.MinLatitude},
		{diag.MinLongitude, s.MinLongitude, e.MinLongitude},
		{diag.MaxLatitude, s.MaxLatitude, e.MaxLatitude},
		{diag.MaxLongitude, s.MaxLongitude, e.MaxLongitude},
	}
	for _, c := range coords {
		if math.Abs(c.expected-c.actual) <= t.Tolerance {
			continue
		}
		ok = false
		t.extremaMismatch(s.Segment, c.kind,
			strconv.FormatFloat(c.expected, 'f', 4, 64), strconv.FormatFloat(c.actual, 'f', 4, 64))
	}

	times := []struct {
		kind     diag.Extremum
		expected int64
		actual   int64
	}{
		{diag.MinTime, s.MinTime, int64(e.MinTime)},
		{diag.MaxTime, s.MaxTime, int64(e.MaxTime)},
	}
	for _, c := range times {
		if c.expected == c.actual {
			continue
		}
		ok = false
		t.extremaMismatch(s.Segment, c.kind,
			strconv.FormatInt(c.expected, 10), strconv.FormatInt(c.actual, 10))
	}
	return ok
}

func (t *Trip) extremaMismatch(seg int, kind diag.Extremum, expected, actual string) {
	t.diagnostics.Add(diag.Diagnostic{
		Kind:     diag.SummaryExtremaMismatch,
		Extremum: kind,
		Source:   t.source(),
		Field:    kind.String(),
		Message: fmt.Sprintf("segment %d %s in summary is %s, segment file has %s",
			seg, kind, expected, actual),
		Expected: expected,
		Actual:   actual,
	})
}

// Diagnostics returns the trip's own diagnostics followed by those of every
// attached segment file
func (t *Trip) Diagnostics() []diag.Diagnostic {
	out := t.diagnostics.Items()
	for _, f := range t.Segments() {
		out = append(out, f.Diagnostics()...)
	}
	return out
}
