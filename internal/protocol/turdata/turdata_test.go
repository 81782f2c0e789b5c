package turdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"olexparser/internal/protocol/diag"
	"olexparser/internal/protocol/segment"
)

const sampleTurdata = `Tur Tur 1
Segment 83 2 3000.00 -300.00 3001.50 -299.50 1000 1010
Segment 84 1 2999.00 -301.00 2999.00 -301.00 1020 1020
Tur Tur 2
Navn Hjemtur
Segment 90 3 3100.25 600.00 3102.00 601.75 2000 2100
`

// segmentFile builds an attached file without touching disk
func segmentFile(n int, records ...segment.Record) *segment.File {
	for i := range records {
		records[i].Offset = int64(i * segment.RecordSize)
	}
	return &segment.File{
		Number:  n,
		Path:    fmt.Sprintf("segment%d_A", n),
		Size:    int64(len(records) * segment.RecordSize),
		Records: records,
	}
}

func TestParseSummaries(t *testing.T) {
	got := ParseSummaries("junk\nSegment 83 2 3000.00 -300.00 3001.50 -299.50 1000 1010\n" +
		"Segment 84 x\nSegment 1.2.3 1 1 1 1 1 1 1\nSegment 85 1 1.5 -2.5 1.5 -2.5 7 8")
	want := []Summary{
		{Segment: 83, Count: 2, MinLatitude: 3000, MinLongitude: -300, MaxLatitude: 3001.5, MaxLongitude: -299.5, MinTime: 1000, MaxTime: 1010},
		{Segment: 85, Count: 1, MinLatitude: 1.5, MinLongitude: -2.5, MaxLatitude: 1.5, MaxLongitude: -2.5, MinTime: 7, MaxTime: 8},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseSummaries() = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("summary %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if n := len(ParseSummaries("")); n != 0 {
		t.Errorf("empty block gave %d summaries", n)
	}
}

func TestSummaryStartStop(t *testing.T) {
	s := Summary{Segment: 1, MinLatitude: 3000, MinLongitude: -90, MaxLatitude: 3030, MaxLongitude: -60, MinTime: 0, MaxTime: 60}
	lat, long, start, err := s.Start(nil)
	if err != nil || lat != 50 || long != -1.5 || start.Unix() != 0 {
		t.Errorf("Start() = %v %v %v %v", lat, long, start, err)
	}
	lat, long, stop, err := s.Stop(nil)
	if err != nil || lat != 50.5 || long != -1 || stop.Unix() != 60 {
		t.Errorf("Stop() = %v %v %v %v", lat, long, stop, err)
	}
	if s.ExpectedSize() != 0 {
		t.Errorf("ExpectedSize() = %d", s.ExpectedSize())
	}
}

func TestAddSegmentFirstWins(t *testing.T) {
	trip := NewTrip(3, nil)
	a := segmentFile(5, segment.Record{Latitude: 1})
	b := segmentFile(5, segment.Record{Latitude: 2})

	if !trip.AddSegment(5, a) {
		t.Fatal("first AddSegment returned false")
	}
	if trip.AddSegment(5, b) {
		t.Error("second AddSegment returned true")
	}
	if got, _ := trip.Segment(5); got != a {
		t.Error("segment 5 is not bound to the first file")
	}

	ds := trip.Diagnostics()
	if len(ds) != 1 || ds[0].Kind != diag.AlreadyAttached {
		t.Errorf("diagnostics = %v, want exactly one AlreadyAttached", diag.Messages(ds))
	}
	if trip.AddSegment(6, nil) {
		t.Error("AddSegment accepted a nil file")
	}
}

func TestCheckMinMaxSmallestLatitude(t *testing.T) {
	trip := NewTrip(1, []Summary{{
		Segment: 7, Count: 2,
		MinLatitude: 10.0, MinLongitude: 1, MaxLatitude: 12, MaxLongitude: 2,
		MinTime: 100, MaxTime: 200,
	}})
	trip.AddSegment(7, segmentFile(7,
		segment.Record{Latitude: 9.5, Longitude: 2, Timestamp: 200},
		segment.Record{Latitude: 12, Longitude: 1, Timestamp: 100},
	))

	if trip.CheckMinMax(7) {
		t.Fatal("CheckMinMax(7) = true, want false")
	}
	ds := trip.Diagnostics()
	if len(ds) != 1 {
		t.Fatalf("diagnostics = %v, want one", diag.Messages(ds))
	}
	d := ds[0]
	if d.Kind != diag.SummaryExtremaMismatch || d.Extremum != diag.MinLatitude {
		t.Errorf("diagnostic = %+v", d)
	}
	for _, want := range []string{"smallest latitude", "10.0", "9.5"} {
		if !strings.Contains(d.Error(), want) {
			t.Errorf("message %q does not contain %q", d.Error(), want)
		}
	}
	if !trip.CheckSampleSize(7) {
		t.Error("CheckSampleSize(7) = false for a 32 byte file summarizing 2 records")
	}
}

func TestCheckMinMaxEveryField(t *testing.T) {
	trip := NewTrip(1, []Summary{{Segment: 2, Count: 1, MinLatitude: 1, MinLongitude: 1, MaxLatitude: 1, MaxLongitude: 1, MinTime: 1, MaxTime: 1}})
	trip.AddSegment(2, segmentFile(2, segment.Record{Latitude: 5, Longitude: 5, Timestamp: 5}))

	if trip.CheckMinMax(2) {
		t.Fatal("CheckMinMax(2) = true")
	}
	ds := diag.Filter(trip.Diagnostics(), diag.SummaryExtremaMismatch)
	if len(ds) != 6 {
		t.Fatalf("mismatches = %d, want 6", len(ds))
	}
	want := []diag.Extremum{diag.MinLatitude, diag.MinLongitude, diag.MaxLatitude, diag.MaxLongitude, diag.MinTime, diag.MaxTime}
	for i, d := range ds {
		if d.Extremum != want[i] {
			t.Errorf("mismatch %d = %v, want %v", i, d.Extremum, want[i])
		}
	}
}

func TestCheckMinMaxTolerance(t *testing.T) {
	trip := NewTrip(1, []Summary{{Segment: 1, Count: 1, MinLatitude: 3594.12, MinLongitude: -300.45, MaxLatitude: 3594.12, MaxLongitude: -300.45, MinTime: 9, MaxTime: 9}})
	// float32 storage of the same values
	trip.AddSegment(1, segmentFile(1, segment.Record{
		Latitude:  float64(float32(3594.12)),
		Longitude: float64(float32(-300.45)),
		Timestamp: 9,
	}))
	if !trip.CheckMinMax(1) {
		t.Errorf("diagnostics = %v", diag.Messages(trip.Diagnostics()))
	}

	trip.Tolerance = 0
	if trip.CheckMinMax(1) {
		t.Error("zero tolerance should reject float32 rounding")
	}
}

func TestCheckMissingAndEmpty(t *testing.T) {
	trip := NewTrip(4, []Summary{{Segment: 1, Count: 1}, {Segment: 2, Count: 0}})

	if trip.CheckMinMax(1) {
		t.Error("CheckMinMax on a missing segment returned true")
	}
	if got := diag.Count(trip.Diagnostics(), diag.MissingExpectedSegment); got != 1 {
		t.Errorf("MissingExpectedSegment = %d, want 1", got)
	}

	trip.AddSegment(2, segmentFile(2))
	if trip.CheckMinMax(2) {
		t.Error("CheckMinMax on an empty segment returned true")
	}
	if got := diag.Count(trip.Diagnostics(), diag.EmptySegment); got != 1 {
		t.Errorf("EmptySegment = %d, want 1", got)
	}
	if trip.CheckMinMax(99) {
		t.Error("CheckMinMax on an unsummarized segment returned true")
	}
}

func TestCheckSampleSizes(t *testing.T) {
	trip := NewTrip(1, []Summary{
		{Segment: 1, Count: 2},
		{Segment: 2, Count: 1},
		{Segment: 3, Count: 1},
	})
	trip.AddSegment(1, segmentFile(1, segment.Record{}, segment.Record{}))
	trip.AddSegment(2, segmentFile(2, segment.Record{}, segment.Record{}))
	short := segmentFile(3)
	short.Size = 15
	trip.AddSegment(3, short)

	if trip.CheckSampleSizes() {
		t.Fatal("CheckSampleSizes() = true")
	}
	ds := diag.Filter(trip.Diagnostics(), diag.SummarySizeMismatch)
	if len(ds) != 2 {
		t.Fatalf("size mismatches = %v, want 2", diag.Messages(ds))
	}
	if ds[0].Expected != "16" || ds[0].Actual != "32" {
		t.Errorf("first mismatch expected %s actual %s", ds[0].Expected, ds[0].Actual)
	}
}

func TestValidateReportsMissingOnce(t *testing.T) {
	trip := NewTrip(1, []Summary{
		{Segment: 1, Count: 1, MinLatitude: 1, MinLongitude: 1, MaxLatitude: 1, MaxLongitude: 1, MinTime: 1, MaxTime: 1},
		{Segment: 2, Count: 1},
	})
	trip.AddSegment(1, segmentFile(1, segment.Record{Latitude: 1, Longitude: 1, Timestamp: 1}))

	if trip.Validate() {
		t.Error("Validate() = true with a missing segment")
	}
	ds := trip.Diagnostics()
	if len(ds) != 1 || ds[0].Kind != diag.MissingExpectedSegment {
		t.Errorf("diagnostics = %v", diag.Messages(ds))
	}
}

func TestNewTripDuplicateSummary(t *testing.T) {
	trip := NewTrip(1, []Summary{{Segment: 4, Count: 1}, {Segment: 4, Count: 9}, {Segment: 3, Count: 2}})
	if s, _ := trip.Summary(4); s.Count != 1 {
		t.Errorf("summary 4 count = %d, want the first (1)", s.Count)
	}
	if got := trip.SegmentNumbers(); len(got) != 2 || got[0] != 4 || got[1] != 3 {
		t.Errorf("SegmentNumbers() = %v", got)
	}
	if diag.Count(trip.Diagnostics(), diag.DuplicateSummary) != 1 {
		t.Errorf("diagnostics = %v", diag.Messages(trip.Diagnostics()))
	}
}

func TestParse(t *testing.T) {
	f := Parse("Turdata", []byte(sampleTurdata))

	if got := f.Numbers(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Numbers() = %v", got)
	}
	one, _ := f.Trip(1)
	if got := one.SegmentNumbers(); len(got) != 2 || got[0] != 83 || got[1] != 84 {
		t.Errorf("trip 1 segments = %v", got)
	}
	two, _ := f.Trip(2)
	if s, ok := two.Summary(90); !ok || s.Count != 3 || s.MaxLongitude != 601.75 {
		t.Errorf("trip 2 summary 90 = %+v, %v", s, ok)
	}
	if len(f.Diagnostics()) != 0 {
		t.Errorf("diagnostics = %v", diag.Messages(f.Diagnostics()))
	}
}

func TestParseMalformedAndDuplicateTrips(t *testing.T) {
	data := "header\nTur Tur x\nSegment 1 1 1 1 1 1 1 1\nTur Tur 5\nSegment 2 1 1 1 1 1 1 1\nTur Tur 5\nSegment 3 1 1 1 1 1 1 1\nTur Tur 6\n"
	f := Parse("Turdata", []byte(data))

	if got := f.Numbers(); len(got) != 2 || got[0] != 5 || got[1] != 6 {
		t.Fatalf("Numbers() = %v", got)
	}
	five, _ := f.Trip(5)
	if _, ok := five.Summary(2); !ok {
		t.Error("trip 5 lost its first block")
	}
	if _, ok := five.Summary(3); ok {
		t.Error("trip 5 took the duplicate block")
	}
	six, _ := f.Trip(6)
	if len(six.Summaries()) != 0 {
		t.Errorf("trip 6 summaries = %+v", six.Summaries())
	}

	ds := f.Diagnostics()
	if diag.Count(ds, diag.MalformedTripNumber) != 1 || diag.Count(ds, diag.DuplicateTrip) != 1 {
		t.Errorf("diagnostics = %v", diag.Messages(ds))
	}
}

func TestParseMarkerMustStartLine(t *testing.T) {
	data := "Tur Tur 1\nSegment 1 1 1 1 1 1 1 1 see Tur Tur 9\nSegment 2 1 1 1 1 1 1 1\n  Tur Tur 4\nTur Tur 3\n"
	f := Parse("Turdata", []byte(data))

	if got := f.Numbers(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("Numbers() = %v, want [1 3]", got)
	}
	one, _ := f.Trip(1)
	if got := one.SegmentNumbers(); len(got) != 2 {
		t.Errorf("trip 1 segments = %v, want both summaries", got)
	}
	if len(f.Diagnostics()) != 0 {
		t.Errorf("diagnostics = %v", diag.Messages(f.Diagnostics()))
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Turdata")
	if err := os.WriteFile(path, []byte(strings.ReplaceAll(sampleTurdata, "\n", "\r\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	f := ParseFile(path)
	if len(f.Trips()) != 2 {
		t.Errorf("trips = %d", len(f.Trips()))
	}

	f.SetTolerance(0.5)
	for _, trip := range f.Trips() {
		if trip.Tolerance != 0.5 {
			t.Errorf("trip %d tolerance = %v", trip.Number, trip.Tolerance)
		}
	}

	missing := ParseFile(filepath.Join(dir, "nope"))
	if len(missing.Trips()) != 0 || diag.Count(missing.Diagnostics(), diag.PathNotFound) != 1 {
		t.Errorf("missing diagnostics = %v", diag.Messages(missing.Diagnostics()))
	}
}
