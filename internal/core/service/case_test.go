package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"olexparser/internal/discovery"
	"olexparser/internal/export"
	"olexparser/internal/protocol/diag"
	"olexparser/internal/protocol/segment"
)

const (
	fixtureTurdata = "Tur Tur 1\n" +
		"Segment 83 2 3000 -300 3060 -240 1000 1010\n" +
		"Segment 84 1 3000 60 3000 60 1020 1020\n"
	fixtureRuter = "Ferdig forenklet\n\n" +
		"Rute Kaste\nRutetype Linje\nLinjefarge Gul\nPlottsett 1\n" +
		"3000 600 1418464605 Brunsirkel\nGod plass\n"
)

// writeCase lays out a folder with one trip whose segment 84 is missing and
// a segment 90 nothing references
func writeCase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	d := segment.NewDecoder()
	var seg83 []byte
	seg83 = append(seg83, d.Encode(segment.Record{Latitude: 3000, Longitude: -300, Timestamp: 1000})...)
	seg83 = append(seg83, d.Encode(segment.Record{Latitude: 3060, Longitude: -240, Timestamp: 1010})...)

	write(discovery.TripFileName, []byte(fixtureTurdata))
	write(discovery.RouteFileName, []byte(fixtureRuter))
	write("segment83_A", seg83)
	write("segment90_A", d.Encode(segment.Record{Latitude: 60, Longitude: 60, Timestamp: 5}))
	write("notes.txt", []byte("ignored"))
	return dir
}

func assemble(t *testing.T, dir string) *Case {
	t.Helper()
	res, err := discovery.Walk(dir)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	c, err := Assemble(context.Background(), res, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return c
}

func TestAssemble(t *testing.T) {
	c := assemble(t, writeCase(t))

	if len(c.TripFiles()) != 1 || len(c.RouteFiles()) != 1 {
		t.Fatalf("trip files = %d, route files = %d", len(c.TripFiles()), len(c.RouteFiles()))
	}
	trip, ok := c.TripFiles()[0].Trip(1)
	if !ok {
		t.Fatal("trip 1 missing")
	}
	f, attached := trip.Segment(83)
	if !attached || f.Len() != 2 {
		t.Errorf("segment 83 attached = %v", attached)
	}
	if _, attached := trip.Segment(84); attached {
		t.Error("segment 84 should not be attached")
	}

	loose := c.UnassociatedSegments()
	if len(loose) != 1 || loose[0].Number != 90 {
		t.Fatalf("unassociated = %+v", loose)
	}
	if len(c.OtherFiles()) != 1 {
		t.Errorf("other files = %v", c.OtherFiles())
	}

	ds := c.Diagnostics()
	tests := []struct {
		kind diag.Kind
		want int
	}{
		{diag.FileCount, 0},
		{diag.MissingExpectedSegment, 1},
		{diag.UnassociatedSegment, 1},
		{diag.SummarySizeMismatch, 0},
		{diag.SummaryExtremaMismatch, 0},
	}
	for _, tt := range tests {
		if got := diag.Count(ds, tt.kind); got != tt.want {
			t.Errorf("%s count = %d, want %d; diagnostics: %v", tt.kind, got, tt.want, diag.Messages(ds))
		}
	}
	// case level diagnostics come before the trip file's
	if ds[0].Kind != diag.UnassociatedSegment {
		t.Errorf("first diagnostic = %s, want UnassociatedSegment", ds[0].Kind)
	}
}

func TestAssembleFileCount(t *testing.T) {
	c := assemble(t, t.TempDir())

	ds := c.Diagnostics()
	if got := diag.Count(ds, diag.FileCount); got != 2 {
		t.Errorf("FileCount diagnostics = %d, want 2", got)
	}
	if len(c.TripFiles()) != 0 || len(c.UnassociatedSegments()) != 0 {
		t.Error("empty folder produced files")
	}
}

func TestAssembleFirstTripClaimsSegment(t *testing.T) {
	dir := t.TempDir()
	turdata := "Tur Tur 1\nSegment 5 1 60 60 60 60 7 7\nTur Tur 2\nSegment 5 1 60 60 60 60 7 7\n"
	if err := os.WriteFile(filepath.Join(dir, "Turdata"), []byte(turdata), 0o644); err != nil {
		t.Fatal(err)
	}
	seg := segment.NewDecoder().Encode(segment.Record{Latitude: 60, Longitude: 60, Timestamp: 7})
	if err := os.WriteFile(filepath.Join(dir, "segment5_A"), seg, 0o644); err != nil {
		t.Fatal(err)
	}

	c := assemble(t, dir)
	tf := c.TripFiles()[0]
	first, _ := tf.Trip(1)
	second, _ := tf.Trip(2)
	if _, ok := first.Segment(5); !ok {
		t.Error("trip 1 should hold segment 5")
	}
	if _, ok := second.Segment(5); ok {
		t.Error("trip 2 should not hold segment 5")
	}
	if got := diag.Count(c.Diagnostics(), diag.MissingExpectedSegment); got != 1 {
		t.Errorf("MissingExpectedSegment = %d, want 1", got)
	}
}

func TestAssembleCancelled(t *testing.T) {
	res, err := discovery.Walk(writeCase(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Assemble(ctx, res, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("Assemble() error = %v, want context.Canceled", err)
	}
}

func TestAssembleInvalidLayout(t *testing.T) {
	res, err := discovery.Walk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Layout = segment.Layout{Latitude: 0, Longitude: 0, Timestamp: 8, Aux: 12}

	if _, err := Assemble(context.Background(), res, opts); !errors.Is(err, segment.ErrInvalidLayout) {
		t.Errorf("Assemble() error = %v, want ErrInvalidLayout", err)
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(assemble(t, writeCase(t)))

	if report.ID == "" {
		t.Error("report has no id")
	}
	if len(report.TripFiles) != 1 || len(report.TripFiles[0].Trips) != 1 {
		t.Fatalf("trip files = %+v", report.TripFiles)
	}
	trip := report.TripFiles[0].Trips[0]
	if trip.Consistent {
		t.Error("trip with a missing segment reported consistent")
	}
	if len(trip.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(trip.Segments))
	}
	s83, s84 := trip.Segments[0], trip.Segments[1]
	if !s83.Attached || s83.Records != 2 || s83.Observed == nil || s83.Observed.MaxLatitude != 51 {
		t.Errorf("segment 83 = %+v", s83)
	}
	if s83.Summary == nil || s83.Summary.Count != 2 || s83.Summary.Extrema.MinLongitude != -5 {
		t.Errorf("segment 83 summary = %+v", s83.Summary)
	}
	if s84.Attached || s84.Path != "" || s84.Observed != nil {
		t.Errorf("segment 84 = %+v", s84)
	}

	if len(report.RouteFiles) != 1 || len(report.RouteFiles[0].Routes) != 1 {
		t.Fatalf("route files = %+v", report.RouteFiles)
	}
	route := report.RouteFiles[0].Routes[0]
	if route.Name != "Kaste" || route.Layer != "A" || route.Notes != "God plass" || route.Waypoints != 1 {
		t.Errorf("route = %+v", route)
	}

	if len(report.Unassociated) != 1 || report.Unassociated[0].Number != 90 {
		t.Errorf("unassociated = %+v", report.Unassociated)
	}
	if report.Counts["UnassociatedSegment"] != 1 || report.Counts["MissingExpectedSegment"] != 1 {
		t.Errorf("counts = %v", report.Counts)
	}
	if len(report.Diagnostics) != 2 {
		t.Errorf("diagnostics = %+v", report.Diagnostics)
	}
}

func TestAssembleCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	turdata := "Tur Tur 1\nSegment 5 3 3000 -300 3060 -240 1000 1010\n"
	if err := os.WriteFile(filepath.Join(dir, "Turdata"), []byte(turdata), 0o644); err != nil {
		t.Fatal(err)
	}
	d := segment.NewDecoder()
	var seg []byte
	seg = append(seg, d.Encode(segment.Record{Latitude: 3000, Longitude: -300, Timestamp: 1000})...)
	seg = append(seg, d.Encode(segment.Record{Latitude: math.NaN(), Longitude: -270, Timestamp: 1005})...)
	seg = append(seg, d.Encode(segment.Record{Latitude: 3060, Longitude: -240, Timestamp: 1010})...)
	if err := os.WriteFile(filepath.Join(dir, "segment5_A"), seg, 0o644); err != nil {
		t.Fatal(err)
	}

	c := assemble(t, dir)
	ds := c.Diagnostics()
	if got := diag.Count(ds, diag.MalformedRecord); got != 1 {
		t.Errorf("MalformedRecord = %d, want 1: %v", got, diag.Messages(ds))
	}
	if got := diag.Count(ds, diag.SummaryExtremaMismatch); got != 0 {
		t.Errorf("SummaryExtremaMismatch = %d, want 0: %v", got, diag.Messages(ds))
	}

	if _, err := json.Marshal(BuildReport(c)); err != nil {
		t.Errorf("report does not encode: %v", err)
	}
	var buf bytes.Buffer
	if err := export.WriteGeoJSON(&buf, c); err != nil {
		t.Errorf("WriteGeoJSON() error = %v", err)
	}
}
