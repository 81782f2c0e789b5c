package service

import (
	"olexparser/internal/core/model"
	"olexparser/internal/protocol/convert"
	"olexparser/internal/protocol/diag"
	"olexparser/internal/protocol/ruter"
	"olexparser/internal/protocol/segment"
	"olexparser/internal/protocol/turdata"
)

// BuildReport flattens a case into its serializable report
func BuildReport(c *Case) *model.CaseReport {
	report := model.NewCaseReport(c.Root())
	report.OtherFiles = c.OtherFiles()

	for _, tf := range c.TripFiles() {
		fr := model.TripFileReport{Path: tf.Path}
		for _, trip := range tf.Trips() {
			fr.Trips = append(fr.Trips, tripReport(c, trip))
		}
		report.TripFiles = append(report.TripFiles, fr)
	}

	for _, rf := range c.RouteFiles() {
		fr := model.RouteFileReport{Path: rf.Path}
		for _, r := range rf.Routes {
			fr.Routes = append(fr.Routes, routeReport(r))
		}
		report.RouteFiles = append(report.RouteFiles, fr)
	}

	for _, f := range c.UnassociatedSegments() {
		sr := segmentReport(c, f.Number, f)
		report.Unassociated = append(report.Unassociated, sr)
	}

	for _, d := range c.Diagnostics() {
		report.Diagnostics = append(report.Diagnostics, diagnosticReport(d))
		report.Counts[d.Kind.String()]++
	}
	return report
}

func tripReport(c *Case, trip *turdata.Trip) model.TripReport {
	tr := model.TripReport{
		Number:     trip.Number,
		Consistent: len(trip.Diagnostics()) == 0,
	}
	for _, s := range trip.Summaries() {
		f, attached := trip.Segment(s.Segment)
		sr := segmentReport(c, s.Segment, f)
		sr.Attached = attached
		sr.Summary = &model.SummaryReport{
			Count: s.Count,
			Extrema: model.ExtremaReport{
				MinLatitude:  convert.ToDecimalDegrees(s.MinLatitude),
				MinLongitude: convert.ToDecimalDegrees(s.MinLongitude),
				MaxLatitude:  convert.ToDecimalDegrees(s.MaxLatitude),
				MaxLongitude: convert.ToDecimalDegrees(s.MaxLongitude),
			},
		}
		// out of range summary times stay zero
		sr.Summary.Extrema.Start, _ = convert.FromUnix(s.MinTime, c.Location())
		sr.Summary.Extrema.End, _ = convert.FromUnix(s.MaxTime, c.Location())
		tr.Segments = append(tr.Segments, sr)
	}
	return tr
}

// segmentReport describes file f as segment n; f may be nil when the segment
// was never found on disk
func segmentReport(c *Case, n int, f *segment.File) model.SegmentReport {
	sr := model.SegmentReport{Number: n}
	if f == nil {
		return sr
	}
	sr.Path = f.Path
	sr.Size = f.Size
	sr.Records = f.Len()
	if e, ok := f.Extrema(); ok {
		sr.Observed = &model.ExtremaReport{
			MinLatitude:  convert.ToDecimalDegrees(e.MinLatitude),
			MinLongitude: convert.ToDecimalDegrees(e.MinLongitude),
			MaxLatitude:  convert.ToDecimalDegrees(e.MaxLatitude),
			MaxLongitude: convert.ToDecimalDegrees(e.MaxLongitude),
		}
		sr.Observed.Start, _ = convert.FromUnix(int64(e.MinTime), c.Location())
		sr.Observed.End, _ = convert.FromUnix(int64(e.MaxTime), c.Location())
	}
	return sr
}

func routeReport(r *ruter.Route) model.RouteReport {
	return model.RouteReport{
		Name:        r.Name,
		Type:        r.Type,
		Color:       r.Color,
		PlotLayer:   r.PlotLayer,
		Layer:       r.Layer,
		Notes:       r.Notes,
		Description: r.Description(),
		Waypoints:   len(r.Entries),
	}
}

func diagnosticReport(d diag.Diagnostic) model.DiagnosticReport {
	dr := model.DiagnosticReport{
		Kind:     d.Kind.String(),
		Source:   d.Source,
		Field:    d.Field,
		Message:  d.Message,
		Expected: d.Expected,
		Actual:   d.Actual,
	}
	if d.Extremum != diag.NoExtremum {
		dr.Extremum = d.Extremum.String()
	}
	return dr
}
