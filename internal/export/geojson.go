package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"olexparser/internal/protocol/convert"
	"olexparser/internal/protocol/segment"
	"olexparser/internal/protocol/turdata"
)

// GeoJSON renders each summarized segment of each trip as a LineString, taken
// from the attached records when there are any and from the summary's start
// and stop otherwise. Routes become LineStrings (Points when they hold a
// single waypoint) and segments no trip claimed are added last.
func GeoJSON(src Source) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	loc := src.Location()

	for _, tf := range src.TripFiles() {
		for _, trip := range tf.Trips() {
			for _, s := range trip.Summaries() {
				fc.Features = append(fc.Features, segmentFeature(trip, s, loc))
			}
		}
	}

	for _, rf := range src.RouteFiles() {
		for i, r := range rf.Routes {
			if len(r.Entries) == 0 {
				continue
			}
			coords := make([]geom.Coord, 0, len(r.Entries))
			for _, e := range r.Entries {
				coords = append(coords, geom.Coord{e.LongitudeDegrees(), e.LatitudeDegrees()})
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:       fmt.Sprintf("route-%d", i),
				Geometry: lineOrPoint(coords),
				Properties: map[string]interface{}{
					"kind":        "route",
					"name":        r.Name,
					"type":        r.Type,
					"color":       r.Color,
					"layer":       r.Layer,
					"notes":       r.Notes,
					"description": r.Description(),
					"start":       instant(r.Entries[0].Timestamp, loc),
					"end":         instant(r.Entries[len(r.Entries)-1].Timestamp, loc),
				},
			})
		}
	}

	for _, f := range src.UnassociatedSegments() {
		coords := recordCoords(f)
		if len(coords) == 0 {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("segment-%d", f.Number),
			Geometry: lineOrPoint(coords),
			Properties: map[string]interface{}{
				"kind":    "segment",
				"segment": f.Number,
				"records": len(coords),
				"source":  "records",
			},
		})
	}
	return fc
}

func segmentFeature(trip *turdata.Trip, s turdata.Summary, loc *time.Location) *geojson.Feature {
	props := map[string]interface{}{
		"kind":    "segment",
		"trip":    trip.Number,
		"segment": s.Segment,
		"count":   s.Count,
		"start":   instant(s.MinTime, loc),
		"end":     instant(s.MaxTime, loc),
	}

	var coords []geom.Coord
	if f, ok := trip.Segment(s.Segment); ok {
		coords = recordCoords(f)
	}
	if len(coords) > 0 {
		props["source"] = "records"
		props["records"] = len(coords)
	} else {
		coords = []geom.Coord{
			{convert.ToDecimalDegrees(s.MinLongitude), convert.ToDecimalDegrees(s.MinLatitude)},
			{convert.ToDecimalDegrees(s.MaxLongitude), convert.ToDecimalDegrees(s.MaxLatitude)},
		}
		props["source"] = "summary"
	}

	return &geojson.Feature{
		ID:         fmt.Sprintf("trip-%d-segment-%d", trip.Number, s.Segment),
		Geometry:   lineOrPoint(coords),
		Properties: props,
	}
}

func recordCoords(f *segment.File) []geom.Coord {
	coords := make([]geom.Coord, 0, f.Len())
	for _, r := range f.Records {
		if !r.Valid() {
			continue
		}
		coords = append(coords, geom.Coord{r.LongitudeDegrees(), r.LatitudeDegrees()})
	}
	return coords
}

func lineOrPoint(coords []geom.Coord) geom.T {
	if len(coords) == 1 {
		return geom.NewPoint(geom.XY).MustSetCoords(coords[0])
	}
	return geom.NewLineString(geom.XY).MustSetCoords(coords)
}

// WriteGeoJSON renders src and writes it as a FeatureCollection document
func WriteGeoJSON(w io.Writer, src Source) error {
	return json.NewEncoder(w).Encode(GeoJSON(src))
}
