package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/twpayne/go-gpx"

	"olexparser/internal/protocol/convert"
	"olexparser/internal/protocol/turdata"
)

const creator = "olexparser"

// GPX renders every trip as a track of summary start and stop points and
// every route as a GPX route
func GPX(src Source) *gpx.GPX {
	g := &gpx.GPX{
		Version: "1.1",
		Creator: creator,
	}

	for _, tf := range src.TripFiles() {
		for _, trip := range tf.Trips() {
			g.Trk = append(g.Trk, tripTrack(trip, src))
		}
	}

	for _, rf := range src.RouteFiles() {
		for _, r := range rf.Routes {
			rte := &gpx.RteType{
				Name: r.Name,
				Cmt:  r.Notes,
				Desc: r.Description(),
				Type: r.Type,
			}
			for _, e := range r.Entries {
				rte.RtePt = append(rte.RtePt, &gpx.WptType{
					Lat:  e.LatitudeDegrees(),
					Lon:  e.LongitudeDegrees(),
					Time: instant(e.Timestamp, src.Location()),
					Sym:  e.Icon,
				})
			}
			g.Rte = append(g.Rte, rte)
		}
	}
	return g
}

func tripTrack(trip *turdata.Trip, src Source) *gpx.TrkType {
	seg := &gpx.TrkSegType{}
	for _, s := range trip.Summaries() {
		seg.TrkPt = append(seg.TrkPt,
			&gpx.WptType{
				Lat:  convert.ToDecimalDegrees(s.MinLatitude),
				Lon:  convert.ToDecimalDegrees(s.MinLongitude),
				Time: instant(s.MinTime, src.Location()),
				Cmt:  fmt.Sprintf("Segment %d start values", s.Segment),
			},
			&gpx.WptType{
				Lat:  convert.ToDecimalDegrees(s.MaxLatitude),
				Lon:  convert.ToDecimalDegrees(s.MaxLongitude),
				Time: instant(s.MaxTime, src.Location()),
				Cmt:  fmt.Sprintf("Segment %d stop values", s.Segment),
			},
		)
	}
	return &gpx.TrkType{
		Name:   turdata.Marker + " " + strconv.Itoa(trip.Number),
		TrkSeg: []*gpx.TrkSegType{seg},
	}
}

// WriteGPX renders src and writes it as indented XML
func WriteGPX(w io.Writer, src Source) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return GPX(src).WriteIndent(w, "", "  ")
}
