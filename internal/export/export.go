// Package export renders a parsed case as GPX or GeoJSON
package export

import (
	"time"

	"olexparser/internal/protocol/convert"
	"olexparser/internal/protocol/ruter"
	"olexparser/internal/protocol/segment"
	"olexparser/internal/protocol/turdata"
)

// Source is the read-only view of a case the renderers need
type Source interface {
	TripFiles() []*turdata.File
	RouteFiles() []*ruter.File
	UnassociatedSegments() []*segment.File
	Location() *time.Location
}

// instant leaves out-of-range epoch values as the zero time
func instant(sec int64, loc *time.Location) time.Time {
	t, err := convert.FromUnix(sec, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}
