// Package ruter parses Olex Ruter files: user drawn routes with display
// metadata and timestamped waypoints.
package ruter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"olexparser/internal/protocol/convert"
)

var entryPattern = regexp.MustCompile(`^([-\d.]+) ([-\d.]+) (\d+) (.+)$`)

// Entry is one route waypoint. Coordinates are Olex native minutes.
type Entry struct {
	Latitude  float64
	Longitude float64
	Timestamp int64
	Icon      string
}

// ParseEntry reads a "lat long timestamp icon" line. ok is false unless all
// four components are present and numeric where required.
func ParseEntry(line string) (e Entry, ok bool) {
	m := entryPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return Entry{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Entry{}, false
	}
	long, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Entry{}, false
	}
	ts, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return Entry{}, false
	}

	return Entry{Latitude: lat, Longitude: long, Timestamp: ts, Icon: m[4]}, true
}

// LatitudeDegrees returns the latitude in decimal degrees
func (e Entry) LatitudeDegrees() float64 {
	return convert.ToDecimalDegrees(e.Latitude)
}

// LongitudeDegrees returns the longitude in decimal degrees
func (e Entry) LongitudeDegrees() float64 {
	return convert.ToDecimalDegrees(e.Longitude)
}

// Time converts the waypoint timestamp into loc (UTC when nil)
func (e Entry) Time(loc *time.Location) (time.Time, error) {
	return convert.FromUnix(e.Timestamp, loc)
}
