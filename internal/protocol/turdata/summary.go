// Package turdata parses Olex Turdata files and cross-validates each trip's
// segment summaries against the binary segment files they describe.
package turdata

import (
	"regexp"
	"strconv"
	"time"

	"olexparser/internal/protocol/convert"
	"olexparser/internal/protocol/segment"
)

var summaryPattern = regexp.MustCompile(`Segment (\d+) (\d+) ([-\d.]+) ([-\d.]+) ([-\d.]+) ([-\d.]+) (\d+) (\d+)`)

// Summary is a trip's claim about one segment file. Coordinates are Olex
// native minutes, times are epoch seconds.
type Summary struct {
	Segment      int
	Count        int
	MinLatitude  float64
	MinLongitude float64
	MaxLatitude  float64
	MaxLongitude float64
	MinTime      int64
	MaxTime      int64
}

// ParseSummaries returns every well-formed summary line in block, in order.
// Fragments that do not parse are ignored.
func ParseSummaries(block string) []Summary {
	var out []Summary
	for _, m := range summaryPattern.FindAllStringSubmatch(block, -1) {
		s, ok := parseSummary(m[1:])
		if ok {
			out = append(out, s)
		}
	}
	return out
}

func parseSummary(f []string) (Summary, bool) {
	var (
		s    Summary
		err  error
		ints = []*int{&s.Segment, &s.Count}
		flts = []*float64{&s.MinLatitude, &s.MinLongitude, &s.MaxLatitude, &s.MaxLongitude}
		tims = []*int64{&s.MinTime, &s.MaxTime}
	)
	for i, p := range ints {
		if *p, err = strconv.Atoi(f[i]); err != nil {
			return Summary{}, false
		}
	}
	for i, p := range flts {
		if *p, err = strconv.ParseFloat(f[2+i], 64); err != nil {
			return Summary{}, false
		}
	}
	for i, p := range tims {
		if *p, err = strconv.ParseInt(f[6+i], 10, 64); err != nil {
			return Summary{}, false
		}
	}
	return s, true
}

// ExpectedSize is the byte size the segment file should have
func (s Summary) ExpectedSize() int64 {
	return int64(s.Count) * segment.RecordSize
}

// Start returns the decimal degree position and instant the summary opens with
func (s Summary) Start(loc *time.Location) (lat, long float64, t time.Time, err error) {
	t, err = convert.FromUnix(s.MinTime, loc)
	return convert.ToDecimalDegrees(s.MinLatitude), convert.ToDecimalDegrees(s.MinLongitude), t, err
}

// Stop returns the decimal degree position and instant the summary closes with
func (s Summary) Stop(loc *time.Location) (lat, long float64, t time.Time, err error) {
	t, err = convert.FromUnix(s.MaxTime, loc)
	return convert.ToDecimalDegrees(s.MaxLatitude), convert.ToDecimalDegrees(s.MaxLongitude), t, err
}
