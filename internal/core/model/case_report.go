package model

import (
	"time"

	"olexparser/internal/core/util"
)

// CaseReport is the stored outcome of analyzing one Olex folder
type CaseReport struct {
	ID           string             `json:"id"`
	Root         string             `json:"root"`
	AnalyzedAt   time.Time          `json:"analyzedAt"`
	TripFiles    []TripFileReport   `json:"tripFiles"`
	RouteFiles   []RouteFileReport  `json:"routeFiles"`
	Unassociated []SegmentReport    `json:"unassociatedSegments"`
	OtherFiles   []string           `json:"otherFiles,omitempty"`
	Diagnostics  []DiagnosticReport `json:"diagnostics"`
	Counts       map[string]int     `json:"diagnosticCounts"`
}

func NewCaseReport(root string) *CaseReport {
	return &CaseReport{
		ID:         util.GenerateID(),
		Root:       root,
		AnalyzedAt: time.Now().UTC(),
		Counts:     make(map[string]int),
	}
}

type TripFileReport struct {
	Path  string       `json:"path"`
	Trips []TripReport `json:"trips"`
}

type TripReport struct {
	Number     int             `json:"number"`
	Segments   []SegmentReport `json:"segments"`
	Consistent bool            `json:"consistent"` // no diagnostics for the trip or its segments
}

type SegmentReport struct {
	Number   int            `json:"number"`
	Path     string         `json:"path,omitempty"`
	Size     int64          `json:"size"`
	Records  int            `json:"records"`
	Attached bool           `json:"attached"`
	Summary  *SummaryReport `json:"summary,omitempty"`
	Observed *ExtremaReport `json:"observed,omitempty"`
}

// SummaryReport is what the Turdata file claims about a segment
type SummaryReport struct {
	Count   int           `json:"count"`
	Extrema ExtremaReport `json:"extrema"`
}

// ExtremaReport holds bounds in decimal degrees and instants in the case location
type ExtremaReport struct {
	MinLatitude  float64   `json:"minLatitude"`
	MinLongitude float64   `json:"minLongitude"`
	MaxLatitude  float64   `json:"maxLatitude"`
	MaxLongitude float64   `json:"maxLongitude"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

type RouteFileReport struct {
	Path   string        `json:"path"`
	Routes []RouteReport `json:"routes"`
}

type RouteReport struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	PlotLayer   int    `json:"plotLayer"`
	Layer       string `json:"layer"`
	Notes       string `json:"notes,omitempty"`
	Description string `json:"description"`
	Waypoints   int    `json:"waypoints"`
}

type DiagnosticReport struct {
	Kind     string `json:"kind"`
	Extremum string `json:"extremum,omitempty"`
	Source   string `json:"source,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}
