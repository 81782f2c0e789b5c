// Package diag implements the non-fatal diagnostics accumulated while parsing Olex files
package diag

import (
	"errors"
	"fmt"
)

// Kind identifies the class of anomaly a Diagnostic reports
type Kind int

const (
	PathNotFound Kind = iota + 1
	ReadFailure
	InvalidHeader
	MisalignedRecordFile
	MalformedRecord
	MissingOrDuplicateField
	AlreadyAttached
	SummarySizeMismatch
	SummaryExtremaMismatch
	UnassociatedSegment
	MissingExpectedSegment
	InvalidSegmentName
	InvalidPlotLayer
	MalformedTripNumber
	DuplicateTrip
	DuplicateSummary
	DuplicateSegmentFile
	EmptySegment
	FileCount
)

// Sentinel errors, one per Kind, so a Diagnostic can be matched with errors.Is
var (
	ErrPathNotFound            = errors.New("path not found")
	ErrReadFailure             = errors.New("file could not be read")
	ErrInvalidHeader           = errors.New("invalid file header")
	ErrMisalignedRecordFile    = errors.New("record file size not a multiple of the record size")
	ErrMalformedRecord         = errors.New("malformed record")
	ErrMissingOrDuplicateField = errors.New("field missing or duplicated")
	ErrAlreadyAttached         = errors.New("segment already attached")
	ErrSummarySizeMismatch     = errors.New("segment size does not match summary")
	ErrSummaryExtremaMismatch  = errors.New("segment extrema do not match summary")
	ErrUnassociatedSegment     = errors.New("segment not referenced by any trip")
	ErrMissingExpectedSegment  = errors.New("referenced segment not found")
	ErrInvalidSegmentName      = errors.New("invalid segment file name")
	ErrInvalidPlotLayer        = errors.New("invalid plot layer")
	ErrMalformedTripNumber     = errors.New("malformed trip number")
	ErrDuplicateTrip           = errors.New("duplicate trip number")
	ErrDuplicateSummary        = errors.New("duplicate segment summary")
	ErrDuplicateSegmentFile    = errors.New("duplicate segment file")
	ErrEmptySegment            = errors.New("segment file has no records")
	ErrFileCount               = errors.New("unexpected number of files")
)

var sentinels = map[Kind]error{
	PathNotFound:            ErrPathNotFound,
	ReadFailure:             ErrReadFailure,
	InvalidHeader:           ErrInvalidHeader,
	MisalignedRecordFile:    ErrMisalignedRecordFile,
	MalformedRecord:         ErrMalformedRecord,
	MissingOrDuplicateField: ErrMissingOrDuplicateField,
	AlreadyAttached:         ErrAlreadyAttached,
	SummarySizeMismatch:     ErrSummarySizeMismatch,
	SummaryExtremaMismatch:  ErrSummaryExtremaMismatch,
	UnassociatedSegment:     ErrUnassociatedSegment,
	MissingExpectedSegment:  ErrMissingExpectedSegment,
	InvalidSegmentName:      ErrInvalidSegmentName,
	InvalidPlotLayer:        ErrInvalidPlotLayer,
	MalformedTripNumber:     ErrMalformedTripNumber,
	DuplicateTrip:           ErrDuplicateTrip,
	DuplicateSummary:        ErrDuplicateSummary,
	DuplicateSegmentFile:    ErrDuplicateSegmentFile,
	EmptySegment:            ErrEmptySegment,
	FileCount:               ErrFileCount,
}

var kindNames = map[Kind]string{
	PathNotFound:            "PathNotFound",
	ReadFailure:             "ReadFailure",
	InvalidHeader:           "InvalidHeader",
	MisalignedRecordFile:    "MisalignedRecordFile",
	MalformedRecord:         "MalformedRecord",
	MissingOrDuplicateField: "MissingOrDuplicateField",
	AlreadyAttached:         "AlreadyAttached",
	SummarySizeMismatch:     "SummarySizeMismatch",
	SummaryExtremaMismatch:  "SummaryExtremaMismatch",
	UnassociatedSegment:     "UnassociatedSegment",
	MissingExpectedSegment:  "MissingExpectedSegment",
	InvalidSegmentName:      "InvalidSegmentName",
	InvalidPlotLayer:        "InvalidPlotLayer",
	MalformedTripNumber:     "MalformedTripNumber",
	DuplicateTrip:           "DuplicateTrip",
	DuplicateSummary:        "DuplicateSummary",
	DuplicateSegmentFile:    "DuplicateSegmentFile",
	EmptySegment:            "EmptySegment",
	FileCount:               "FileCount",
}

// String returns the kind name used in reports and metrics labels
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Extremum names which of the six summary extrema disagreed with a segment file
type Extremum int

const (
	NoExtremum Extremum = iota
	MinLatitude
	MinLongitude
	MaxLatitude
	MaxLongitude
	MinTime
	MaxTime
)

// String returns the human-readable field name, e.g. "smallest latitude"
func (e Extremum) String() string {
	switch e {
	case MinLatitude:
		return "smallest latitude"
	case MinLongitude:
		return "smallest longitude"
	case MaxLatitude:
		return "largest latitude"
	case MaxLongitude:
		return "largest longitude"
	case MinTime:
		return "smallest timestamp"
	case MaxTime:
		return "largest timestamp"
	default:
		return ""
	}
}

// Diagnostic is one recoverable anomaly. Source names the owning entity
// (a file path, "Tur Tur 4", "segment 7"...). Field, Expected and Actual are
// only set for kinds that compare a value.
type Diagnostic struct {
	Kind     Kind
	Extremum Extremum
	Source   string
	Field    string
	Message  string
	Expected string
	Actual   string
}

func (d Diagnostic) Error() string {
	if d.Source == "" {
		return d.Message
	}
	return d.Source + ": " + d.Message
}

// Unwrap exposes the sentinel for the diagnostic's kind
func (d Diagnostic) Unwrap() error {
	return sentinels[d.Kind]
}

// New builds a Diagnostic with a formatted message
func New(kind Kind, source, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Source:  source,
		Message: fmt.Sprintf(format, args...),
	}
}
