// Package convert implements the Olex coordinate and timestamp codecs
package convert

import (
	"fmt"
	"math"
)

// Axis selects the hemisphere letters used when formatting a coordinate
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// ToDecimalDegrees converts an Olex native value (signed minutes) to decimal degrees
func ToDecimalDegrees(native float64) float64 {
	abs := math.Abs(native)
	degrees := math.Trunc(abs / 60)
	minutes := abs - degrees*60
	dd := degrees + minutes/60
	if native < 0 {
		return -dd
	}
	return dd
}

// ToDegreesMinutes renders an Olex native value as D'M.mmm H.
// Minutes are truncated to three decimals, not rounded.
func ToDegreesMinutes(native float64, axis Axis) string {
	abs := math.Abs(native)
	degrees := math.Trunc(abs / 60)
	minutes := abs - degrees*60
	// the epsilon absorbs binary error such as 6.432*1000 = 6431.9999...
	thousandths := math.Trunc(minutes*1000 + 1e-6)
	// minutes are below 60, so truncation can never reach 60.000
	if thousandths >= 60000 {
		thousandths = 59999
	}
	minutes = thousandths / 1000

	return fmt.Sprintf("%d'%.3f %s", int64(degrees), minutes, hemisphere(native, axis))
}

// LatitudeDMM is ToDegreesMinutes(native, Latitude)
func LatitudeDMM(native float64) string {
	return ToDegreesMinutes(native, Latitude)
}

// LongitudeDMM is ToDegreesMinutes(native, Longitude)
func LongitudeDMM(native float64) string {
	return ToDegreesMinutes(native, Longitude)
}

func hemisphere(native float64, axis Axis) string {
	switch {
	case axis == Latitude && native < 0:
		return "S"
	case axis == Latitude:
		return "N"
	case native < 0:
		return "W"
	default:
		return "E"
	}
}
