package convert

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Common errors
var (
	ErrInvalidTimestampBytes = errors.New("timestamp must be exactly 4 bytes")
	ErrTimestampOutOfRange   = errors.New("timestamp outside unsigned 32-bit epoch range")
)

// FromLittleEndian interprets exactly 4 bytes as unsigned little-endian epoch
// seconds. A nil loc means UTC.
func FromLittleEndian(b []byte, loc *time.Location) (time.Time, error) {
	if len(b) != 4 {
		return time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidTimestampBytes, len(b))
	}
	return FromUnix(int64(binary.LittleEndian.Uint32(b)), loc)
}

// FromUnix converts epoch seconds to a time in loc (UTC when nil)
func FromUnix(sec int64, loc *time.Location) (time.Time, error) {
	if sec < 0 || sec > math.MaxUint32 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrTimestampOutOfRange, sec)
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(sec, 0).In(loc), nil
}
