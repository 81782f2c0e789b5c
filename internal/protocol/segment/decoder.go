package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"olexparser/internal/protocol/convert"
)

// Common errors
var (
	ErrMalformedRecord = errors.New("track record must be exactly 16 bytes")
	ErrInvalidLayout   = errors.New("invalid record layout")
)

// Layout gives the byte offset of each 4-byte little-endian field inside a
// record. Latitude and longitude are float32 Olex native values, the
// timestamp is uint32 epoch seconds, and the auxiliary tag is kept raw.
type Layout struct {
	Latitude  int
	Longitude int
	Timestamp int
	Aux       int
}

// DefaultLayout is lat, long, time, aux in record order
var DefaultLayout = Layout{Latitude: 0, Longitude: 4, Timestamp: 8, Aux: 12}

// ParseLayout reads "lat,long,time,aux" byte offsets, e.g. "4,8,0,12"
func ParseLayout(s string) (Layout, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Layout{}, fmt.Errorf("%w: want 4 offsets, got %q", ErrInvalidLayout, s)
	}
	var offsets [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Layout{}, fmt.Errorf("%w: %q: %v", ErrInvalidLayout, p, err)
		}
		offsets[i] = n
	}
	l := Layout{Latitude: offsets[0], Longitude: offsets[1], Timestamp: offsets[2], Aux: offsets[3]}
	return l, l.Validate()
}

// Validate checks that the four fields tile the record without overlap
func (l Layout) Validate() error {
	seen := make(map[int]bool, 4)
	for _, off := range []int{l.Latitude, l.Longitude, l.Timestamp, l.Aux} {
		if off < 0 || off > RecordSize-fieldSize || off%fieldSize != 0 {
			return fmt.Errorf("%w: offset %d", ErrInvalidLayout, off)
		}
		if seen[off] {
			return fmt.Errorf("%w: offset %d used twice", ErrInvalidLayout, off)
		}
		seen[off] = true
	}
	return nil
}

// Record is one decoded 16-byte track point. Offset is its byte position in
// the segment file and identifies it.
type Record struct {
	Offset    int64
	Latitude  float64
	Longitude float64
	Timestamp uint32
	Aux       uint32
}

// Time converts the record timestamp into loc (UTC when nil)
func (r Record) Time(loc *time.Location) time.Time {
	// uint32 is always in range
	t, _ := convert.FromUnix(int64(r.Timestamp), loc)
	return t
}

// LatitudeDegrees returns the latitude in decimal degrees
func (r Record) LatitudeDegrees() float64 {
	return convert.ToDecimalDegrees(r.Latitude)
}

// LongitudeDegrees returns the longitude in decimal degrees
func (r Record) LongitudeDegrees() float64 {
	return convert.ToDecimalDegrees(r.Longitude)
}

// Valid reports whether both coordinates decoded to finite numbers. Corrupt
// bytes can decode to NaN or an infinity.
func (r Record) Valid() bool {
	return !math.IsNaN(r.Latitude) && !math.IsInf(r.Latitude, 0) &&
		!math.IsNaN(r.Longitude) && !math.IsInf(r.Longitude, 0)
}

type Decoder struct {
	layout Layout
}

// NewDecoder returns a decoder using DefaultLayout
func NewDecoder() *Decoder {
	return &Decoder{layout: DefaultLayout}
}

// NewDecoderWithLayout returns a decoder for a validated layout
func NewDecoderWithLayout(l Layout) (*Decoder, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{layout: l}, nil
}

// Layout returns the decoder's field layout
func (d *Decoder) Layout() Layout {
	return d.layout
}

// Decode interprets exactly RecordSize bytes. Any other length fails with
// ErrMalformedRecord; every 16-byte input decodes.
func (d *Decoder) Decode(data []byte) (Record, error) {
	if len(data) != RecordSize {
		return Record{}, fmt.Errorf("%w: got %d bytes", ErrMalformedRecord, len(data))
	}

	return Record{
		Latitude:  float64(math.Float32frombits(d.field(data, d.layout.Latitude))),
		Longitude: float64(math.Float32frombits(d.field(data, d.layout.Longitude))),
		Timestamp: d.field(data, d.layout.Timestamp),
		Aux:       d.field(data, d.layout.Aux),
	}, nil
}

func (d *Decoder) field(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset : offset+fieldSize])
}

// Encode is the inverse of Decode. It exists to build fixtures; the parser
// never writes segment files.
func (d *Decoder) Encode(r Record) []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[d.layout.Latitude:], math.Float32bits(float32(r.Latitude)))
	binary.LittleEndian.PutUint32(buf[d.layout.Longitude:], math.Float32bits(float32(r.Longitude)))
	binary.LittleEndian.PutUint32(buf[d.layout.Timestamp:], r.Timestamp)
	binary.LittleEndian.PutUint32(buf[d.layout.Aux:], r.Aux)
	return buf
}
