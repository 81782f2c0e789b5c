package convert

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestToDecimalDegrees(t *testing.T) {
	tests := []struct {
		name   string
		native float64
		want   float64
	}{
		{name: "zero", native: 0, want: 0},
		{name: "whole degree", native: 60, want: 1},
		{name: "degrees and minutes", native: 2986.74, want: 49.779},
		{name: "negative", native: -3246.82, want: -54.113666666},
		{name: "under one degree", native: 30, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDecimalDegrees(tt.native)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ToDecimalDegrees(%v) = %v, want %v", tt.native, got, tt.want)
			}
		})
	}
}

func TestToDecimalDegreesIsOdd(t *testing.T) {
	for _, v := range []float64{0, 0.001, 1, 59.999, 60, 61.5, 2986.74, 5400, 10799.99, 1e6} {
		if got, neg := ToDecimalDegrees(v), ToDecimalDegrees(-v); got != -neg {
			t.Errorf("ToDecimalDegrees(%v) = %v, ToDecimalDegrees(%v) = %v", v, got, -v, neg)
		}
	}
}

func TestToDegreesMinutes(t *testing.T) {
	tests := []struct {
		name   string
		native float64
		axis   Axis
		want   string
	}{
		{name: "north", native: 3066.432, axis: Latitude, want: "51'6.432 N"},
		{name: "south", native: -3066.432, axis: Latitude, want: "51'6.432 S"},
		{name: "east", native: 612.5, axis: Longitude, want: "10'12.500 E"},
		{name: "west", native: -3246.82, axis: Longitude, want: "54'6.820 W"},
		{name: "truncates not rounds", native: 60.9999, axis: Latitude, want: "1'0.999 N"},
		{name: "zero", native: 0, axis: Longitude, want: "0'0.000 E"},
		{name: "never carries into degrees", native: 59.9999999999, axis: Latitude, want: "0'59.999 N"},
		{name: "never carries south", native: -119.99999999999, axis: Latitude, want: "1'59.999 S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToDegreesMinutes(tt.native, tt.axis); got != tt.want {
				t.Errorf("ToDegreesMinutes(%v) = %q, want %q", tt.native, got, tt.want)
			}
		})
	}

	if LatitudeDMM(-60) != "1'0.000 S" || LongitudeDMM(-60) != "1'0.000 W" {
		t.Errorf("shorthands: %q %q", LatitudeDMM(-60), LongitudeDMM(-60))
	}
}

func TestFromLittleEndian(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		loc     *time.Location
		want    time.Time
		wantErr error
	}{
		{
			name: "zero is the epoch",
			data: []byte{0x00, 0x00, 0x00, 0x00},
			want: time.Unix(0, 0).UTC(),
		},
		{
			name: "little endian",
			data: []byte{0x5D, 0x0D, 0x8C, 0x54}, // 0x548C0D5D = 1418464605
			want: time.Unix(1418464605, 0).UTC(),
		},
		{
			name: "max uint32",
			data: []byte{0xFF, 0xFF, 0xFF, 0xFF},
			want: time.Unix(math.MaxUint32, 0).UTC(),
		},
		{
			name:    "too short",
			data:    []byte{0x01, 0x02},
			wantErr: ErrInvalidTimestampBytes,
		},
		{
			name:    "too long",
			data:    []byte{0x01, 0x02, 0x03, 0x04, 0x05},
			wantErr: ErrInvalidTimestampBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromLittleEndian(tt.data, tt.loc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("location = %v, want UTC", got.Location())
			}
		})
	}
}

func TestFromUnix(t *testing.T) {
	oslo := time.FixedZone("CET", 3600)
	got, err := FromUnix(1417854557, oslo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != oslo {
		t.Errorf("location = %v, want %v", got.Location(), oslo)
	}
	if got.Unix() != 1417854557 {
		t.Errorf("Unix() = %d", got.Unix())
	}

	for _, sec := range []int64{-1, math.MaxUint32 + 1} {
		if _, err := FromUnix(sec, nil); !errors.Is(err, ErrTimestampOutOfRange) {
			t.Errorf("FromUnix(%d) error = %v, want %v", sec, err, ErrTimestampOutOfRange)
		}
	}
}
