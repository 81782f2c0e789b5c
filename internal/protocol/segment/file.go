package segment

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"olexparser/internal/protocol/diag"
)

// ErrInvalidName is returned by NumberFromName for names not shaped segment<N>_A
var ErrInvalidName = errors.New("not a segment file name")

// File is one parsed segment file. Records are ordered by increasing offset.
type File struct {
	Number  int
	Path    string
	Size    int64
	Records []Record

	diagnostics diag.Log
}

// Extrema holds the observed bounds of a segment's records
type Extrema struct {
	MinLatitude  float64
	MinLongitude float64
	MaxLatitude  float64
	MaxLongitude float64
	MinTime      uint32
	MaxTime      uint32
}

// NumberFromName extracts N from a base name of the form segment<N>_A
func NumberFromName(name string) (int, error) {
	if !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

// ParseFile reads and decodes the segment file at path with the default layout
func ParseFile(path string) *File {
	return Parse(path, NewDecoder())
}

// Parse reads and decodes the segment file at path. It never fails: a missing
// or unreadable file yields an empty File carrying a diagnostic, and a size
// that is not a multiple of RecordSize drops the trailing bytes.
func Parse(path string, d *Decoder) *File {
	f := &File{Number: -1, Path: path}

	n, err := NumberFromName(filepath.Base(path))
	if err != nil {
		f.diagnostics.Addf(diag.InvalidSegmentName, path, "cannot derive a segment number from %q", filepath.Base(path))
	} else {
		f.Number = n
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.diagnostics.Addf(diag.PathNotFound, path, "segment %s is not a file", path)
		} else {
			f.diagnostics.Addf(diag.ReadFailure, path, "cannot stat segment file: %v", err)
		}
		return f
	}
	if info.IsDir() {
		f.diagnostics.Addf(diag.PathNotFound, path, "segment %s is not a file", path)
		return f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		f.diagnostics.Addf(diag.ReadFailure, path, "cannot read segment file: %v", err)
		return f
	}
	f.Size = int64(len(data))
	f.decode(data, d)
	return f
}

func (f *File) decode(data []byte, d *Decoder) {
	if rem := len(data) % RecordSize; rem != 0 {
		f.diagnostics.Add(diag.Diagnostic{
			Kind:   diag.MisalignedRecordFile,
			Source: f.Path,
			Message: fmt.Sprintf("file size of segment %d (%d bytes) is not divisible by %d, the last %d bytes were not parsed",
				f.Number, len(data), RecordSize, rem),
			Actual: strconv.Itoa(rem),
		})
		data = data[:len(data)-rem]
	}

	f.Records = make([]Record, 0, len(data)/RecordSize)
	for off := 0; off < len(data); off += RecordSize {
		r, err := d.Decode(data[off : off+RecordSize])
		if err != nil {
			// unreachable with whole records, kept for the decoder contract
			f.diagnostics.Addf(diag.MalformedRecord, f.Path, "record at offset %d: %v", off, err)
			continue
		}
		r.Offset = int64(off)
		if !r.Valid() {
			f.diagnostics.Addf(diag.MalformedRecord, f.Path,
				"record at offset %d has a non-finite coordinate (lat %v, long %v), excluded from extrema",
				off, r.Latitude, r.Longitude)
		}
		f.Records = append(f.Records, r)
	}
}

// Record returns the record stored at byte offset off
func (f *File) Record(off int64) (Record, bool) {
	if off < 0 || off%RecordSize != 0 {
		return Record{}, false
	}
	i := int(off / RecordSize)
	if i >= len(f.Records) || f.Records[i].Offset != off {
		return Record{}, false
	}
	return f.Records[i], true
}

// Len returns the number of decoded records
func (f *File) Len() int {
	return len(f.Records)
}

// Extrema scans every valid record. ok is false when the file has none.
func (f *File) Extrema() (e Extrema, ok bool) {
	e = Extrema{
		MinLatitude:  math.Inf(1),
		MinLongitude: math.Inf(1),
		MaxLatitude:  math.Inf(-1),
		MaxLongitude: math.Inf(-1),
		MinTime:      math.MaxUint32,
		MaxTime:      0,
	}
	for _, r := range f.Records {
		if !r.Valid() {
			continue
		}
		ok = true
		e.MinLatitude = math.Min(e.MinLatitude, r.Latitude)
		e.MaxLatitude = math.Max(e.MaxLatitude, r.Latitude)
		e.MinLongitude = math.Min(e.MinLongitude, r.Longitude)
		e.MaxLongitude = math.Max(e.MaxLongitude, r.Longitude)
		if r.Timestamp < e.MinTime {
			e.MinTime = r.Timestamp
		}
		if r.Timestamp > e.MaxTime {
			e.MaxTime = r.Timestamp
		}
	}
	if !ok {
		return Extrema{}, false
	}
	return e, true
}

// Diagnostics returns the anomalies recorded while parsing the file
func (f *File) Diagnostics() []diag.Diagnostic {
	return f.diagnostics.Items()
}
