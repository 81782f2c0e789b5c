// Package segment implements the decoder for Olex binary track segment files
package segment

// Format constants
const (
	RecordSize = 16 // every track point occupies exactly 16 bytes
	fieldSize  = 4

	namePrefix = "segment"
	nameSuffix = "_A"
)
