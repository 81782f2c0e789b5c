package util

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// GenerateID generates a time-based identifier with a random suffix so that
// two IDs created within the same second still differ
func GenerateID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000")
	}
	return time.Now().Format("20060102150405") + "-" + hex.EncodeToString(b)
}
