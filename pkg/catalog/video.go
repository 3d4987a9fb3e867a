// Package catalog persists the video library: one record per file with
// probed metadata, artifact paths and the fingerprint used to skip
// unchanged files on rescan.
package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Video is one catalog record. DurationSec is what the UI shows before
// any decoder has been opened for the file.
type Video struct {
	ID            string
	Path          string
	Name          string
	SizeBytes     int64
	DurationSec   float64
	Width         int
	Height        int
	AddedAt       time.Time
	Directory     string
	ThumbnailPath string
	SpritePath    string
	Fingerprint   string
	Favorite      bool
}

// VideoID derives a stable identity from the file path.
func VideoID(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}
