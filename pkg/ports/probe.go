package ports

import "image"

// MediaInfo is the lightweight metadata the catalog needs before any
// decoder is opened for a file.
type MediaInfo struct {
	DurationSec float64
	Width       int
	Height      int
}

// MediaProber reads container metadata without constructing a decoder.
type MediaProber interface {
	Probe(path string) (MediaInfo, error)
}

// FrameExtractor pulls single still frames out of a video for artifact
// generation (thumbnails, sprite sheets). Implementations may shell out
// to external tools; callers treat extraction as slow and batch-only.
type FrameExtractor interface {
	// ExtractFrame returns the frame nearest atSec, scaled to width
	// (aspect-preserving height).
	ExtractFrame(path string, atSec float64, width int) (image.Image, error)
}
