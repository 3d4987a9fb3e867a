package ffmpegcli

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"

	"github.com/user/vidshelf/pkg/ports"
)

// Extractor implements ports.FrameExtractor by running ffmpeg. Each
// call decodes exactly one frame into a temporary PNG and reads it
// back; slow, but only used by the batch artifact pipeline.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFrame returns the frame nearest atSec, scaled to width.
func (e *Extractor) ExtractFrame(path string, atSec float64, width int) (image.Image, error) {
	ffmpeg, err := FindFFmpeg()
	if err != nil {
		return nil, err
	}

	outFile, err := os.CreateTemp("", "vidshelf_frame_*.png")
	if err != nil {
		return nil, fmt.Errorf("ffmpegcli: create temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	// -2 keeps the height even while preserving aspect ratio.
	cmd := exec.Command(ffmpeg,
		"-y",
		"-ss", strconv.FormatFloat(atSec, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", width),
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpegcli: extract frame from %s at %.3fs: %w: %s", path, atSec, err, out)
	}

	f, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpegcli: read extracted frame: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ffmpegcli: decode extracted frame: %w", err)
	}
	return img, nil
}

var _ ports.FrameExtractor = (*Extractor)(nil)
