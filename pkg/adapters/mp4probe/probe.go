// Package mp4probe reads duration and video dimensions from MP4-family
// containers in pure Go, so the catalog can be populated without
// opening a decoder.
package mp4probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/vidshelf/pkg/ports"
)

var (
	// ErrNoMovieBox is returned when the file has no moov box.
	ErrNoMovieBox = errors.New("mp4probe: no movie box")
	// ErrNoVideoTrack is returned when no track has a video handler.
	ErrNoVideoTrack = errors.New("mp4probe: no video track")
)

// Prober implements ports.MediaProber for MP4/M4V/MOV files.
type Prober struct{}

// New creates a Prober.
func New() *Prober {
	return &Prober{}
}

// Supports reports whether path looks like an MP4-family container.
func (p *Prober) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// Probe implements ports.MediaProber.
func (p *Prober) Probe(path string) (ports.MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: open: %w", err)
	}
	defer f.Close()

	mf, err := mp4.DecodeFile(f)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: parse %s: %w", path, err)
	}

	moov := mf.Moov
	if mf.IsFragmented() && mf.Init != nil && mf.Init.Moov != nil {
		moov = mf.Init.Moov
	}
	if moov == nil {
		return ports.MediaInfo{}, ErrNoMovieBox
	}
	return infoFromMoov(moov)
}

// infoFromMoov extracts duration and the first video track's
// dimensions. Track header dimensions are 16.16 fixed point.
func infoFromMoov(moov *mp4.MoovBox) (ports.MediaInfo, error) {
	var info ports.MediaInfo

	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		info.DurationSec = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)

		// Fragmented files often leave mvhd duration at zero and
		// report it in mehd instead.
		if info.DurationSec == 0 && moov.Mvex != nil && moov.Mvex.Mehd != nil {
			info.DurationSec = float64(moov.Mvex.Mehd.FragmentDuration) / float64(moov.Mvhd.Timescale)
		}
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Tkhd != nil {
			info.Width = int(trak.Tkhd.Width >> 16)
			info.Height = int(trak.Tkhd.Height >> 16)
		}
		return info, nil
	}
	return ports.MediaInfo{}, ErrNoVideoTrack
}

var _ ports.MediaProber = (*Prober)(nil)
