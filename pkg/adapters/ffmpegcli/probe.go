package ffmpegcli

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/user/vidshelf/pkg/ports"
)

// Prober implements ports.MediaProber by running ffprobe. It handles
// any container ffprobe does, at the cost of a subprocess per call.
type Prober struct{}

// NewProber creates a Prober.
func NewProber() *Prober {
	return &Prober{}
}

// ffprobe JSON output, reduced to the fields the catalog needs.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Probe implements ports.MediaProber.
func (p *Prober) Probe(path string) (ports.MediaInfo, error) {
	ffprobe, err := FindFFprobe()
	if err != nil {
		return ports.MediaInfo{}, err
	}

	out, err := exec.Command(ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("ffmpegcli: probe %s: %w", path, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return ports.MediaInfo{}, fmt.Errorf("ffmpegcli: parse probe output: %w", err)
	}

	var info ports.MediaInfo
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		info.DurationSec = d
	}
	for _, st := range parsed.Streams {
		if st.CodecType != "video" {
			continue
		}
		info.Width = st.Width
		info.Height = st.Height
		// Container-level duration wins; stream duration is the fallback.
		if info.DurationSec == 0 {
			if d, err := strconv.ParseFloat(st.Duration, 64); err == nil {
				info.DurationSec = d
			}
		}
		break
	}
	if info.Width == 0 && info.Height == 0 {
		return ports.MediaInfo{}, fmt.Errorf("ffmpegcli: no video stream in %s", path)
	}
	return info, nil
}

var _ ports.MediaProber = (*Prober)(nil)
