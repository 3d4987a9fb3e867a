package mocks

import (
	"github.com/user/vidshelf/pkg/ports"
)

// Prober is a mock ports.MediaProber.
type Prober struct {
	ProbeFunc func(path string) (ports.MediaInfo, error)
}

func (m *Prober) Probe(path string) (ports.MediaInfo, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(path)
	}
	return ports.MediaInfo{}, nil
}

var _ ports.MediaProber = (*Prober)(nil)
