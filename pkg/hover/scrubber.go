// Package hover implements the background hover-scrub actor: a single
// persistent goroutine that decodes preview frames at requested
// positions without ever blocking the render loop.
package hover

import (
	"math"
	"sync"

	"github.com/user/vidshelf/pkg/ports"
)

// DefaultPreviewWidth bounds the scrub preview frame width.
const DefaultPreviewWidth = 320

// scrubRequest is the intent sent to the decode goroutine. Later
// requests overwrite unconsumed earlier ones; the queue never grows
// past one entry.
type scrubRequest struct {
	path     string
	position float64
	gen      uint64
}

// requestKey identifies a scrub intent for deduplication. Positions
// are rounded to a 1% grid so fast pointer movement over the same
// thumbnail does not flood the queue.
type requestKey struct {
	path string
	cell int
}

func keyFor(path string, position float64) requestKey {
	return requestKey{path: path, cell: int(math.Round(position * 100))}
}

// Scrubber owns one background decode goroutine and at most one open
// decoder, reopened only when the requested video changes.
//
// The render loop talks to it through three non-blocking calls:
// RequestFrame enqueues an intent, PollFrame fetches the latest
// completed result, ClearPending cancels everything outstanding.
type Scrubber struct {
	opener       ports.MediaOpener
	log          ports.Logger
	previewWidth int

	requests chan scrubRequest
	quit     chan struct{}
	done     chan struct{}
	closing  sync.Once

	mu        sync.Mutex
	lastKey   *requestKey
	gen       uint64
	result    *ports.Frame
	resultGen uint64
}

// NewScrubber starts the decode goroutine.
func NewScrubber(opener ports.MediaOpener, log ports.Logger) *Scrubber {
	s := &Scrubber{
		opener:       opener,
		log:          log.WithComponent("hover"),
		previewWidth: DefaultPreviewWidth,
		requests:     make(chan scrubRequest, 1),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go s.loop()
	return s
}

// RequestFrame enqueues a scrub intent for the frame at position
// (0..1) of the video at path. Non-blocking. Intents identical to the
// previous one on the 1% grid are dropped; a newer intent silently
// replaces an unconsumed older one.
func (s *Scrubber) RequestFrame(path string, position float64) {
	key := keyFor(path, position)

	s.mu.Lock()
	if s.lastKey != nil && *s.lastKey == key {
		s.mu.Unlock()
		return
	}
	k := key
	s.lastKey = &k
	gen := s.gen
	s.mu.Unlock()

	req := scrubRequest{path: path, position: position, gen: gen}
	for {
		select {
		case s.requests <- req:
			return
		default:
		}
		// Queue full: displace the unconsumed predecessor.
		select {
		case <-s.requests:
		default:
		}
	}
}

// PollFrame returns the most recently completed decode result, or nil
// if none is ready. Non-blocking.
func (s *Scrubber) PollFrame() *ports.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.resultGen != s.gen {
		return nil
	}
	f := s.result
	s.result = nil
	return f
}

// ClearPending drops any outstanding intent and discards undelivered
// results, including results of decodes still in flight. Used when the
// hover target disappears.
func (s *Scrubber) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKey = nil
	s.result = nil
	s.gen++
}

// Close stops the decode goroutine after its current unit of work and
// waits for it to finish, releasing the open decoder.
func (s *Scrubber) Close() {
	s.closing.Do(func() {
		close(s.quit)
	})
	<-s.done
}

// loop is the decode goroutine. It blocks only on its own request
// queue; decode failures are swallowed and simply produce no frame.
func (s *Scrubber) loop() {
	defer close(s.done)

	var dec ports.MediaDecoder
	var decPath string
	defer func() {
		if dec != nil {
			dec.Close()
		}
	}()

	for {
		select {
		case <-s.quit:
			return
		case req := <-s.requests:
			if dec == nil || decPath != req.path {
				if dec != nil {
					dec.Close()
					dec = nil
				}
				d, err := s.opener.Open(req.path, s.previewWidth)
				if err != nil {
					s.log.Debug("open for scrub failed: %s: %v", req.path, err)
					continue
				}
				dec = d
				decPath = req.path
			}

			frame, ok := dec.SeekAndDecode(req.position)
			if !ok {
				s.log.Debug("scrub decode produced no frame: %s @ %.3f", req.path, req.position)
				continue
			}

			s.mu.Lock()
			if req.gen == s.gen {
				s.result = frame
				s.resultGen = req.gen
			}
			s.mu.Unlock()
		}
	}
}
