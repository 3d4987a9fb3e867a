// Package playback implements the in-app video player: one background
// decode goroutine per open session, driven by play/pause/seek
// commands, feeding a frame channel the render loop polls every tick.
package playback

import (
	"sync"
	"time"

	"github.com/user/vidshelf/pkg/ports"
)

// cmdKind enumerates the commands the decode loop understands.
type cmdKind int

const (
	cmdPlay cmdKind = iota
	cmdPause
	cmdSeek
	cmdStop
)

// command is sent foreground -> decode loop only.
type command struct {
	kind   cmdKind
	seekTo float64 // seconds, cmdSeek only
}

// Options configures a playback session.
type Options struct {
	// MaxWidth bounds the decoded frame width. Default 1280.
	MaxWidth int
	// FPS is the target decode pace while playing. Default 30.
	FPS float64
	// FrameBuffer is the frame channel capacity. When the consumer
	// falls behind, the oldest undelivered frame is dropped. Default 32.
	FrameBuffer int
}

func (o *Options) applyDefaults() {
	if o.MaxWidth <= 0 {
		o.MaxWidth = 1280
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.FrameBuffer <= 0 {
		o.FrameBuffer = 32
	}
}

// pauseIdle is how long the loop sleeps between command checks while
// paused.
const pauseIdle = 16 * time.Millisecond

// Player is a playback session. The decoder is owned exclusively by
// the session's background goroutine; the foreground interacts through
// commands and lock-guarded transport state and never blocks on decode
// work.
type Player struct {
	path string
	log  ports.Logger
	opts Options

	width  int
	height int

	cmds   chan command
	frames chan ports.Frame
	done   chan struct{}

	stopOnce sync.Once

	// Transport state. The mutex is held only for field access, never
	// across a decode step.
	mu          sync.Mutex
	playing     bool
	currentTime float64
	duration    float64
	pendingSeek *float64
}

// Open opens path for playback and starts the decode goroutine. This
// is the only call in the subsystem that surfaces a hard error; the
// caller is expected to fall back to an external viewer on failure.
func Open(opener ports.MediaOpener, path string, log ports.Logger, opts Options) (*Player, error) {
	opts.applyDefaults()

	dec, err := opener.Open(path, opts.MaxWidth)
	if err != nil {
		return nil, err
	}

	w, h := dec.PreviewSize()
	p := &Player{
		path:     path,
		log:      log.WithComponent("playback"),
		opts:     opts,
		width:    w,
		height:   h,
		cmds:     make(chan command, 16),
		frames:   make(chan ports.Frame, opts.FrameBuffer),
		done:     make(chan struct{}),
		duration: dec.Duration(),
	}

	go p.loop(dec)
	return p, nil
}

// Play starts playback. The shared playing flag is updated before the
// command is forwarded so position queries reflect intent immediately.
func (p *Player) Play() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	p.send(command{kind: cmdPlay})
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.send(command{kind: cmdPause})
}

// TogglePlayback switches between playing and paused.
func (p *Player) TogglePlayback() {
	if p.IsPlaying() {
		p.Pause()
	} else {
		p.Play()
	}
}

// IsPlaying reports the shared playing flag.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Seek requests a jump to the normalized position (clamped to [0,1]).
// The target is recorded as a pending seek so the UI can optimistically
// show it before the decode loop completes the jump.
func (p *Player) Seek(position float64) {
	if position < 0 {
		position = 0
	} else if position > 1 {
		position = 1
	}

	p.mu.Lock()
	target := position * p.duration
	p.pendingSeek = &target
	p.mu.Unlock()

	p.send(command{kind: cmdSeek, seekTo: target})
}

// CurrentPosition returns the position as a fraction of duration.
func (p *Player) CurrentPosition() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.duration <= 0 {
		return 0
	}
	return p.currentTime / p.duration
}

// CurrentTime returns the current playback time in seconds.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime
}

// Duration returns the media duration in seconds. Fixed after open.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// PendingSeek returns the pending seek target in seconds, if any.
func (p *Player) PendingSeek() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pendingSeek == nil {
		return 0, false
	}
	return *p.pendingSeek, true
}

// FrameSize returns the decoded frame dimensions.
func (p *Player) FrameSize() (int, int) {
	return p.width, p.height
}

// GetFrame returns the next undelivered frame, oldest first, or nil if
// none is queued. Non-blocking; the render loop calls this every tick.
func (p *Player) GetFrame() *ports.Frame {
	select {
	case f := <-p.frames:
		return &f
	default:
		return nil
	}
}

// Stop terminates the decode goroutine and waits for it to release the
// decoder. Idempotent; subsequent calls return immediately.
func (p *Player) Stop() {
	p.stopOnce.Do(func() {
		select {
		case p.cmds <- command{kind: cmdStop}:
		case <-p.done:
		}
	})
	<-p.done
}

// Close stops the player. Implements io.Closer for owners that manage
// the session through a generic handle.
func (p *Player) Close() error {
	p.Stop()
	return nil
}

// send forwards a command unless the decode loop has already exited.
func (p *Player) send(c command) {
	select {
	case p.cmds <- c:
	case <-p.done:
	}
}

// loop is the decode goroutine. Each iteration drains every queued
// command first, so a burst of seek+play+pause collapses to the latest
// effective state, then either idles (paused) or decodes one frame at
// the target pace (playing).
func (p *Player) loop(dec ports.MediaDecoder) {
	defer close(p.done)
	defer dec.Close()

	interval := time.Duration(float64(time.Second) / p.opts.FPS)
	playing := false
	last := time.Now()

	for {
		drained := false
		for !drained {
			select {
			case c := <-p.cmds:
				switch c.kind {
				case cmdPlay:
					playing = true
				case cmdPause:
					playing = false
				case cmdSeek:
					if err := dec.Seek(c.seekTo); err != nil {
						p.log.Debug("seek to %.3fs failed: %v", c.seekTo, err)
					}
					p.mu.Lock()
					p.currentTime = c.seekTo
					p.pendingSeek = nil
					p.mu.Unlock()
				case cmdStop:
					return
				}
			default:
				drained = true
			}
		}

		if !playing {
			time.Sleep(pauseIdle)
			continue
		}

		// Pace to the target frame interval.
		if elapsed := time.Since(last); elapsed < interval {
			time.Sleep(interval - elapsed)
		}
		last = time.Now()

		frame, ok := dec.DecodeNext()
		if !ok {
			// End of stream: auto-pause instead of spinning.
			playing = false
			p.mu.Lock()
			p.playing = false
			p.mu.Unlock()
			continue
		}

		p.mu.Lock()
		p.currentTime = frame.Timestamp
		p.mu.Unlock()

		p.enqueue(*frame)
	}
}

// enqueue adds a frame to the output channel, dropping the oldest
// undelivered frame when the consumer has fallen behind. The decode
// loop never blocks on the channel.
func (p *Player) enqueue(f ports.Frame) {
	select {
	case p.frames <- f:
		return
	default:
	}
	select {
	case <-p.frames:
	default:
	}
	select {
	case p.frames <- f:
	default:
	}
}
