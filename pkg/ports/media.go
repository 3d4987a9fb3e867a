package ports

// Frame is a single decoded video frame: interleaved 8-bit RGBA pixels
// owned by the frame, plus the presentation timestamp it belongs to.
// Frames are produced by a decoder, consumed once, then discarded.
type Frame struct {
	// Source is the path of the video the frame was decoded from.
	// Consumers use it to reject results from a video they are no
	// longer interested in.
	Source string

	// RGBA holds Width*Height*4 bytes, tightly packed (no row padding).
	RGBA []byte

	Width  int
	Height int

	// Timestamp is the presentation time in seconds from stream start.
	Timestamp float64
}

// MediaDecoder wraps one open media file: demuxer, selected video
// stream, decoder and rescaler. A decoder is thread-affine: it must be
// used by the single goroutine that opened it, for its whole lifetime.
type MediaDecoder interface {
	// Duration returns the container duration in seconds (>= 0).
	Duration() float64

	// PreviewSize returns the output frame dimensions. They are
	// derived once at open time and fixed for the decoder's lifetime.
	PreviewSize() (width, height int)

	// Seek positions the demuxer near the given time in seconds and
	// flushes buffered decoder state so the next decoded frame does
	// not come from pre-seek packets. If the forward seek fails the
	// decoder falls back to seeking to the start of the stream; the
	// recovered position may then differ from the request.
	Seek(seconds float64) error

	// SeekAndDecode clamps pos to [0,1], seeks to duration*pos and
	// decodes the next frame. ok is false when no frame could be
	// produced (end of stream or decode failure).
	SeekAndDecode(pos float64) (frame *Frame, ok bool)

	// DecodeNext decodes the next frame from the current position.
	// ok is false at end of stream; that is not an error.
	DecodeNext() (frame *Frame, ok bool)

	// Close releases the demuxer, decoder and rescaler.
	Close()
}

// MediaOpener creates decoders. maxWidth bounds the output frame
// width; height follows the source aspect ratio.
type MediaOpener interface {
	Open(path string, maxWidth int) (MediaDecoder, error)
}
