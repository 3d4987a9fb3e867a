// Package ffmpegdec provides the media decoder core using the FFmpeg
// libraries (libavformat, libavcodec, libswscale).
package ffmpegdec

/*
#cgo pkg-config: libavformat libavcodec libswscale libavutil
#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
#include <libswscale/swscale.h>
#include <libavutil/imgutils.h>
#include <stdlib.h>

// Scaled RGBA output owned by the decoder and reused across frames.
typedef struct {
    uint8_t *data[4];
    int linesize[4];
} rgba_image;

static int alloc_rgba(rgba_image *img, int w, int h) {
    return av_image_alloc(img->data, img->linesize, w, h, AV_PIX_FMT_RGBA, 32);
}

static void free_rgba(rgba_image *img) {
    if (img->data[0]) {
        av_freep(&img->data[0]);
    }
}

static int scale_rgba(struct SwsContext *sws, AVFrame *src, rgba_image *dst) {
    return sws_scale(sws, (const uint8_t * const *)src->data, src->linesize,
                     0, src->height, dst->data, dst->linesize);
}

static uint8_t* rgba_ptr(rgba_image *img) { return img->data[0]; }
static int rgba_stride(rgba_image *img) { return img->linesize[0]; }

static AVStream* stream_at(AVFormatContext *ctx, int index) {
    return ctx->streams[index];
}

static double stream_time_base(const AVStream *s) {
    return av_q2d(s->time_base);
}

static int64_t frame_pts(const AVFrame *f) {
    if (f->best_effort_timestamp != AV_NOPTS_VALUE) return f->best_effort_timestamp;
    if (f->pts != AV_NOPTS_VALUE) return f->pts;
    return 0;
}

static int averror_eof(void) { return AVERROR_EOF; }
static int averror_eagain(void) { return AVERROR(EAGAIN); }
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/user/vidshelf/pkg/ports"
)

var (
	// ErrNoVideoStream is returned when the container has no video stream.
	ErrNoVideoStream = errors.New("ffmpegdec: no video stream")
	// ErrSeekFailed is returned when both the forward seek and the
	// fallback seek to stream start fail.
	ErrSeekFailed = errors.New("ffmpegdec: seek failed")
)

// Decoder implements ports.MediaDecoder over one open container.
// It is thread-affine: all calls must come from the goroutine that
// owns it.
type Decoder struct {
	fctx        *C.AVFormatContext
	dec         *C.AVCodecContext
	sws         *C.struct_SwsContext
	pkt         *C.AVPacket
	frame       *C.AVFrame
	img         C.rgba_image
	streamIndex C.int

	path     string
	timeBase float64
	duration float64
	outW     int
	outH     int
	draining bool
}

// Opener implements ports.MediaOpener.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open implements ports.MediaOpener.
func (o *Opener) Open(path string, maxWidth int) (ports.MediaDecoder, error) {
	return Open(path, maxWidth)
}

// Open opens the container at path, selects the best video stream and
// prepares a decoder plus an RGBA rescaler bounded to maxWidth.
func Open(path string, maxWidth int) (*Decoder, error) {
	if maxWidth <= 0 {
		return nil, fmt.Errorf("ffmpegdec: invalid max width %d", maxWidth)
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	d := &Decoder{path: path}

	if ret := C.avformat_open_input(&d.fctx, cpath, nil, nil); ret < 0 {
		return nil, fmt.Errorf("ffmpegdec: open %s: error %d", path, int(ret))
	}
	if ret := C.avformat_find_stream_info(d.fctx, nil); ret < 0 {
		d.Close()
		return nil, fmt.Errorf("ffmpegdec: stream info %s: error %d", path, int(ret))
	}

	idx := C.av_find_best_stream(d.fctx, C.AVMEDIA_TYPE_VIDEO, -1, -1, nil, 0)
	if idx < 0 {
		d.Close()
		return nil, ErrNoVideoStream
	}
	d.streamIndex = idx

	st := C.stream_at(d.fctx, idx)
	d.timeBase = float64(C.stream_time_base(st))

	codec := C.avcodec_find_decoder(st.codecpar.codec_id)
	if codec == nil {
		d.Close()
		return nil, fmt.Errorf("ffmpegdec: unsupported codec in %s", path)
	}
	d.dec = C.avcodec_alloc_context3(codec)
	if d.dec == nil {
		d.Close()
		return nil, errors.New("ffmpegdec: alloc codec context")
	}
	if ret := C.avcodec_parameters_to_context(d.dec, st.codecpar); ret < 0 {
		d.Close()
		return nil, fmt.Errorf("ffmpegdec: codec parameters: error %d", int(ret))
	}
	if ret := C.avcodec_open2(d.dec, codec, nil); ret < 0 {
		d.Close()
		return nil, fmt.Errorf("ffmpegdec: open codec: error %d", int(ret))
	}

	srcW := int(d.dec.width)
	srcH := int(d.dec.height)
	if srcW <= 0 || srcH <= 0 {
		d.Close()
		return nil, fmt.Errorf("ffmpegdec: bad video dimensions %dx%d", srcW, srcH)
	}

	d.outW = srcW
	if d.outW > maxWidth {
		d.outW = maxWidth
	}
	d.outH = srcH * d.outW / srcW
	if d.outH < 1 {
		d.outH = 1
	}

	d.sws = C.sws_getContext(
		d.dec.width, d.dec.height, d.dec.pix_fmt,
		C.int(d.outW), C.int(d.outH), C.AV_PIX_FMT_RGBA,
		C.SWS_BILINEAR, nil, nil, nil,
	)
	if d.sws == nil {
		d.Close()
		return nil, errors.New("ffmpegdec: create rescaler")
	}

	if ret := C.alloc_rgba(&d.img, C.int(d.outW), C.int(d.outH)); ret < 0 {
		d.Close()
		return nil, errors.New("ffmpegdec: alloc frame buffer")
	}

	d.pkt = C.av_packet_alloc()
	d.frame = C.av_frame_alloc()
	if d.pkt == nil || d.frame == nil {
		d.Close()
		return nil, errors.New("ffmpegdec: alloc packet/frame")
	}

	// Container duration, falling back to stream-level duration when
	// the container does not report one.
	if d.fctx.duration > 0 {
		d.duration = float64(d.fctx.duration) / float64(C.AV_TIME_BASE)
	} else if st.duration > 0 {
		d.duration = float64(st.duration) * d.timeBase
	}

	return d, nil
}

// Duration returns the container duration in seconds.
func (d *Decoder) Duration() float64 {
	return d.duration
}

// PreviewSize returns the fixed output dimensions.
func (d *Decoder) PreviewSize() (int, int) {
	return d.outW, d.outH
}

// Seek positions the demuxer near the given time. Compressed-media
// seeks are approximate and can fail near end of stream; on failure a
// backward seek to the start of the stream is attempted as recovery,
// accepting that the recovered position may not equal the request.
// Buffered decoder state is flushed so the next frame is post-seek.
func (d *Decoder) Seek(seconds float64) error {
	ts := C.int64_t(seconds * float64(C.AV_TIME_BASE))
	if C.av_seek_frame(d.fctx, -1, ts, C.AVSEEK_FLAG_BACKWARD) < 0 {
		if C.av_seek_frame(d.fctx, -1, 0, C.AVSEEK_FLAG_BACKWARD) < 0 {
			return ErrSeekFailed
		}
	}
	C.avcodec_flush_buffers(d.dec)
	d.draining = false
	return nil
}

// SeekAndDecode clamps pos to [0,1], seeks to duration*pos and decodes
// the next frame.
func (d *Decoder) SeekAndDecode(pos float64) (*ports.Frame, bool) {
	if pos < 0 {
		pos = 0
	} else if pos > 1 {
		pos = 1
	}
	if err := d.Seek(d.duration * pos); err != nil {
		return nil, false
	}
	return d.DecodeNext()
}

// DecodeNext pulls packets of the selected stream until the decoder
// yields a frame, then rescales it to the preview size. ok is false
// when the stream is exhausted without producing a frame.
func (d *Decoder) DecodeNext() (*ports.Frame, bool) {
	for {
		ret := C.avcodec_receive_frame(d.dec, d.frame)
		switch {
		case ret == 0:
			f := d.emitFrame()
			C.av_frame_unref(d.frame)
			if f != nil {
				return f, true
			}
			continue
		case ret == C.averror_eof():
			return nil, false
		case ret != C.averror_eagain():
			return nil, false
		}

		if d.draining {
			// Flush packet already sent and the decoder wants more
			// input: nothing left.
			return nil, false
		}

		ret = C.av_read_frame(d.fctx, d.pkt)
		if ret < 0 {
			// End of container: send the flush packet and drain.
			C.avcodec_send_packet(d.dec, nil)
			d.draining = true
			continue
		}
		if d.pkt.stream_index != d.streamIndex {
			C.av_packet_unref(d.pkt)
			continue
		}
		C.avcodec_send_packet(d.dec, d.pkt)
		C.av_packet_unref(d.pkt)
	}
}

// emitFrame rescales the current decoded frame and copies the pixels
// into an owned buffer. Returns nil if rescaling fails.
func (d *Decoder) emitFrame() *ports.Frame {
	if C.scale_rgba(d.sws, d.frame, &d.img) < 0 {
		return nil
	}

	// The scaler's line stride may exceed the row width; copy row by
	// row into a tightly packed buffer.
	stride := int(C.rgba_stride(&d.img))
	src := unsafe.Slice((*byte)(C.rgba_ptr(&d.img)), stride*d.outH)
	rowLen := d.outW * 4

	rgba := make([]byte, rowLen*d.outH)
	for y := 0; y < d.outH; y++ {
		copy(rgba[y*rowLen:(y+1)*rowLen], src[y*stride:y*stride+rowLen])
	}

	return &ports.Frame{
		Source:    d.path,
		RGBA:      rgba,
		Width:     d.outW,
		Height:    d.outH,
		Timestamp: float64(C.frame_pts(d.frame)) * d.timeBase,
	}
}

// Close releases the demuxer, decoder, rescaler and buffers. Safe to
// call more than once.
func (d *Decoder) Close() {
	if d.frame != nil {
		C.av_frame_free(&d.frame)
	}
	if d.pkt != nil {
		C.av_packet_free(&d.pkt)
	}
	C.free_rgba(&d.img)
	if d.sws != nil {
		C.sws_freeContext(d.sws)
		d.sws = nil
	}
	if d.dec != nil {
		C.avcodec_free_context(&d.dec)
	}
	if d.fctx != nil {
		C.avformat_close_input(&d.fctx)
	}
}

var _ ports.MediaDecoder = (*Decoder)(nil)
var _ ports.MediaOpener = (*Opener)(nil)
