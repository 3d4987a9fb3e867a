package ffmpegdec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/video.mp4", 320)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpen_InvalidMaxWidth(t *testing.T) {
	_, err := Open("whatever.mp4", 0)
	if err == nil {
		t.Fatal("expected error for max width 0")
	}
}

func TestOpen_NotAVideo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "not_a_video.mp4")
	if err := os.WriteFile(path, []byte("this is not a media container"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	dec, err := Open(path, 320)
	if err == nil {
		dec.Close()
		t.Fatal("expected error for non-media file")
	}
}

// TestDecode_SampleClip exercises the full open/seek/decode path when a
// sample clip is available. Set VIDSHELF_TEST_CLIP to a short local
// video to enable it.
func TestDecode_SampleClip(t *testing.T) {
	path := os.Getenv("VIDSHELF_TEST_CLIP")
	if path == "" {
		t.Skip("VIDSHELF_TEST_CLIP not set")
	}

	dec, err := Open(path, 320)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer dec.Close()

	if dec.Duration() < 0 {
		t.Errorf("negative duration %f", dec.Duration())
	}
	w, h := dec.PreviewSize()
	if w <= 0 || w > 320 || h <= 0 {
		t.Errorf("unexpected preview size %dx%d", w, h)
	}

	for _, pos := range []float64{-0.5, 0, 0.25, 0.5, 1, 1.7} {
		frame, ok := dec.SeekAndDecode(pos)
		if !ok {
			// End of stream is acceptable at the extremes.
			continue
		}
		if frame.Width != w || frame.Height != h {
			t.Errorf("pos %f: frame size %dx%d, want %dx%d", pos, frame.Width, frame.Height, w, h)
		}
		if len(frame.RGBA) != w*h*4 {
			t.Errorf("pos %f: buffer length %d, want %d", pos, len(frame.RGBA), w*h*4)
		}
		if frame.Source != path {
			t.Errorf("pos %f: source %q, want %q", pos, frame.Source, path)
		}
	}
}
