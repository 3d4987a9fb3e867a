package spritegen

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// solidExtractor returns solid-color frames whose color encodes the
// requested timestamp, so tests can check tile placement.
type solidExtractor struct {
	width  int
	height int
	calls  []float64
	fail   bool
}

func (e *solidExtractor) ExtractFrame(path string, atSec float64, width int) (image.Image, error) {
	e.calls = append(e.calls, atSec)
	if e.fail {
		return nil, errors.New("fake: extraction failed")
	}
	shade := uint8(25 * len(e.calls))
	img := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = shade
		img.Pix[i+1] = shade
		img.Pix[i+2] = shade
		img.Pix[i+3] = 255
	}
	return img, nil
}

func TestThumbnail(t *testing.T) {
	ex := &solidExtractor{width: 320, height: 180}
	g := New(ex)

	data, err := g.Thumbnail("clip.mp4", 20, 320, 0)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("thumbnail size %dx%d, want 320x180", b.Dx(), b.Dy())
	}

	// Sampled at 10% of the duration.
	if len(ex.calls) != 1 || ex.calls[0] != 2 {
		t.Errorf("extraction times %v, want [2]", ex.calls)
	}
}

func TestSpriteSheet(t *testing.T) {
	ex := &solidExtractor{width: 160, height: 90}
	g := New(ex)

	data, err := g.SpriteSheet("clip.mp4", 100, Options{Columns: 2, Rows: 2, TileWidth: 160})
	if err != nil {
		t.Fatalf("SpriteSheet failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("sheet size %dx%d, want 320x180", b.Dx(), b.Dy())
	}

	// Four samples centered in their intervals.
	want := []float64{12.5, 37.5, 62.5, 87.5}
	if len(ex.calls) != len(want) {
		t.Fatalf("extraction count %d, want %d", len(ex.calls), len(want))
	}
	for i, at := range want {
		if ex.calls[i] != at {
			t.Errorf("extraction %d at %f, want %f", i, ex.calls[i], at)
		}
	}

	// Later tiles are brighter than earlier ones (tile order check).
	firstTile := color.GrayModel.Convert(img.At(80, 45)).(color.Gray).Y
	lastTile := color.GrayModel.Convert(img.At(240, 135)).(color.Gray).Y
	if firstTile >= lastTile {
		t.Errorf("tile shading not in sample order: first %d, last %d", firstTile, lastTile)
	}
}

func TestSpriteSheet_AllExtractionsFail(t *testing.T) {
	ex := &solidExtractor{width: 160, height: 90, fail: true}
	g := New(ex)

	_, err := g.SpriteSheet("clip.mp4", 100, Options{Columns: 2, Rows: 2})
	if err == nil {
		t.Fatal("expected error when every extraction fails")
	}
}
