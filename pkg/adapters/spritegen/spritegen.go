// Package spritegen composes thumbnail and sprite-sheet JPEGs from
// frames pulled out of a video. The UI shows these for files whose
// hover decoder is not warm yet.
package spritegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/vidshelf/pkg/ports"
)

// Options controls sprite-sheet geometry.
type Options struct {
	Columns   int // default 5
	Rows      int // default 5
	TileWidth int // default 160
	Quality   int // JPEG quality, default 80
}

func (o *Options) applyDefaults() {
	if o.Columns <= 0 {
		o.Columns = 5
	}
	if o.Rows <= 0 {
		o.Rows = 5
	}
	if o.TileWidth <= 0 {
		o.TileWidth = 160
	}
	if o.Quality <= 0 {
		o.Quality = 80
	}
}

// Generator builds artifacts from frames supplied by a FrameExtractor.
type Generator struct {
	extractor ports.FrameExtractor
}

// New creates a Generator.
func New(extractor ports.FrameExtractor) *Generator {
	return &Generator{extractor: extractor}
}

// Thumbnail extracts a single representative frame (at 10% of the
// duration, past most intros and black leaders) and encodes it as JPEG.
func (g *Generator) Thumbnail(path string, durationSec float64, width int, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = 85
	}
	img, err := g.extractor.ExtractFrame(path, durationSec*0.1, width)
	if err != nil {
		return nil, fmt.Errorf("spritegen: thumbnail %s: %w", path, err)
	}
	return encodeJPEG(img, quality)
}

// SpriteSheet samples Columns*Rows frames uniformly across the
// duration and composes them into a grid, left to right, top to
// bottom. The tile height follows the first frame's aspect ratio.
func (g *Generator) SpriteSheet(path string, durationSec float64, opts Options) ([]byte, error) {
	opts.applyDefaults()
	count := opts.Columns * opts.Rows

	tiles := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		at := durationSec * (float64(i) + 0.5) / float64(count)
		img, err := g.extractor.ExtractFrame(path, at, opts.TileWidth)
		if err != nil {
			// A frame that fails to extract leaves a black tile
			// rather than failing the whole sheet.
			tiles = append(tiles, nil)
			continue
		}
		tiles = append(tiles, img)
	}

	tileH := 0
	for _, tile := range tiles {
		if tile != nil {
			b := tile.Bounds()
			tileH = b.Dy() * opts.TileWidth / b.Dx()
			break
		}
	}
	if tileH == 0 {
		return nil, fmt.Errorf("spritegen: no frames extracted from %s", path)
	}

	dc := gg.NewContext(opts.Columns*opts.TileWidth, opts.Rows*tileH)
	dc.SetColor(color.Black)
	dc.Clear()

	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := (i % opts.Columns) * opts.TileWidth
		y := (i / opts.Columns) * tileH
		dc.DrawImage(resize(tile, opts.TileWidth, tileH), x, y)
	}

	return encodeJPEG(dc.Image(), opts.Quality)
}

// resize scales an image to exactly width x height.
func resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("spritegen: encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
