package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// SnapshotResult contains an encoded copy of the canvas.
type SnapshotResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Flatten composites img over an opaque white background of the same size.
// Transparent pixels become white.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}

// EncodePNG flattens img onto white and encodes it as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, Flatten(img)); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Snapshot flattens img onto white and returns it as base64 PNG.
//
// A scale other than 1 (and greater than 0) resizes the result, which keeps
// previews small without touching the buffer itself.
func Snapshot(img image.Image, scale float64) (*SnapshotResult, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("canvas is empty (%dx%d)", b.Dx(), b.Dy())
	}

	var out image.Image = Flatten(img)
	if scale != 1.0 && scale > 0 {
		w := max(1, int(float64(b.Dx())*scale))
		h := max(1, int(float64(b.Dy())*scale))
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return &SnapshotResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
