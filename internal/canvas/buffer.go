package canvas

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// Buffer is the pixel buffer backing the drawing surface.
//
// The zero value is not usable; create buffers with NewBuffer. Every tool
// operation mutates the underlying image in place.
type Buffer struct {
	img *image.RGBA
}

// NewBuffer allocates a fully transparent buffer of the given size.
// Negative dimensions are treated as zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.img.Bounds().Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.img.Bounds().Dy() }

// Bounds returns the buffer rectangle. Min is always (0,0).
func (b *Buffer) Bounds() image.Rectangle { return b.img.Bounds() }

// Image returns the live backing image. Writes to it are writes to the buffer.
func (b *Buffer) Image() *image.RGBA { return b.img }

// Clone returns an independent copy of the current pixels.
func (b *Buffer) Clone() *image.RGBA {
	return clone.AsRGBA(b.img)
}

// RGBAAt returns the pixel at (x, y), or transparent black when out of bounds.
func (b *Buffer) RGBAAt(x, y int) color.RGBA {
	return b.img.RGBAAt(x, y)
}

// Clear sets every pixel to fully transparent.
func (b *Buffer) Clear() {
	clear(b.img.Pix)
}

// HasContent reports whether any pixel has a non-zero alpha.
//
// The scan covers the whole buffer at its native resolution.
func (b *Buffer) HasContent() bool {
	pix := b.img.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return true
		}
	}
	return false
}
