package canvas

import (
	"image"
	"image/color"
	"slices"
)

// FloodFill replaces the 4-connected region of pixels that exactly match the
// seed pixel with fill, and returns the number of pixels changed.
//
// Matching compares all four channels, so anti-aliased stroke edges stop the
// fill and can leave a thin seam of unfilled pixels. Seeds outside the image,
// or seeds that already hold the fill color, leave dst untouched.
//
// The fill runs on a scratch copy of the pixel slice and commits it once at
// the end. Traversal uses an explicit stack, so region size is bounded only by
// memory.
func FloodFill(dst *image.RGBA, seed image.Point, fill color.RGBA) int {
	b := dst.Bounds()
	if !seed.In(b) {
		return 0
	}
	target := dst.RGBAAt(seed.X, seed.Y)
	if target == fill {
		return 0
	}

	pix := slices.Clone(dst.Pix)
	changed := 0
	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(b) {
			continue
		}
		i := dst.PixOffset(p.X, p.Y)
		if pix[i] != target.R || pix[i+1] != target.G || pix[i+2] != target.B || pix[i+3] != target.A {
			continue
		}
		pix[i], pix[i+1], pix[i+2], pix[i+3] = fill.R, fill.G, fill.B, fill.A
		changed++
		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	copy(dst.Pix, pix)
	return changed
}
