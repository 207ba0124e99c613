package canvas

import (
	"fmt"
	"math"
)

// MobileBreakpoint is the viewport width (in view pixels) below which the
// taller mobile aspect ratio is used.
const MobileBreakpoint = 640

// Buffer limits. A 4K display at DPR 2 stays well inside them.
const (
	MaxBufferSide   = 16384
	MaxBufferPixels = 64 << 20
)

const (
	mobileAspect  = 4.0 / 5.0
	desktopAspect = 2.0 / 3.0
)

// Layout describes the container the drawing surface is fitted into.
type Layout struct {
	// ContainerWidth is the width available to the canvas, in view pixels.
	ContainerWidth float64 `json:"container_width"`

	// ViewportWidth selects the aspect ratio (see MobileBreakpoint).
	ViewportWidth float64 `json:"viewport_width"`

	// DevicePixelRatio scales view pixels to buffer pixels. Zero or negative
	// values are treated as 1.
	DevicePixelRatio float64 `json:"device_pixel_ratio"`
}

// Scale returns the effective device pixel ratio.
func (l Layout) Scale() float64 {
	if l.DevicePixelRatio <= 0 {
		return 1
	}
	return l.DevicePixelRatio
}

// AspectRatio returns height/width for the layout's viewport.
func (l Layout) AspectRatio() float64 {
	if l.ViewportWidth < MobileBreakpoint {
		return mobileAspect
	}
	return desktopAspect
}

// ViewSize returns the canvas size in view pixels.
func (l Layout) ViewSize() (width, height float64) {
	width = l.ContainerWidth
	if width < 0 {
		width = 0
	}
	return width, width * l.AspectRatio()
}

// BufferSize returns the backing buffer dimensions in device pixels.
// Fractional sizes are truncated.
func (l Layout) BufferSize() (width, height int) {
	w, h := l.ViewSize()
	s := l.Scale()
	return int(w * s), int(h * s)
}

// Validate reports whether the layout yields a buffer within MaxBufferSide
// and MaxBufferPixels.
func (l Layout) Validate() error {
	for _, v := range []float64{l.ContainerWidth, l.ViewportWidth, l.DevicePixelRatio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid layout value %v", v)
		}
	}
	w, h := l.ViewSize()
	s := l.Scale()
	bw, bh := w*s, h*s
	if bw > MaxBufferSide || bh > MaxBufferSide {
		return fmt.Errorf("canvas %.0fx%.0f exceeds the %d pixel side limit", bw, bh, MaxBufferSide)
	}
	if bw*bh > MaxBufferPixels {
		return fmt.Errorf("canvas %.0fx%.0f exceeds %d pixels", bw, bh, MaxBufferPixels)
	}
	return nil
}
