package canvas

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit components including alpha.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 = fully transparent, 255 = fully opaque
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a sampled pixel in several representations.
//
// The buffer stores premultiplied color, so translucent pixels (anti-aliased
// edges, partial erases) are reported un-premultiplied in Hex and HSL.
type ColorResult struct {
	Hex  string    `json:"hex"`  // "#rrggbb" (no alpha)
	RGBA RGBAColor `json:"rgba"` // straight (non-premultiplied) components
	HSL  HSLColor  `json:"hsl"`
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque color.
// The leading '#' is optional.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if s[0] != '#' {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: expected #rgb or #rrggbb", s)
	}

	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatHexColor renders the RGB part of c as "#rrggbb".
func FormatHexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// SampleColor returns the color of the pixel at (x, y).
//
// Returns an error if the coordinates fall outside the buffer.
func SampleColor(img *image.RGBA, x, y int) (*ColorResult, error) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside canvas bounds", x, y)
	}

	nc := color.NRGBAModel.Convert(img.RGBAAt(x, y)).(color.NRGBA)
	result := &ColorResult{
		Hex:  fmt.Sprintf("#%02x%02x%02x", nc.R, nc.G, nc.B),
		RGBA: RGBAColor{R: nc.R, G: nc.G, B: nc.B, A: nc.A},
	}

	c, _ := colorful.MakeColor(color.NRGBA{R: nc.R, G: nc.G, B: nc.B, A: 255})
	h, s, l := c.Hsl()
	result.HSL = HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
	return result, nil
}
