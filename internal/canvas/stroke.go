package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Point is a position in buffer pixels. Fractional values are allowed.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scale multiplies both coordinates by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Floor returns the integer pixel containing p.
func (p Point) Floor() image.Point {
	return image.Point{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// The rasterizer accumulates the absolute winding of all subpaths, so shapes
// that must union with their neighbours share one orientation and holes use
// the other.
const (
	solid = -1.0
	hole  = 1.0
)

// path collects closed polygons for a single rasterization pass.
type path struct {
	subpaths [][]Point
}

func (p *path) polygon(pts ...Point) {
	if len(pts) < 3 {
		return
	}
	for _, q := range pts {
		if math.IsNaN(q.X) || math.IsNaN(q.Y) || math.IsInf(q.X, 0) || math.IsInf(q.Y, 0) {
			return
		}
	}
	p.subpaths = append(p.subpaths, pts)
}

// disc adds a circle approximated by a polygon whose chord error stays well
// under a quarter pixel.
func (p *path) disc(c Point, r, dir float64) {
	if r <= 0 {
		return
	}
	n := int(math.Ceil(2 * math.Pi * r / 2))
	n = max(16, min(n, 360))
	pts := make([]Point, n)
	for i := range pts {
		theta := dir * 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
	}
	p.polygon(pts...)
}

// capsule adds a segment of the given width with round caps.
func (p *path) capsule(a, b Point, width float64) {
	hw := width / 2
	if hw <= 0 {
		return
	}
	p.disc(a, hw, solid)
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	p.disc(b, hw, solid)
	nx, ny := -dy/l*hw, dx/l*hw
	p.polygon(
		Point{X: a.X + nx, Y: a.Y + ny},
		Point{X: b.X + nx, Y: b.Y + ny},
		Point{X: b.X - nx, Y: b.Y - ny},
		Point{X: a.X - nx, Y: a.Y - ny},
	)
}

// bounds returns the integer rectangle covering every subpath, clipped to clip.
func (p *path) bounds(clip image.Rectangle) image.Rectangle {
	if len(p.subpaths) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sp := range p.subpaths {
		for _, q := range sp {
			minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
			minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
		}
	}
	clampX := func(v float64) int {
		return int(math.Max(float64(clip.Min.X), math.Min(float64(clip.Max.X), v)))
	}
	clampY := func(v float64) int {
		return int(math.Max(float64(clip.Min.Y), math.Min(float64(clip.Max.Y), v)))
	}
	return image.Rect(
		clampX(math.Floor(minX)), clampY(math.Floor(minY)),
		clampX(math.Ceil(maxX)), clampY(math.Ceil(maxY)),
	)
}

// rasterize builds a rasterizer sized to the path's clipped bounding box.
// The returned rectangle is where the rasterizer's mask lands in dst.
func (p *path) rasterize(clip image.Rectangle) (*vector.Rasterizer, image.Rectangle, bool) {
	r := p.bounds(clip)
	if r.Empty() {
		return nil, r, false
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for _, sp := range p.subpaths {
		z.MoveTo(float32(sp[0].X-ox), float32(sp[0].Y-oy))
		for _, q := range sp[1:] {
			z.LineTo(float32(q.X-ox), float32(q.Y-oy))
		}
		z.ClosePath()
	}
	return z, r, true
}

// paint composites c over dst wherever the path has coverage.
func (p *path) paint(dst *image.RGBA, c color.Color) {
	z, r, ok := p.rasterize(dst.Bounds())
	if !ok {
		return
	}
	z.DrawOp = draw.Over
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// erase removes coverage from dst (destination-out).
func (p *path) erase(dst *image.RGBA) {
	z, r, ok := p.rasterize(dst.Bounds())
	if !ok {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			m := mask.Pix[y*mask.Stride+x]
			if m == 0 {
				continue
			}
			keep := uint32(255 - m)
			i := dst.PixOffset(r.Min.X+x, r.Min.Y+y)
			for k := 0; k < 4; k++ {
				dst.Pix[i+k] = uint8((uint32(dst.Pix[i+k])*keep + 127) / 255)
			}
		}
	}
}

// StrokeSegment paints a round-capped segment from a to b.
// A zero-length segment paints a single round dot.
func StrokeSegment(dst *image.RGBA, a, b Point, width float64, c color.Color) {
	var p path
	p.capsule(a, b, width)
	p.paint(dst, c)
}

// EraseSegment clears a round-capped segment from a to b to transparent.
func EraseSegment(dst *image.RGBA, a, b Point, width float64) {
	var p path
	p.capsule(a, b, width)
	p.erase(dst)
}

// StrokeRect outlines the axis-aligned rectangle with corners a and b.
// The stroke is centred on the edges and corners are rounded.
func StrokeRect(dst *image.RGBA, a, b Point, width float64, c color.Color) {
	corners := []Point{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}}
	var p path
	for i, q := range corners {
		p.capsule(q, corners[(i+1)%len(corners)], width)
	}
	p.paint(dst, c)
}

// StrokeCircle outlines the circle of the given radius around center.
func StrokeCircle(dst *image.RGBA, center Point, radius, width float64, c color.Color) {
	hw := width / 2
	if hw <= 0 {
		return
	}
	var p path
	p.disc(center, radius+hw, solid)
	if inner := radius - hw; inner > 0 {
		p.disc(center, inner, hole)
	}
	p.paint(dst, c)
}

// FillPolygon closes pts and fills the enclosed area. Fewer than three points
// paint nothing.
func FillPolygon(dst *image.RGBA, pts []Point, c color.Color) {
	var p path
	p.polygon(pts...)
	p.paint(dst, c)
}
