package canvas

import (
	"image"
	"image/color"
	"math"
)

// SprayDensity is the number of marks painted per spray call.
const SprayDensity = 30

// Rand is the random source used by Spray. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
}

// Spray paints SprayDensity square marks of side dot around center. Each mark
// sits at a uniformly random angle and a uniformly random distance in
// [0, radius) from the center, so marks cluster toward the middle.
func Spray(dst *image.RGBA, center Point, radius, dot float64, c color.Color, rng Rand) {
	if dot <= 0 {
		return
	}
	var p path
	for range SprayDensity {
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * radius
		x := center.X + r*math.Cos(angle)
		y := center.Y + r*math.Sin(angle)
		p.polygon(
			Point{X: x, Y: y},
			Point{X: x, Y: y + dot},
			Point{X: x + dot, Y: y + dot},
			Point{X: x + dot, Y: y},
		)
	}
	p.paint(dst, c)
}
