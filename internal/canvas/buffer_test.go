package canvas

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFilledBuffer creates a buffer with every pixel set to c.
func newFilledBuffer(width, height int, c color.RGBA) *Buffer {
	b := NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.Image().SetRGBA(x, y, c)
		}
	}
	return b
}

func TestNewBuffer(t *testing.T) {
	b := NewBuffer(30, 20)

	assert.Equal(t, 30, b.Width())
	assert.Equal(t, 20, b.Height())
	assert.False(t, b.HasContent(), "new buffer should be fully transparent")
}

func TestNewBuffer_NegativeSize(t *testing.T) {
	b := NewBuffer(-5, -1)

	assert.Equal(t, 0, b.Width())
	assert.Equal(t, 0, b.Height())
	assert.False(t, b.HasContent())
}

func TestBuffer_HasContent(t *testing.T) {
	b := NewBuffer(10, 10)
	b.Image().SetRGBA(9, 9, color.RGBA{A: 1})
	assert.True(t, b.HasContent(), "any non-zero alpha counts as content")

	b.Clear()
	assert.False(t, b.HasContent(), "clear should remove all content")
}

func TestBuffer_CloneIsIndependent(t *testing.T) {
	b := newFilledBuffer(4, 4, color.RGBA{R: 255, A: 255})

	snap := b.Clone()
	b.Clear()

	require.Equal(t, b.Bounds(), snap.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, snap.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{}, b.RGBAAt(2, 2))
}

func TestLayout_BufferSize(t *testing.T) {
	tests := []struct {
		name       string
		layout     Layout
		wantWidth  int
		wantHeight int
	}{
		{"desktop dpr 1", Layout{ContainerWidth: 600, ViewportWidth: 1280, DevicePixelRatio: 1}, 600, 400},
		{"desktop dpr 2", Layout{ContainerWidth: 600, ViewportWidth: 1280, DevicePixelRatio: 2}, 1200, 800},
		{"mobile", Layout{ContainerWidth: 320, ViewportWidth: 320, DevicePixelRatio: 1}, 320, 256},
		{"breakpoint is desktop", Layout{ContainerWidth: 300, ViewportWidth: 640, DevicePixelRatio: 1}, 300, 200},
		{"fractional height truncates", Layout{ContainerWidth: 500, ViewportWidth: 1024, DevicePixelRatio: 2}, 1000, 666},
		{"zero dpr treated as 1", Layout{ContainerWidth: 600, ViewportWidth: 1280}, 600, 400},
		{"negative width", Layout{ContainerWidth: -10, ViewportWidth: 1280, DevicePixelRatio: 1}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.layout.BufferSize()
			assert.Equal(t, tt.wantWidth, w, "width")
			assert.Equal(t, tt.wantHeight, h, "height")
		})
	}
}

func TestLayout_Validate(t *testing.T) {
	assert.NoError(t, Layout{ContainerWidth: 1920, ViewportWidth: 1920, DevicePixelRatio: 2}.Validate())

	tests := []struct {
		name   string
		layout Layout
	}{
		{"huge dpr", Layout{ContainerWidth: 1e6, ViewportWidth: 1280, DevicePixelRatio: 1e6}},
		{"side too long", Layout{ContainerWidth: MaxBufferSide + 1, ViewportWidth: 1280, DevicePixelRatio: 1}},
		{"too many pixels", Layout{ContainerWidth: 12000, ViewportWidth: 300, DevicePixelRatio: 1}},
		{"infinite", Layout{ContainerWidth: math.Inf(1), ViewportWidth: 1280, DevicePixelRatio: 1}},
		{"nan dpr", Layout{ContainerWidth: 100, ViewportWidth: 1280, DevicePixelRatio: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.layout.Validate())
		})
	}
}

func TestLayout_AspectRatio(t *testing.T) {
	assert.InDelta(t, 0.8, Layout{ViewportWidth: 639}.AspectRatio(), 1e-9)
	assert.InDelta(t, 2.0/3.0, Layout{ViewportWidth: 640}.AspectRatio(), 1e-9)
}
