package editor

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ironsheep/dudel/internal/canvas"
)

// Tool selects what pointer gestures do.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
	ToolSpray  Tool = "spray"
	ToolLine   Tool = "line"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolLasso  Tool = "lasso"
	ToolFill   Tool = "fill"
)

// Tools lists every tool in menu order.
var Tools = []Tool{ToolBrush, ToolEraser, ToolSpray, ToolLine, ToolRect, ToolCircle, ToolLasso, ToolFill}

// ParseTool resolves a tool name (case-insensitive).
func ParseTool(name string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Tools {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool: %q", name)
}

// Stroke width limits, in view pixels.
const (
	MinWidth     = 1
	MaxWidth     = 50
	DefaultWidth = 5
)

// DefaultColor is the initial drawing color.
const DefaultColor = "#000000"

// State is the tool state a gesture operates on.
//
// Tool, Color, Width and Scale persist across gestures. Drawing, Last and
// Lasso are transient and reset at stroke boundaries.
type State struct {
	Tool  Tool
	Color color.RGBA
	// Width is the stroke width in view pixels.
	Width float64
	// Scale converts view pixels to buffer pixels.
	Scale float64

	Drawing bool
	// Last is the previous pointer position (brush, eraser) or the gesture
	// anchor (line, rect, circle), in view pixels.
	Last  canvas.Point
	Lasso []canvas.Point
}

// DefaultState returns a brush with the default color and width at scale 1.
func DefaultState() State {
	return State{
		Tool:  ToolBrush,
		Color: color.RGBA{A: 255},
		Width: DefaultWidth,
		Scale: 1,
	}
}

// ResetGesture clears the transient gesture fields.
func (s *State) ResetGesture() {
	s.Drawing = false
	s.Last = canvas.Point{}
	s.Lasso = nil
}

// ValidateWidth reports whether w is an allowed stroke width.
func ValidateWidth(w float64) error {
	if w < MinWidth || w > MaxWidth {
		return fmt.Errorf("width %g outside range %d-%d", w, MinWidth, MaxWidth)
	}
	return nil
}
