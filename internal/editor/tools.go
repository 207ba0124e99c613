package editor

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ironsheep/dudel/internal/canvas"
)

// PointerAction is one pointer event kind.
type PointerAction string

const (
	PointerDown  PointerAction = "down"
	PointerMove  PointerAction = "move"
	PointerUp    PointerAction = "up"
	PointerLeave PointerAction = "leave"
)

// ParsePointerAction resolves an action name (case-insensitive).
func ParsePointerAction(name string) (PointerAction, error) {
	switch a := PointerAction(strings.ToLower(strings.TrimSpace(name))); a {
	case PointerDown, PointerMove, PointerUp, PointerLeave:
		return a, nil
	default:
		return "", fmt.Errorf("unknown pointer action: %q", name)
	}
}

// Down starts a gesture at p.
//
// The fill tool acts here and only here: it floods the region under p and
// does not start a gesture. Every other tool records p as the anchor; the
// lasso also starts its point list.
func Down(st *State, img *image.RGBA, p canvas.Point) {
	if st.Tool == ToolFill {
		canvas.FloodFill(img, p.Scale(st.Scale).Floor(), st.Color)
		return
	}
	st.Drawing = true
	st.Last = p
	if st.Tool == ToolLasso {
		st.Lasso = []canvas.Point{p}
	}
}

// Move continues the gesture to p. It does nothing unless a gesture is active.
func Move(st *State, img *image.RGBA, p canvas.Point, rng canvas.Rand) {
	if !st.Drawing {
		return
	}
	s := st.Scale
	switch st.Tool {
	case ToolBrush:
		canvas.StrokeSegment(img, st.Last.Scale(s), p.Scale(s), st.Width*s, st.Color)
		st.Last = p
	case ToolEraser:
		canvas.EraseSegment(img, st.Last.Scale(s), p.Scale(s), st.Width*s)
		st.Last = p
	case ToolSpray:
		canvas.Spray(img, p.Scale(s), st.Width*s, s, st.Color, rng)
	case ToolLasso:
		st.Lasso = append(st.Lasso, p)
	}
}

// Up ends the gesture at p.
//
// Shape tools draw from the anchor to p. The lasso fills its polygon when it
// has at least three points and is otherwise discarded. Freehand tools have
// already painted and just stop.
func Up(st *State, img *image.RGBA, p canvas.Point) {
	if !st.Drawing {
		return
	}
	defer st.ResetGesture()

	s := st.Scale
	switch st.Tool {
	case ToolLasso:
		if len(st.Lasso) > 2 {
			pts := make([]canvas.Point, len(st.Lasso))
			for i, q := range st.Lasso {
				pts[i] = q.Scale(s)
			}
			canvas.FillPolygon(img, pts, st.Color)
		}
	case ToolLine:
		canvas.StrokeSegment(img, st.Last.Scale(s), p.Scale(s), st.Width*s, st.Color)
	case ToolRect:
		canvas.StrokeRect(img, st.Last.Scale(s), p.Scale(s), st.Width*s, st.Color)
	case ToolCircle:
		center := canvas.Point{X: (st.Last.X + p.X) / 2, Y: (st.Last.Y + p.Y) / 2}
		r := math.Hypot(p.X-st.Last.X, p.Y-st.Last.Y) / 2
		canvas.StrokeCircle(img, center.Scale(s), r*s, st.Width*s, st.Color)
	}
}

// Apply dispatches one pointer event. Leave is handled like Up.
func Apply(st *State, img *image.RGBA, action PointerAction, p canvas.Point, rng canvas.Rand) error {
	switch action {
	case PointerDown:
		Down(st, img, p)
	case PointerMove:
		Move(st, img, p, rng)
	case PointerUp, PointerLeave:
		Up(st, img, p)
	default:
		return fmt.Errorf("unknown pointer action: %q", action)
	}
	return nil
}
