// Package canvas provides the raster primitives behind the Dudel drawing surface.
//
// The package owns the pixel buffer (an *image.RGBA) and the operations that
// mutate it: anti-aliased strokes, shape outlines, polygon fills, spray marks
// and flood fill. It also produces the snapshot that is sent for generation.
// Higher level concerns such as tool selection and pointer tracking live in
// the editor package.
//
// # Coordinate System
//
// All coordinates in this package are buffer pixels:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Fractional coordinates are allowed for vector operations; the pixel
//     (x, y) covers the square [x, x+1) × [y, y+1)
//
// Callers working in view (CSS) pixels scale by the device pixel ratio before
// calling in; see Layout.
//
// # Compositing
//
// Paint operations composite with source-over. Erase operations remove
// coverage (destination-out), so erased pixels become transparent rather than
// white. Snapshots flatten the buffer onto an opaque white background.
//
// # Thread Safety
//
// A Buffer is not safe for concurrent use. The editor serializes access.
package canvas
