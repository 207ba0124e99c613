// Package editor implements the Dudel drawing session on top of package canvas.
//
// Tool behaviour lives in plain functions (Down, Move, Up) that take the tool
// State and the pixel buffer explicitly. Session wraps one
// buffer and one State behind a mutex and adds what the page around the canvas
// used to own: resizing, clear, photo mode and the generate action with its
// busy flag.
//
// Pointer positions are view pixels. The session's device pixel ratio scales
// them, and the stroke width, into buffer pixels.
package editor
